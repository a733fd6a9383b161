// Package engine implements the sale state machine: contribution
// processing against the tier schedule, goal-based finalization, and refund
// accounting. It is the only writer of the mutable sale state.
//
// Key concepts:
//   - Engine: one instance per sale deployment, holding the permanent
//     record of the sale (tokens sold, value raised, per-contributor
//     deposits and grants, finalization outcome)
//   - Ports: the token ledger and the value vault are injected interfaces;
//     they are the only places a validated operation can still fail, and
//     the engine orders external calls so such a failure leaves the sale
//     state unchanged
//   - Serialization: every mutating operation runs under one mutex. The
//     numeric invariants (sold never above the extended cap, deposits never
//     above the voucher ceiling) depend on these read-modify-write
//     sequences being atomic, so this is a correctness requirement rather
//     than a tuning choice.
package engine

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/hivepower/go-crowdsale/kyc"
	"github.com/hivepower/go-crowdsale/sale"
)

// Engine is the contribution processor and finalization controller of one
// sale. Construct it with New; the zero value is not usable.
type Engine struct {
	cfg      *sale.Config
	saleID   common.Hash
	clock    clockwork.Clock
	verifier kyc.Verifier
	ledger   TokenLedger
	vault    ValueVault
	log      *logrus.Entry

	mu sync.Mutex

	// Mutable sale state. Monotonic except where a claimed refund zeroes a
	// contributor's deposit.
	tokensSold   *big.Int
	totalRaised  *big.Int
	outcome      Outcome
	preallocated bool
	deposited    map[common.Address]*big.Int
	granted      map[common.Address]*big.Int

	// Success-path progress latches. FinishMinting and TransferOwnership are
	// irreversible on the real ledger, so a Finalize retry must skip the
	// steps that already completed instead of re-entering them.
	mintingClosed bool
	handedOver    bool
	paidOut       bool
}

// New wires an engine over a validated configuration and its collaborators.
// The clock defaults to the wall clock and the verifier defaults to a signer
// set built from the config; both are injectable for tests.
func New(cfg *sale.Config, ledger TokenLedger, vault ValueVault, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, errors.New("engine: token ledger is required")
	}
	if vault == nil {
		return nil, errors.New("engine: value vault is required")
	}
	e := &Engine{
		cfg:         cfg,
		saleID:      cfg.Hash(),
		ledger:      ledger,
		vault:       vault,
		tokensSold:  new(big.Int),
		totalRaised: new(big.Int),
		deposited:   make(map[common.Address]*big.Int),
		granted:     make(map[common.Address]*big.Int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.verifier == nil {
		e.verifier = kyc.NewSignerSet(cfg.KYCSigners)
	}
	if e.log == nil {
		e.log = logrus.WithField("module", "sale-engine")
	}
	e.log = e.log.WithFields(logrus.Fields{
		"sale": cfg.Name,
		"id":   e.saleID.Hex(),
	})
	return e, nil
}

// Option customizes an Engine at construction time.
type Option func(*Engine)

// WithClock injects the time source (tests use a fake clock).
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithVerifier injects the voucher verifier.
func WithVerifier(v kyc.Verifier) Option {
	return func(e *Engine) { e.verifier = v }
}

// WithLogger injects the log entry the engine derives its fields from.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) { e.log = log }
}

func (e *Engine) now() sale.Timestamp {
	return sale.TimestampOf(e.clock.Now())
}

// Contribute processes one contribution: timing gate, voucher gate,
// per-contributor ceiling, tier allocation, supply ceiling, then custody
// and mint. It returns the number of tokens granted.
//
// A contribution that straddles a tier boundary is priced entirely at the
// tier active when it arrives; if the resulting allocation would pass the
// tier's extended cap the whole contribution is rejected with
// ErrSupplyExhausted. There is no cross-tier split.
func (e *Engine) Contribute(contributor common.Address, value *big.Int, voucher *kyc.Voucher) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.Phase(e.now()) != sale.PhaseRunning {
		return nil, ErrNotRunning
	}
	if value == nil || value.Sign() <= 0 {
		return nil, ErrInvalidValue
	}

	// KYC gate. A voucher is mandatory under the voucher policy; when one
	// is presented it is checked either way.
	if voucher == nil {
		if e.cfg.RequireVoucher {
			return nil, fmt.Errorf("%w: voucher required", ErrUnauthorized)
		}
	} else {
		if _, err := e.verifier.Verify(voucher, contributor, e.saleID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		deposited := e.depositedOf(contributor)
		ceiling := new(big.Int).Add(deposited, value)
		if ceiling.Cmp(voucher.MaxAmount) > 0 {
			return nil, ErrCapExceeded
		}
	}

	// Tier allocation and supply ceiling.
	tokens, err := e.cfg.TokensForValue(value, e.tokensSold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSupplyExhausted, err)
	}
	extended, err := e.cfg.ExtendedCap(e.tokensSold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSupplyExhausted, err)
	}
	sold := new(big.Int).Add(e.tokensSold, tokens)
	if sold.Cmp(extended) > 0 {
		return nil, ErrSupplyExhausted
	}

	// External effects. Custody first; if the mint then fails, the deposit
	// is returned and no counter has moved.
	if err := e.vault.Deposit(contributor, value); err != nil {
		return nil, fmt.Errorf("value custody failed: %w", err)
	}
	if err := e.ledger.Mint(contributor, tokens); err != nil {
		if undoErr := e.vault.Transfer(contributor, value); undoErr != nil {
			// Both the mint and the give-back failed; the vault holds value
			// the sale state does not account for. Surface loudly.
			e.log.WithError(undoErr).WithField("contributor", contributor.Hex()).
				Error("mint rollback failed, vault holds unaccounted value")
		}
		return nil, fmt.Errorf("token mint failed: %w", err)
	}

	// Commit.
	e.tokensSold = sold
	e.totalRaised.Add(e.totalRaised, value)
	e.depositedOf(contributor).Add(e.depositedOf(contributor), value)
	e.grantedOf(contributor).Add(e.grantedOf(contributor), tokens)

	tier, _ := e.cfg.TierFor(new(big.Int).Sub(sold, tokens))
	e.log.WithFields(logrus.Fields{
		"contributor": contributor.Hex(),
		"value":       value.String(),
		"tokens":      tokens.String(),
		"tier":        tier,
		"sold":        e.tokensSold.String(),
		"raised":      e.totalRaised.String(),
	}).Info("contribution accepted")

	return new(big.Int).Set(tokens), nil
}

// ContributeWithoutVoucher is the fallback contribution path. It behaves
// exactly like Contribute with no voucher: open on voucher-free
// deployments, rejected as Unauthorized under the voucher policy.
func (e *Engine) ContributeWithoutVoucher(contributor common.Address, value *big.Int) (*big.Int, error) {
	return e.Contribute(contributor, value, nil)
}

func (e *Engine) depositedOf(addr common.Address) *big.Int {
	d, ok := e.deposited[addr]
	if !ok {
		d = new(big.Int)
		e.deposited[addr] = d
	}
	return d
}

func (e *Engine) grantedOf(addr common.Address) *big.Int {
	g, ok := e.granted[addr]
	if !ok {
		g = new(big.Int)
		e.granted[addr] = g
	}
	return g
}

// --- read-only query surface ---

// Config returns the immutable sale configuration.
func (e *Engine) Config() *sale.Config {
	return e.cfg
}

// SaleID returns the sale identity vouchers bind to.
func (e *Engine) SaleID() common.Hash {
	return e.saleID
}

// Phase returns the sale phase at the current time.
func (e *Engine) Phase() sale.Phase {
	return e.cfg.Phase(e.now())
}

// Started reports whether the sale window has opened.
func (e *Engine) Started() bool {
	return e.cfg.Started(e.now())
}

// Ended reports whether the sale window has closed.
func (e *Engine) Ended() bool {
	return e.cfg.Ended(e.now())
}

// Price returns the active tier's token rate.
func (e *Engine) Price() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.RateFor(e.tokensSold)
}

// Cap returns the active tier's nominal cumulative cap.
func (e *Engine) Cap() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.CapFor(e.tokensSold)
}

// RemainingTokens returns the unsold supply under the final cap.
func (e *Engine) RemainingTokens() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.RemainingTokens(e.tokensSold)
}

// TokensSold returns the cumulative tokens-sold counter.
func (e *Engine) TokensSold() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.tokensSold)
}

// TotalRaised returns the cumulative raised value.
func (e *Engine) TotalRaised() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.totalRaised)
}

// DepositedBy returns a contributor's refundable deposit balance. It drops
// to zero when a refund is claimed.
func (e *Engine) DepositedBy(addr common.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.depositedOf(addr))
}

// TokensGrantedTo returns the audit counter of tokens granted to a
// contributor by this sale.
func (e *Engine) TokensGrantedTo(addr common.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.grantedOf(addr))
}
