// Package token implements the fungible-token ledger the sale engine mints
// into. It is the external collaborator of the sale: the engine only talks
// to it through a narrow owner-bound surface (mint, finish minting, transfer
// ownership), while contributors interact with the usual balance/transfer
// operations.
//
// This package provides:
//   - An owner-gated mintable ledger with a finish-minting latch
//   - Step-locked grants: an amount minted under a vesting schedule that
//     releases 1/steps of the grant every step interval after an unlock time
//   - Batch transfer: an all-or-nothing multi-recipient transfer
//
// Every caller-facing operation takes the caller's identity explicitly,
// contract-style; there is no ambient "sender".
package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hivepower/go-crowdsale/sale"
)

var (
	// ErrNotOwner means the caller is not the ledger's current owner.
	ErrNotOwner = errors.New("token: caller is not the owner")

	// ErrMintingFinished means the one-way finish-minting latch has flipped.
	ErrMintingFinished = errors.New("token: minting is finished")

	// ErrInvalidAmount means a nil, negative or (where disallowed) zero amount.
	ErrInvalidAmount = errors.New("token: invalid amount")

	// ErrInsufficientFunds means the caller's spendable balance (balance
	// minus still-locked grants) does not cover the transfer.
	ErrInsufficientFunds = errors.New("token: insufficient spendable balance")

	// ErrLengthMismatch means a batch transfer's recipient and amount lists
	// differ in length.
	ErrLengthMismatch = errors.New("token: recipients and amounts length mismatch")
)

// lockedGrant is one vesting schedule attached to an account.
// amount/steps tokens unlock every stepSeconds after unlockStart.
type lockedGrant struct {
	amount      *big.Int
	unlockStart sale.Timestamp
	steps       uint64
	stepSeconds uint64
}

// Ledger is an in-memory mintable token ledger. All operations are
// serialized behind one mutex, independently of the engine's own lock.
type Ledger struct {
	mu sync.Mutex

	owner           common.Address
	mintingFinished bool
	totalSupply     *big.Int
	balances        map[common.Address]*big.Int
	grants          map[common.Address][]lockedGrant
}

// NewLedger creates an empty ledger owned by the given identity. Between
// deployment and finalization the owner is the sale engine, which makes it
// the sole authorized minter.
func NewLedger(owner common.Address) *Ledger {
	return &Ledger{
		owner:       owner,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		grants:      make(map[common.Address][]lockedGrant),
	}
}

// Owner returns the current owner.
func (l *Ledger) Owner() common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

// TransferOwnership hands the ledger to a new owner. Owner-gated.
func (l *Ledger) TransferOwnership(caller, newOwner common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrNotOwner
	}
	if newOwner == (common.Address{}) {
		return errors.New("token: new owner is the zero address")
	}
	l.owner = newOwner
	return nil
}

// Mint credits freshly created tokens to an account. Owner-gated; fails
// once minting is finished. Zero-amount mints are accepted as no-ops so
// callers need not special-case empty grants.
func (l *Ledger) Mint(caller, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mint(caller, to, amount)
}

func (l *Ledger) mint(caller, to common.Address, amount *big.Int) error {
	if caller != l.owner {
		return ErrNotOwner
	}
	if l.mintingFinished {
		return ErrMintingFinished
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.credit(to, amount)
	l.totalSupply.Add(l.totalSupply, amount)
	return nil
}

// MintLocked mints a grant under a vesting schedule: nothing is spendable
// before unlockStart, then amount/steps unlocks every stepSeconds. The
// balance appears immediately (it counts toward totalSupply and BalanceOf),
// only its spendability is delayed.
func (l *Ledger) MintLocked(caller, to common.Address, amount *big.Int, unlockStart sale.Timestamp, steps, stepSeconds uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if steps == 0 || stepSeconds == 0 {
		return errors.New("token: locked mint requires a vesting schedule")
	}
	if err := l.mint(caller, to, amount); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		l.grants[to] = append(l.grants[to], lockedGrant{
			amount:      new(big.Int).Set(amount),
			unlockStart: unlockStart,
			steps:       steps,
			stepSeconds: stepSeconds,
		})
	}
	return nil
}

// FinishMinting flips the one-way latch. Owner-gated, idempotent-rejecting.
func (l *Ledger) FinishMinting(caller common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrNotOwner
	}
	if l.mintingFinished {
		return ErrMintingFinished
	}
	l.mintingFinished = true
	return nil
}

// MintingFinished reports the latch state.
func (l *Ledger) MintingFinished() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mintingFinished
}

// TotalSupply returns the total minted amount.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.totalSupply)
}

// BalanceOf returns the full balance of an account, locked portions
// included.
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance(addr))
}

// LockedBalanceOf returns the portion of the account's balance that is
// still locked under vesting schedules at the given time.
func (l *Ledger) LockedBalanceOf(addr common.Address, now sale.Timestamp) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked(addr, now)
}

// SpendableBalanceOf returns balance minus the still-locked portion.
func (l *Ledger) SpendableBalanceOf(addr common.Address, now sale.Timestamp) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	spendable := new(big.Int).Set(l.balance(addr))
	return spendable.Sub(spendable, l.locked(addr, now))
}

// Transfer moves tokens between accounts, limited to the caller's spendable
// balance at the given time.
func (l *Ledger) Transfer(caller, to common.Address, amount *big.Int, now sale.Timestamp) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return l.transfer(caller, to, amount, now)
}

// BatchTransfer moves tokens to several recipients in one call. The batch
// is all-or-nothing: lengths must match, every amount must be positive, and
// the caller's spendable balance must cover the whole sum, otherwise no
// recipient is credited.
func (l *Ledger) BatchTransfer(caller common.Address, recipients []common.Address, amounts []*big.Int, now sale.Timestamp) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(recipients) != len(amounts) {
		return ErrLengthMismatch
	}
	total := new(big.Int)
	for _, amount := range amounts {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		total.Add(total, amount)
	}
	spendable := new(big.Int).Sub(l.balance(caller), l.locked(caller, now))
	if spendable.Cmp(total) < 0 {
		return ErrInsufficientFunds
	}
	for i, to := range recipients {
		if err := l.transfer(caller, to, amounts[i], now); err != nil {
			// Unreachable after the aggregate check, but a partial batch
			// must never survive.
			panic(err)
		}
	}
	return nil
}

func (l *Ledger) transfer(caller, to common.Address, amount *big.Int, now sale.Timestamp) error {
	spendable := new(big.Int).Sub(l.balance(caller), l.locked(caller, now))
	if spendable.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	from := l.balance(caller)
	from.Sub(from, amount)
	l.credit(to, amount)
	return nil
}

func (l *Ledger) balance(addr common.Address) *big.Int {
	b, ok := l.balances[addr]
	if !ok {
		b = new(big.Int)
		l.balances[addr] = b
	}
	return b
}

func (l *Ledger) credit(to common.Address, amount *big.Int) {
	b := l.balance(to)
	b.Add(b, amount)
}

// locked sums the still-vesting remainder of every grant on the account.
// A grant with elapsed >= steps has fully released and contributes nothing.
func (l *Ledger) locked(addr common.Address, now sale.Timestamp) *big.Int {
	total := new(big.Int)
	for _, g := range l.grants[addr] {
		var elapsed uint64
		if now > g.unlockStart {
			elapsed = uint64(now-g.unlockStart) / g.stepSeconds
		}
		if elapsed >= g.steps {
			continue
		}
		released := new(big.Int).Mul(g.amount, new(big.Int).SetUint64(elapsed))
		released.Div(released, new(big.Int).SetUint64(g.steps))
		remaining := new(big.Int).Sub(g.amount, released)
		total.Add(total, remaining)
	}
	return total
}
