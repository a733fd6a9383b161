package test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hivepower/go-crowdsale/engine"
	"github.com/hivepower/go-crowdsale/integration"
	"github.com/hivepower/go-crowdsale/kyc"
	"github.com/hivepower/go-crowdsale/sale"
	"github.com/hivepower/go-crowdsale/token"
)

// Full sale lifecycles over the production economics: real token ledger,
// real vault, real voucher verification, fake clock. Only the KYC signing
// key and the sale window are swapped for test-controlled ones.

var (
	engineAddr = common.HexToAddress("0xe000000000000000000000000000000000000001")
	alice      = common.HexToAddress("0xaa00000000000000000000000000000000000001")
	bob        = common.HexToAddress("0xaa00000000000000000000000000000000000002")
	carol      = common.HexToAddress("0xaa00000000000000000000000000000000000003")
)

func ethers(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

type saleWorld struct {
	cfg    *sale.Config
	clock  clockwork.FakeClock
	ledger *token.Ledger
	vault  *engine.MemoryVault
	engine *engine.Engine
	issue  func(t *testing.T, contributor common.Address, id uint64, max *big.Int) *kyc.Voucher
}

// newSaleWorld assembles the production mainnet parameters with a
// test-controlled KYC key and a clock pinned to the window opening.
func newSaleWorld(t *testing.T) *saleWorld {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := integration.MainnetPreset()
	cfg.KYCSigners = []common.Address{crypto.PubkeyToAddress(key.PublicKey)}

	clock := clockwork.NewFakeClockAt(cfg.Start.Time())
	ledger := token.NewLedger(engineAddr)
	vault := engine.NewMemoryVault()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	eng, err := engine.New(&cfg, ledger.Bind(engineAddr), vault,
		engine.WithClock(clock),
		engine.WithLogger(logrus.NewEntry(log)),
	)
	require.NoError(t, err)

	return &saleWorld{
		cfg:    &cfg,
		clock:  clock,
		ledger: ledger,
		vault:  vault,
		engine: eng,
		issue: func(t *testing.T, contributor common.Address, id uint64, max *big.Int) *kyc.Voucher {
			t.Helper()
			v, err := kyc.Issue(key, eng.SaleID(), contributor, id, max)
			require.NoError(t, err)
			return v
		},
	}
}

func (w *saleWorld) now() sale.Timestamp {
	return sale.TimestampOf(w.clock.Now())
}

func (w *saleWorld) advancePastEnd() {
	w.clock.Advance(w.cfg.End.Time().Sub(w.clock.Now()) + time.Second)
}

func TestSaleLifecycle_success(t *testing.T) {
	require := require.New(t)
	w := newSaleWorld(t)

	// The first tier pays 2600 tokens per value unit.
	granted, err := w.engine.Contribute(alice, ethers(1500), w.issue(t, alice, 1, ethers(2000)))
	require.NoError(err)
	require.Equal(tokens(1500*2600), granted)
	require.Equal(tokens(1500*2600), w.ledger.BalanceOf(alice))

	granted, err = w.engine.Contribute(bob, ethers(500), w.issue(t, bob, 2, ethers(500)))
	require.NoError(err)
	require.Equal(tokens(500*2600), granted)

	// Goal is exactly met: 2000 value units raised.
	require.Equal(w.cfg.Goal, w.engine.TotalRaised())

	w.advancePastEnd()
	require.NoError(w.engine.Finalize())
	require.Equal(engine.OutcomeSuccess, w.engine.State())

	// Raised value reached the company wallet, the ledger was closed and
	// handed over.
	require.Equal(ethers(2000), w.vault.CreditedTo(w.cfg.Beneficiary))
	require.True(w.ledger.MintingFinished())
	require.Equal(w.cfg.Beneficiary, w.ledger.Owner())

	// The founder grant is fully locked at the window close and the
	// additional allotment is liquid.
	require.Equal(w.cfg.FounderTokens, w.ledger.LockedBalanceOf(w.cfg.Beneficiary, w.now()))
	require.Equal(w.cfg.AdditionalTokens, w.ledger.SpendableBalanceOf(w.cfg.Beneficiary, w.now()))

	// After the six monthly steps everything is spendable.
	w.clock.Advance(6 * 30 * 24 * time.Hour)
	require.Zero(w.ledger.LockedBalanceOf(w.cfg.Beneficiary, w.now()).Sign())

	// Sold tokens circulate freely once minting is finished.
	require.NoError(w.ledger.Transfer(alice, carol, tokens(1000), w.now()))
	require.NoError(w.ledger.BatchTransfer(alice,
		[]common.Address{bob, carol},
		[]*big.Int{tokens(100), tokens(200)},
		w.now()))
	require.Equal(tokens(1300), new(big.Int).Add(
		w.ledger.BalanceOf(carol),
		new(big.Int).Sub(w.ledger.BalanceOf(bob), tokens(500*2600))))
}

func TestSaleLifecycle_failureAndRefunds(t *testing.T) {
	require := require.New(t)
	w := newSaleWorld(t)

	_, err := w.engine.Contribute(alice, ethers(100), w.issue(t, alice, 1, ethers(2000)))
	require.NoError(err)
	_, err = w.engine.Contribute(bob, ethers(50), w.issue(t, bob, 2, ethers(500)))
	require.NoError(err)

	w.advancePastEnd()
	require.NoError(w.engine.Finalize())
	require.Equal(engine.OutcomeFailure, w.engine.State())

	// Nothing moved to the beneficiary; each contributor gets their value
	// back exactly once.
	require.Equal(big.NewInt(0), w.vault.CreditedTo(w.cfg.Beneficiary))

	refunded, err := w.engine.ClaimRefund(alice)
	require.NoError(err)
	require.Equal(ethers(100), refunded)
	require.Equal(ethers(100), w.vault.CreditedTo(alice))

	refunded, err = w.engine.ClaimRefund(bob)
	require.NoError(err)
	require.Equal(ethers(50), refunded)

	_, err = w.engine.ClaimRefund(alice)
	require.ErrorIs(err, engine.ErrNothingToRefund)
	require.Equal(big.NewInt(0), w.vault.Held())

	// The minted tokens are a dead letter: minting never finished and the
	// ledger was never handed over.
	require.False(w.ledger.MintingFinished())
	require.Equal(engineAddr, w.ledger.Owner())
}

func TestSaleLifecycle_voucherGate(t *testing.T) {
	require := require.New(t)
	w := newSaleWorld(t)

	// Mainnet policy: no voucher, no contribution.
	_, err := w.engine.ContributeWithoutVoucher(alice, ethers(1))
	require.ErrorIs(err, engine.ErrUnauthorized)

	// A voucher signed by an untrusted key is rejected too.
	rogue, err := crypto.GenerateKey()
	require.NoError(err)
	forged, err := kyc.Issue(rogue, w.engine.SaleID(), alice, 1, ethers(2000))
	require.NoError(err)
	_, err = w.engine.Contribute(alice, ethers(1), forged)
	require.ErrorIs(err, engine.ErrUnauthorized)

	// Nothing was custodied along the way.
	require.Equal(big.NewInt(0), w.vault.Held())
}
