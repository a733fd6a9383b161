package launcher

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/hivepower/go-crowdsale/engine"
	"github.com/hivepower/go-crowdsale/kyc"
	"github.com/hivepower/go-crowdsale/token"
)

// The identity the simulated engine binds to the ledger as.
var simEngineAddr = common.HexToAddress("0x00000000000000000000000000000000005a1e01")

// runSimulation drives a complete sale lifecycle in-process: a deterministic
// stream of voucher-carrying contributions spread across the sale window,
// then finalization and, on a missed goal, a refund round. Time is a fake
// clock pinned to the sale window, so the wall clock does not matter.
func runSimulation(ctx *cli.Context) error {
	cfg, err := MakeSaleConfig(ctx)
	if err != nil {
		return err
	}

	// The simulation signs its own vouchers with a throwaway key.
	kycKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	cfg.KYCSigners = []common.Address{crypto.PubkeyToAddress(kycKey.PublicKey)}
	cfg.RequireVoucher = true

	clock := clockwork.NewFakeClockAt(cfg.Start.Time())
	ledger := token.NewLedger(simEngineAddr)
	vault := engine.NewMemoryVault()
	eng, err := engine.New(cfg, ledger.Bind(simEngineAddr), vault, engine.WithClock(clock))
	if err != nil {
		return err
	}

	value, err := parseBig(ctx.String("sim.value"))
	if err != nil {
		return fmt.Errorf("--sim.value: %w", err)
	}
	if value.Sign() == 0 {
		return fmt.Errorf("--sim.value: must be positive")
	}
	contributors := ctx.Int("sim.contributors")
	if contributors <= 0 {
		return fmt.Errorf("--sim.contributors: must be positive")
	}

	rng := rand.New(rand.NewSource(ctx.Int64("sim.seed")))
	step := cfg.End.Time().Sub(cfg.Start.Time()) / time.Duration(contributors+1)

	var accepted, rejected int
	addrs := make([]common.Address, 0, contributors)
	for i := 0; i < contributors; i++ {
		var addr common.Address
		rng.Read(addr[:])
		addrs = append(addrs, addr)

		voucher, err := kyc.Issue(kycKey, eng.SaleID(), addr, uint64(i), value)
		if err != nil {
			return fmt.Errorf("issuing voucher: %w", err)
		}
		if _, err := eng.Contribute(addr, value, voucher); err != nil {
			logrus.WithError(err).WithField("contributor", addr.Hex()).
				Warn("simulated contribution rejected")
			rejected++
		} else {
			accepted++
		}
		clock.Advance(step)
	}

	// Close the window and resolve.
	clock.Advance(cfg.End.Time().Sub(clock.Now()) + time.Second)
	if err := eng.Finalize(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	refunded := 0
	if eng.State() == engine.OutcomeFailure {
		for _, addr := range addrs {
			if _, err := eng.ClaimRefund(addr); err == nil {
				refunded++
			}
		}
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "sale:          %s (%s)\n", cfg.Name, eng.SaleID().Hex())
	fmt.Fprintf(w, "contributions: %d accepted, %d rejected\n", accepted, rejected)
	fmt.Fprintf(w, "raised:        %s of %s goal\n", eng.TotalRaised(), cfg.Goal)
	fmt.Fprintf(w, "tokens sold:   %s\n", eng.TokensSold())
	fmt.Fprintf(w, "total supply:  %s\n", ledger.TotalSupply())
	fmt.Fprintf(w, "outcome:       %s\n", eng.State())
	switch eng.State() {
	case engine.OutcomeSuccess:
		fmt.Fprintf(w, "beneficiary:   %s credited %s\n",
			cfg.Beneficiary.Hex(), vault.CreditedTo(cfg.Beneficiary))
	case engine.OutcomeFailure:
		fmt.Fprintf(w, "refunds:       %d of %d claims paid\n", refunded, len(addrs))
	}
	return nil
}
