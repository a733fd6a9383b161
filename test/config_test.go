package test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/hivepower/go-crowdsale/cmd/sale/launcher"
	"github.com/hivepower/go-crowdsale/flags"
	"github.com/hivepower/go-crowdsale/sale"
)

// helper to run MakeSaleConfig with a synthetic CLI context.

func runConfigFromArgs(t *testing.T, args []string) (*sale.Config, error) {

	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = append(flags.CommonFlags(), flags.SaleFlags()...)

	var got *sale.Config
	var gotErr error
	app.Action = func(c *cli.Context) error {
		got, gotErr = launcher.MakeSaleConfig(c)
		return nil
	}

	if err := app.Run(append([]string{"hive-sale"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return got, gotErr
}

// TestMakeSaleConfig_flagOverrides verifies that every sale flag we declare
// correctly overrides the corresponding preset field. Each sub-test feeds
// custom CLI arguments into a synthetic app, invokes MakeSaleConfig, and
// checks the bits of the resulting config that should have changed.
func TestMakeSaleConfig_flagOverrides(t *testing.T) {
	t.Run("preset selection", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{"--preset", "mainnet"})
		require.NoError(t, err)
		require.Equal(t, "mainnet", cfg.Name)
		require.True(t, cfg.RequireVoucher)
	})

	t.Run("window override", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{
			"--preset", "mainnet",
			"--sale.start", "1600000000",
			"--sale.end", "1600003600",
		})
		require.NoError(t, err)
		require.Equal(t, sale.Timestamp(1600000000), cfg.Start)
		require.Equal(t, sale.Timestamp(1600003600), cfg.End)
	})

	t.Run("goal and overshoot override", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{
			"--preset", "mainnet",
			"--sale.goal", "12345",
			"--sale.overshoot", "67",
		})
		require.NoError(t, err)
		require.Equal(t, "12345", cfg.Goal.String())
		require.Equal(t, "67", cfg.Overshoot.String())
	})

	t.Run("beneficiary override", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{
			"--preset", "mainnet",
			"--sale.beneficiary", "0x1111111111111111111111111111111111111111",
		})
		require.NoError(t, err)
		require.Equal(t,
			common.HexToAddress("0x1111111111111111111111111111111111111111"),
			cfg.Beneficiary)
	})

	t.Run("signers override arms the voucher policy", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{
			"--preset", "development",
			"--sale.signers", "0x2222222222222222222222222222222222222222, 0x3333333333333333333333333333333333333333",
		})
		require.NoError(t, err)
		require.True(t, cfg.RequireVoucher)
		require.Len(t, cfg.KYCSigners, 2)
	})

	t.Run("novoucher drops the policy", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{
			"--preset", "mainnet",
			"--sale.novoucher",
		})
		require.NoError(t, err)
		require.False(t, cfg.RequireVoucher)
		require.Empty(t, cfg.KYCSigners)
	})
}

func TestMakeSaleConfig_rejectsBadInput(t *testing.T) {
	for name, args := range map[string][]string{
		"unknown preset":    {"--preset", "ropsten"},
		"malformed goal":    {"--preset", "mainnet", "--sale.goal", "lots"},
		"bad beneficiary":   {"--preset", "mainnet", "--sale.beneficiary", "not-hex"},
		"empty signer list": {"--preset", "mainnet", "--sale.signers", " , "},
		"inverted window":   {"--preset", "mainnet", "--sale.start", "2000", "--sale.end", "1000"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := runConfigFromArgs(t, args)
			require.Error(t, err)
		})
	}
}
