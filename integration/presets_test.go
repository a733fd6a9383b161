package integration

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hivepower/go-crowdsale/sale"
)

func TestPresetsValidate(t *testing.T) {
	for _, cfg := range []sale.Config{
		DevelopmentPreset(sale.Timestamp(1_600_000_000)),
		StagingPreset(),
		MainnetPreset(),
	} {
		t.Run(cfg.Name, func(t *testing.T) {
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestProductionPricing(t *testing.T) {
	require := require.New(t)
	cfg := MainnetPreset()

	// $500 value unit, $0.25 token: 2000 tokens at face value, with 30% and
	// 10% bonuses on the first two tiers.
	require.Equal(big.NewInt(2600), cfg.Tiers[0].Rate)
	require.Equal(big.NewInt(2200), cfg.Tiers[1].Rate)
	require.Equal(big.NewInt(2000), cfg.Tiers[2].Rate)

	// The $1M soft cap at $500 per unit is 2000 whole units.
	require.Equal(ether(2000), cfg.Goal)
}

func TestPresetIdentitiesDiffer(t *testing.T) {
	require := require.New(t)

	staging := StagingPreset()
	mainnet := MainnetPreset()
	require.NotEqual(staging.Hash(), mainnet.Hash())

	// Fixed-window presets are deterministic: same parameters, same identity.
	mainnetAgain := MainnetPreset()
	require.Equal(mainnet.Hash(), mainnetAgain.Hash())
}

func TestDevelopmentWindow(t *testing.T) {
	require := require.New(t)
	now := sale.Timestamp(1_600_000_000)
	cfg := DevelopmentPreset(now)

	require.Equal(now+60, cfg.Start)
	require.Equal(cfg.Start+3600, cfg.End)
	require.False(cfg.RequireVoucher)
	require.Empty(cfg.KYCSigners)
}

func TestPresetByName(t *testing.T) {
	now := sale.Timestamp(1_600_000_000)
	for _, name := range []string{"development", "staging", "mainnet"} {
		cfg, err := PresetByName(name, now)
		require.NoError(t, err)
		require.Equal(t, name, cfg.Name)
	}

	_, err := PresetByName("ropsten", now)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown preset")
}
