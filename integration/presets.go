package integration

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"

	"github.com/hivepower/go-crowdsale/sale"
)

// Package integration provides ready-made sale configurations for the
// environments the sale is operated in. Presets bundle the full parameter set
// (tier schedule, funding goal, grants, KYC policy) into named profiles so
// operators can spin up an engine without assembling a sale.Config field by
// field.
//
// Usage:
//   cfg := integration.DevelopmentPreset(now) // throwaway local sale
//   cfg := integration.StagingPreset()        // dress rehearsal on test infra
//   cfg := integration.MainnetPreset()        // the production sale
//
// All presets share the same token economics; they differ in window, value
// pricing and KYC policy.

// Shared token economics. Tier caps are cumulative; grants are minted on
// finalization of a successful sale.
var (
	tierCap1 = megaTokens(10)
	tierCap2 = megaTokens(25)
	tierCap3 = megaTokens(50)

	founderTokens    = megaTokens(10)
	additionalTokens = megaTokens(40)
)

// Founder tokens unlock in six monthly steps after the sale window closes.
const (
	vestingSteps       = 6
	vestingStepSeconds = 86400 * 30
)

// Operational KYC signing keys used on shared infrastructure.
var stagingKYCSigners = []common.Address{
	common.HexToAddress("0x890d4c6b94e6f54bdbb58530f425c2a5a3033361"),
	common.HexToAddress("0xc5fdf4076b8f3a5357c5e395ab970b5b54098fef"),
}

// tierRates derives the three tier rates (tokens per value unit) from the
// value-unit price in USD. The token is priced at $0.25; the first two tiers
// carry a 30% and 10% bonus respectively, the last sells at face value.
func tierRates(valuePriceUSD uint64) (r1, r2, r3 *big.Int) {
	base := valuePriceUSD * 4 // 1 / 0.25
	r1 = new(big.Int).SetUint64(base * 13 / 10)
	r2 = new(big.Int).SetUint64(base * 11 / 10)
	r3 = new(big.Int).SetUint64(base)
	return
}

// fundingGoal returns the $1M soft cap expressed in value units.
func fundingGoal(valuePriceUSD uint64) *big.Int {
	goal := new(big.Int).Mul(big.NewInt(params.Ether), big.NewInt(1_000_000))
	return goal.Div(goal, new(big.Int).SetUint64(valuePriceUSD))
}

// megaTokens returns n million whole tokens in base (18-decimal) units.
func megaTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n*1_000_000), big.NewInt(params.Ether))
}

// ether returns n whole value units in base units.
func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}

// baseConfig assembles the parameters every environment shares.
func baseConfig(name string, valuePriceUSD uint64) sale.Config {
	r1, r2, r3 := tierRates(valuePriceUSD)
	return sale.Config{
		Name: name,
		Tiers: []sale.Tier{
			{Rate: r1, Cap: tierCap1},
			{Rate: r2, Cap: tierCap2},
			{Rate: r3, Cap: tierCap3},
		},
		Goal:               fundingGoal(valuePriceUSD),
		Overshoot:          ether(5),
		FounderTokens:      founderTokens,
		AdditionalTokens:   additionalTokens,
		VestingSteps:       vestingSteps,
		VestingStepSeconds: vestingStepSeconds,
	}
}

// DevelopmentPreset returns a short throwaway sale for local testing: the
// window opens one minute after now and runs for an hour, vouchers are not
// required, and the value unit is priced absurdly high so a single unit
// clears the funding goal.
//
// Never use this preset outside local development: the beneficiary is a
// well-known placeholder address and contributions are unauthenticated.
func DevelopmentPreset(now sale.Timestamp) sale.Config {
	cfg := baseConfig("development", 1_000_000)
	cfg.Start = now.Add(time.Minute)
	cfg.End = cfg.Start.Add(time.Hour)
	cfg.Beneficiary = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	cfg.RequireVoucher = false
	return cfg
}

// StagingPreset returns the dress-rehearsal sale run on shared test
// infrastructure: real KYC signing keys, mandatory vouchers, a two-hour
// window and production pricing. The window start is pinned so repeated
// deployments of the same staging round produce the same sale identity.
func StagingPreset() sale.Config {
	cfg := baseConfig("staging", 500)
	cfg.Start = sale.Timestamp(1521072000) // 2018-03-15 00:00 UTC
	cfg.End = cfg.Start.Add(2 * time.Hour)
	cfg.Beneficiary = common.HexToAddress("0x00000000000000000000000000000000000000d2")
	cfg.RequireVoucher = true
	cfg.KYCSigners = stagingKYCSigners
	return cfg
}

// MainnetPreset returns the production sale: a three-week window in
// April/May 2018, the company wallet as beneficiary, and mandatory KYC
// vouchers signed by the operational keys.
func MainnetPreset() sale.Config {
	cfg := baseConfig("mainnet", 500)
	cfg.Start = sale.Timestamp(1524441600) // 2018-04-23 00:00 UTC
	cfg.End = sale.Timestamp(1526342400)   // 2018-05-15 00:00 UTC
	cfg.Beneficiary = common.HexToAddress("0xde5f3719d0ab1a308c1d66fda248f8497bcd42d8")
	cfg.RequireVoucher = true
	cfg.KYCSigners = stagingKYCSigners
	return cfg
}

// PresetByName looks up a preset by its string identifier. The development
// preset anchors its window to the supplied now; the fixed-window presets
// ignore it. This helper backs CLI flags like --preset=mainnet.
func PresetByName(name string, now sale.Timestamp) (sale.Config, error) {
	switch name {
	case "development":
		return DevelopmentPreset(now), nil
	case "staging":
		return StagingPreset(), nil
	case "mainnet":
		return MainnetPreset(), nil
	default:
		return sale.Config{}, fmt.Errorf("unknown preset: %q (valid: development, staging, mainnet)", name)
	}
}
