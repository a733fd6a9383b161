// Package sale defines the immutable configuration and the pure pricing math
// for a tiered, time-boxed token sale.
//
// This package provides:
//   - Tier and Config: the complete parameter set fixed at deployment
//     (pricing schedule, sale window, funding goal, overshoot allowance,
//     beneficiary, KYC signer set, post-sale token grants)
//   - Phase derivation from the configured sale window
//   - The tier schedule: active tier, unit rate, nominal and extended caps,
//     and token allocation for a given contribution value
//
// The Config type is the sale-engine analogue of a chain's network rules:
// it is validated once at construction, never mutated afterwards, and every
// consensus-critical number (caps, rates, goal) lives here. The mutable sale
// state lives in the engine package.
package sale

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Tier is one pricing phase of the sale. Tiers are ordered by strictly
// increasing cumulative cap; the active tier is the first one whose cap has
// not yet been reached by the cumulative-tokens-sold counter.
type Tier struct {
	// Rate is the number of token base units granted per base value unit
	// (e.g. tokens-wei per ether-wei). Later tiers typically carry an equal
	// or lower rate, so early contributors get more tokens per unit of value.
	Rate *big.Int

	// Cap is the cumulative token ceiling of this tier, counted from the
	// start of the sale (not per-tier). Strictly greater than the previous
	// tier's Cap.
	Cap *big.Int
}

// Config is the complete, immutable parameter set of one sale deployment.
//
// A Config is built once (usually from an integration preset plus CLI
// overrides), validated, and then shared read-only between the engine, the
// KYC verifier and the query surface. Nothing in this struct changes after
// Validate has passed.
type Config struct {
	// Name is a human-readable identifier for logs and config dumps
	// (e.g. "development", "mainnet").
	Name string

	// Tiers is the ordered pricing schedule. Must be non-empty.
	Tiers []Tier

	// Start and End bound the contribution window. The window is half-open:
	// a contribution at exactly Start is accepted, one at exactly End is not.
	Start Timestamp
	End   Timestamp

	// Goal is the minimum total raised value (in base value units) required
	// for the sale to finalize as Success. Raising less by End means every
	// contributor can claim a refund.
	Goal *big.Int

	// Overshoot is the extra raw value capacity (in base value units) that a
	// contribution near a tier boundary may consume into the next tier
	// instead of being rejected. It never applies to the final tier, whose
	// cap is absolute.
	Overshoot *big.Int

	// Beneficiary receives the raised value on Success, the token ledger's
	// ownership after finalization, and the preallocated token grants.
	Beneficiary common.Address

	// RequireVoucher selects the KYC policy. When true every contribution
	// must carry a voucher signed by one of KYCSigners; when false the
	// voucher-free contribution path is open (private/test deployments).
	RequireVoucher bool

	// KYCSigners is the set of identities trusted to sign contribution
	// vouchers. Must be non-empty when RequireVoucher is set.
	KYCSigners []common.Address

	// FounderTokens is minted step-locked to the beneficiary by the one-time
	// preallocation. AdditionalTokens is minted liquid alongside it.
	FounderTokens    *big.Int
	AdditionalTokens *big.Int

	// VestingSteps and VestingStepSeconds define the founder grant release
	// schedule: 1/VestingSteps of the grant unlocks every VestingStepSeconds
	// after the sale window closes.
	VestingSteps       uint64
	VestingStepSeconds uint64
}

// Validate checks the internal consistency of the configuration.
// It is called once at construction; the engine assumes a validated Config.
func (c *Config) Validate() error {
	if len(c.Tiers) == 0 {
		return errors.New("sale config: empty tier schedule")
	}
	prevCap := new(big.Int)
	for i, tier := range c.Tiers {
		if tier.Rate == nil || tier.Rate.Sign() <= 0 {
			return fmt.Errorf("sale config: tier %d: rate must be positive", i)
		}
		if tier.Cap == nil || tier.Cap.Cmp(prevCap) <= 0 {
			return fmt.Errorf("sale config: tier %d: cap must exceed previous tier's cap", i)
		}
		prevCap = tier.Cap
	}
	if c.Start >= c.End {
		return errors.New("sale config: start time must precede end time")
	}
	if c.Goal == nil || c.Goal.Sign() < 0 {
		return errors.New("sale config: goal must be non-negative")
	}
	if c.Overshoot == nil || c.Overshoot.Sign() < 0 {
		return errors.New("sale config: overshoot allowance must be non-negative")
	}
	if c.Beneficiary == (common.Address{}) {
		return errors.New("sale config: beneficiary is not set")
	}
	if c.RequireVoucher && len(c.KYCSigners) == 0 {
		return errors.New("sale config: voucher policy enabled but no KYC signers configured")
	}
	if c.FounderTokens == nil || c.FounderTokens.Sign() < 0 {
		return errors.New("sale config: founder tokens must be non-negative")
	}
	if c.AdditionalTokens == nil || c.AdditionalTokens.Sign() < 0 {
		return errors.New("sale config: additional tokens must be non-negative")
	}
	if c.FounderTokens.Sign() > 0 && (c.VestingSteps == 0 || c.VestingStepSeconds == 0) {
		return errors.New("sale config: founder tokens require a vesting schedule")
	}
	return nil
}

// Hash returns the sale identity: a digest over every configuration field.
// Vouchers bind to this hash, so an authorization issued for one deployment
// cannot be replayed against any other one — two deployments differing in a
// single parameter are distinct sales.
func (c *Config) Hash() common.Hash {
	var buf []byte
	u64 := func(v uint64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		buf = append(buf, b[:]...)
	}
	bytes := func(b []byte) {
		u64(uint64(len(b)))
		buf = append(buf, b...)
	}
	bigint := func(v *big.Int) {
		bytes(v.Bytes())
	}

	bytes([]byte(c.Name))
	u64(uint64(len(c.Tiers)))
	for _, tier := range c.Tiers {
		bigint(tier.Rate)
		bigint(tier.Cap)
	}
	u64(uint64(c.Start))
	u64(uint64(c.End))
	bigint(c.Goal)
	bigint(c.Overshoot)
	buf = append(buf, c.Beneficiary.Bytes()...)
	if c.RequireVoucher {
		u64(1)
	} else {
		u64(0)
	}
	u64(uint64(len(c.KYCSigners)))
	for _, signer := range c.KYCSigners {
		buf = append(buf, signer.Bytes()...)
	}
	bigint(c.FounderTokens)
	bigint(c.AdditionalTokens)
	u64(c.VestingSteps)
	u64(c.VestingStepSeconds)
	return common.BytesToHash(crypto.Keccak256(buf))
}

// TotalCap is the final tier's cumulative cap, i.e. the hard ceiling on
// tokens that can ever be sold.
func (c *Config) TotalCap() *big.Int {
	return new(big.Int).Set(c.Tiers[len(c.Tiers)-1].Cap)
}

// String returns the configuration as indented JSON, for logs and the
// inspect command. Failures are folded into the output rather than returned,
// since this is a diagnostic surface.
func (c *Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("sale config (marshal failed: %v)", err)
	}
	return string(b)
}
