package sale

import (
	"errors"
	"math/big"
)

// ErrScheduleExhausted is returned by the tier lookups when the cumulative
// sold counter has reached the final tier's cap. The engine checks the
// supply ceiling before committing a contribution, so in a healthy sale this
// error only surfaces from out-of-band queries after a sell-out.
var ErrScheduleExhausted = errors.New("tier schedule exhausted")

// TierFor returns the index of the tier active at the given cumulative
// tokens-sold counter: the smallest i such that sold < Tiers[i].Cap.
func (c *Config) TierFor(sold *big.Int) (int, error) {
	for i, tier := range c.Tiers {
		if sold.Cmp(tier.Cap) < 0 {
			return i, nil
		}
	}
	return 0, ErrScheduleExhausted
}

// RateFor returns the token rate of the tier active at the given cumulative
// sold counter.
func (c *Config) RateFor(sold *big.Int) (*big.Int, error) {
	i, err := c.TierFor(sold)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.Tiers[i].Rate), nil
}

// CapFor returns the nominal cumulative cap of the active tier.
func (c *Config) CapFor(sold *big.Int) (*big.Int, error) {
	i, err := c.TierFor(sold)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.Tiers[i].Cap), nil
}

// ExtendedCap returns the active tier's cap plus the overshoot allowance
// converted into tokens at the active tier's rate. A contribution may push
// the sold counter past the nominal cap up to this ceiling, spilling into
// the next tier's supply at the current tier's price.
//
// The final tier has no overshoot: its cap is the sale's absolute ceiling.
func (c *Config) ExtendedCap(sold *big.Int) (*big.Int, error) {
	i, err := c.TierFor(sold)
	if err != nil {
		return nil, err
	}
	cap := new(big.Int).Set(c.Tiers[i].Cap)
	if i == len(c.Tiers)-1 {
		return cap, nil
	}
	slack := new(big.Int).Mul(c.Overshoot, c.Tiers[i].Rate)
	return cap.Add(cap, slack), nil
}

// TokensForValue computes the token allocation for a contribution of the
// given value at the current point of the schedule: floor(value * rate).
// The whole contribution is priced at the tier active when it arrives; it
// is never split across tiers at different rates. Fractional remainders are
// discarded, never rounded up, so the schedule can't over-allocate.
func (c *Config) TokensForValue(value, sold *big.Int) (*big.Int, error) {
	rate, err := c.RateFor(sold)
	if err != nil {
		return nil, err
	}
	return rate.Mul(rate, value), nil
}

// RemainingTokens returns how many tokens are still sellable under the final
// cap, ignoring overshoot. Zero once the schedule is exhausted.
func (c *Config) RemainingTokens(sold *big.Int) *big.Int {
	total := c.TotalCap()
	if sold.Cmp(total) >= 0 {
		return new(big.Int)
	}
	return total.Sub(total, sold)
}
