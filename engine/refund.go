package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ClaimRefund returns a contributor's full deposit after a Failure outcome.
// Each deposit is refundable exactly once: the balance is zeroed before the
// payout is attempted, so a recursive claim during the payout finds nothing
// left to spend. If the payout itself fails the balance is restored and the
// claim can be retried.
func (e *Engine) ClaimRefund(contributor common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.outcome != OutcomeFailure {
		return nil, ErrNotFailure
	}
	deposit := e.depositedOf(contributor)
	if deposit.Sign() == 0 {
		return nil, ErrNothingToRefund
	}

	// Zero before paying out.
	amount := new(big.Int).Set(deposit)
	deposit.SetUint64(0)

	if err := e.vault.Transfer(contributor, amount); err != nil {
		deposit.Set(amount)
		return nil, fmt.Errorf("refund payout failed: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"contributor": contributor.Hex(),
		"refunded":    amount.String(),
	}).Info("refund claimed")
	return amount, nil
}
