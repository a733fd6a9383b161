package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Outcome is the finalization state of the sale. It starts NotFinalized and
// transitions exactly once, to Success or Failure; both are terminal.
type Outcome uint8

const (
	OutcomeNotFinalized Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFinalized:
		return "not-finalized"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// State returns the finalization outcome.
func (e *Engine) State() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// Preallocated reports whether the one-time token preallocation has run.
func (e *Engine) Preallocated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preallocated
}

// Finalize resolves the sale once the window has closed.
//
// Raised >= goal resolves to Success: the token grants are preallocated (if
// not already done), minting is closed, the ledger is handed to the
// beneficiary, and the raised value is paid out. Raised < goal resolves to
// Failure: no value moves and refunds become claimable.
//
// The outcome is committed last, so if any external step of the Success
// path fails the sale stays Active and Finalize can be retried. Every
// completed step is latched (preallocation, minting close, ledger handover,
// payout), so the retry resumes at the step that failed; the irreversible
// ledger calls are never re-entered.
func (e *Engine) Finalize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.Ended(e.now()) {
		return ErrTooEarly
	}
	if e.outcome != OutcomeNotFinalized {
		return ErrAlreadyFinalized
	}

	if e.totalRaised.Cmp(e.cfg.Goal) < 0 {
		e.outcome = OutcomeFailure
		e.log.WithFields(logrus.Fields{
			"raised": e.totalRaised.String(),
			"goal":   e.cfg.Goal.String(),
		}).Warn("sale finalized: goal missed, refunds armed")
		return nil
	}

	if !e.preallocated {
		if err := e.preallocate(); err != nil {
			return fmt.Errorf("finalize: %w", err)
		}
	}
	if !e.mintingClosed {
		if err := e.ledger.FinishMinting(); err != nil {
			return fmt.Errorf("finalize: closing minting failed: %w", err)
		}
		e.mintingClosed = true
	}
	if !e.handedOver {
		if err := e.ledger.TransferOwnership(e.cfg.Beneficiary); err != nil {
			return fmt.Errorf("finalize: ledger handover failed: %w", err)
		}
		e.handedOver = true
	}
	if !e.paidOut {
		if e.totalRaised.Sign() > 0 {
			if err := e.vault.Transfer(e.cfg.Beneficiary, e.totalRaised); err != nil {
				return fmt.Errorf("finalize: beneficiary payout failed: %w", err)
			}
		}
		e.paidOut = true
	}

	e.outcome = OutcomeSuccess
	e.log.WithFields(logrus.Fields{
		"raised":      e.totalRaised.String(),
		"goal":        e.cfg.Goal.String(),
		"sold":        e.tokensSold.String(),
		"beneficiary": e.cfg.Beneficiary.Hex(),
	}).Info("sale finalized: success")
	return nil
}

// Preallocate runs the one-time founder/advisor token grants: the founder
// allotment is minted step-locked to the beneficiary (unlocking from the
// end of the sale window), the additional allotment is minted liquid. A
// second invocation fails with ErrAlreadyPreallocated. On a sale that
// resolved to Failure the grants are off for good.
func (e *Engine) Preallocate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.preallocated {
		return ErrAlreadyPreallocated
	}
	if e.outcome == OutcomeFailure {
		return ErrAlreadyFinalized
	}
	return e.preallocate()
}

// preallocate mints the grants; callers hold the lock and have checked the
// guard. The done flag flips only after every mint succeeded, so a partial
// failure is retryable; the ledger mints involved are in-process and fail
// together or not at all in practice.
func (e *Engine) preallocate() error {
	if e.cfg.FounderTokens.Sign() > 0 {
		err := e.ledger.MintLocked(
			e.cfg.Beneficiary,
			e.cfg.FounderTokens,
			e.cfg.End,
			e.cfg.VestingSteps,
			e.cfg.VestingStepSeconds,
		)
		if err != nil {
			return fmt.Errorf("founder grant mint failed: %w", err)
		}
	}
	if e.cfg.AdditionalTokens.Sign() > 0 {
		if err := e.ledger.Mint(e.cfg.Beneficiary, e.cfg.AdditionalTokens); err != nil {
			return fmt.Errorf("additional grant mint failed: %w", err)
		}
	}
	e.preallocated = true
	e.log.WithFields(logrus.Fields{
		"founder":    e.cfg.FounderTokens.String(),
		"additional": e.cfg.AdditionalTokens.String(),
	}).Info("token grants preallocated")
	return nil
}
