package engine

import "errors"

// Every failure of a mutating operation is one of these sentinels (possibly
// wrapped with context). A failing operation leaves the sale state exactly
// as it was: no partial credit, no partial value movement, nothing to undo.
var (
	// ErrNotRunning means the contribution arrived outside the sale window.
	ErrNotRunning = errors.New("sale is not running")

	// ErrUnauthorized means the voucher was missing, malformed, or signed by
	// an untrusted identity.
	ErrUnauthorized = errors.New("contribution not authorized")

	// ErrCapExceeded means the contribution would push the contributor's
	// cumulative deposits past their voucher's ceiling.
	ErrCapExceeded = errors.New("contributor cap exceeded")

	// ErrSupplyExhausted means the computed token allocation would pass the
	// active tier's extended cap (or the schedule is sold out). The whole
	// contribution is rejected; there is no partial fill.
	ErrSupplyExhausted = errors.New("token supply exhausted")

	// ErrInvalidValue means a nil, zero or negative contribution value.
	ErrInvalidValue = errors.New("invalid contribution value")

	// ErrTooEarly means finalize was called before the sale window closed.
	ErrTooEarly = errors.New("sale has not ended yet")

	// ErrAlreadyFinalized means the one-time finalization already ran.
	ErrAlreadyFinalized = errors.New("sale already finalized")

	// ErrAlreadyPreallocated means the one-time token preallocation already ran.
	ErrAlreadyPreallocated = errors.New("tokens already preallocated")

	// ErrNotFailure means a refund was claimed while the sale is not in the
	// Failure outcome.
	ErrNotFailure = errors.New("sale did not fail")

	// ErrNothingToRefund means the contributor has no refundable deposit
	// (never contributed, or already refunded).
	ErrNothingToRefund = errors.New("nothing to refund")
)
