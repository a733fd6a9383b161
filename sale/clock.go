package sale

// Phase is the temporal state of the sale, derived purely from the configured
// window and the current time. It carries no stored state: two calls with the
// same `now` always agree.
type Phase int

const (
	// PhaseNotStarted means now is strictly before the sale window.
	PhaseNotStarted Phase = iota

	// PhaseRunning means the window is open and contributions are accepted.
	PhaseRunning

	// PhaseEnded means the window has closed; only finalization and (after a
	// Failure outcome) refunds remain.
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Phase derives the sale phase at the given time. The window is half-open:
// now == Start is Running, now == End is Ended.
func (c *Config) Phase(now Timestamp) Phase {
	switch {
	case now < c.Start:
		return PhaseNotStarted
	case now >= c.End:
		return PhaseEnded
	default:
		return PhaseRunning
	}
}

// Started reports whether the sale window has opened by `now`.
func (c *Config) Started(now Timestamp) bool {
	return now >= c.Start
}

// Ended reports whether the sale window has closed by `now`.
func (c *Config) Ended(now Timestamp) bool {
	return now >= c.End
}
