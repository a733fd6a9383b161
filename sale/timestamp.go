package sale

import "time"

// Timestamp is a sale-engine point in time, expressed in Unix seconds.
// The sale window and vesting schedules are defined at one-second
// granularity, which matches how the deployment parameters are quoted
// (start/end dates, vesting step lengths).
type Timestamp uint64

// TimestampOf converts a standard library time into a sale Timestamp.
// Times before the Unix epoch clamp to zero.
func TimestampOf(t time.Time) Timestamp {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return Timestamp(sec)
}

// Time converts the Timestamp back into a standard library time (UTC).
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add returns the timestamp shifted forward by d, rounded down to seconds.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d/time.Second)
}
