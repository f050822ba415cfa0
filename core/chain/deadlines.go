package chain

import "time"

// Deadline windows (§3). Expressed as durations so callers can add them to a
// unix-second timestamp.
const (
	RequestToAcceptDeadline = 48 * time.Hour
	RequestToPayDeadline    = 48 * time.Hour
	OfferToSellDeadline     = 48 * time.Hour
	RequestRecourseDeadline = 48 * time.Hour

	// BillValidityPeriod is the 90-day validity window of a bill after
	// issuance. No code in this module checks it: the action engine accepts
	// operations on a chain regardless of the bill's age.
	BillValidityPeriod = 90 * 24 * time.Hour

	// EventTimeSlack is a one-hour allowance for relay-side timestamp skew.
	// No code in this module uses it: the consumer subscribes without a start
	// offset and does not read stored offsets.
	EventTimeSlack = 3600 * time.Second
)

// expired reports whether now is at or past deadlineStart+window.
func expired(deadlineStart uint64, window time.Duration, now uint64) bool {
	return now >= deadlineStart+uint64(window.Seconds())
}
