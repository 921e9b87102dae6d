package protocol

import "time"

// NanosSinceMidnight returns t's time-of-day expressed as nanoseconds since
// local midnight, the timestamp convention used on every outbound message.
func NanosSinceMidnight(t time.Time) uint64 {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return uint64(t.Sub(midnight).Nanoseconds())
}
