package timefmt

import (
	"time"
)

// SecondsToMillis converts fractional epoch seconds, as stored on history
// entries, to truncated epoch milliseconds
func SecondsToMillis(seconds float64) int64 {
	return int64(seconds * 1000)
}

// Label formats epoch milliseconds as a compact day/month hour:minute chart
// label
func Label(millis int64) string {
	return time.UnixMilli(millis).Format("02/01 15:04")
}
