package page

import (
	"fmt"
	"math"
	"time"
)

// Elapsed formats the whole days and hours between since and now,
// e.g. "412 dní a 5 hodín". Seconds are rounded before splitting.
func Elapsed(since, now time.Time) string {
	secs := int64(math.Round(now.Sub(since).Seconds()))
	if secs < 0 {
		secs = 0
	}

	days := secs / (24 * 60 * 60)
	secs -= days * 24 * 60 * 60
	hours := secs / (60 * 60)

	return fmt.Sprintf("%d dní a %d hodín", days, hours)
}
