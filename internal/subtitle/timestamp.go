package subtitle

import (
	"fmt"
	"math"
)

// FormatTimestamp renders an offset in seconds as an SRT timestamp
// (HH:MM:SS,mmm). Milliseconds are truncated, not rounded; negative or NaN
// input is treated as zero. Hours are not capped at two digits.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// round to whole microseconds first so 1.001 stays 1001ms after truncation
	micros := int64(math.Round(seconds * 1e6))
	ms := micros / 1000

	hours := ms / 3_600_000
	minutes := ms / 60_000 % 60
	secs := ms / 1000 % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
