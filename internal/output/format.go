package output

import (
	"fmt"
	"strings"
	"time"
)

// Duration formats a millisecond count as a compact human-readable duration.
// Sub-minute values round to seconds; anything shorter than a second shows
// as "0s".
func Duration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// DayBar renders a proportional bar for one day of a period view, scaled
// against the period's busiest day.
func DayBar(ms, maxMs int64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if maxMs > 0 {
		filled = int(float64(ms) / float64(maxMs) * float64(width))
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return StyleFocus.Render(bar)
}
