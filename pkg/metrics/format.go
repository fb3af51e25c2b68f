package metrics

import (
	"fmt"
	"time"
)

// FormatDuration renders an aggregate duration the way the status panel
// displays it: "11h30min" at or above one hour, "42 min" below. The branch
// is intentional, short aggregates drop the hour part entirely. Minutes are
// truncated, not rounded.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int(d / time.Minute)
	if totalMinutes >= 60 {
		return fmt.Sprintf("%dh%02dmin", totalMinutes/60, totalMinutes%60)
	}
	return fmt.Sprintf("%d min", totalMinutes)
}

// FormatElapsed renders the wall-clock length of a single event as
// zero-padded HH:MM:SS by floor division of the delta. This is deliberately
// not calendar-aware and must not be unified with the aggregate formatting
// above: one is "elapsed time of one event", the other is a calendar-bucketed
// display convention.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
