// Package metrics computes the per-cat behavioral metrics shown on the
// status panel: event counts and cumulative durations over a trailing
// calendar window, with truncating daily averages.
package metrics

import (
	"time"

	"github.com/cattus-org/cattus-api/models"
)

// WindowDays lists the trailing windows the dashboard offers.
var WindowDays = []int{3, 7, 15, 30}

// Result is a derived view over an activity list; it is recomputed on every
// call and never cached.
type Result struct {
	Count             int           `json:"count"`
	TotalDuration     time.Duration `json:"totalDuration"`
	AvgPerDay         float64       `json:"avgPerDay"`
	AvgDurationPerDay time.Duration `json:"avgDurationPerDay"`
}

// Aggregate filters activities by category and a trailing window of
// windowDays calendar days ending at now, then derives count, total duration
// and daily averages.
//
// The cutoff is calendar subtraction (AddDate), not a fixed multiple of 24h,
// so it stays consistent with the calendar pickers elsewhere in the product
// across month and DST boundaries. In-progress activities (no end time)
// count toward Count but contribute zero duration. Records without a start
// time are skipped entirely rather than failing the whole computation.
func Aggregate(activities []models.Activity, category models.ActivityTitle, windowDays int, now time.Time) Result {
	if windowDays < 0 {
		windowDays = 0
	}
	cutoff := now.AddDate(0, 0, -windowDays)

	var res Result
	for i := range activities {
		a := &activities[i]
		if a.Title != category || a.StartedAt.IsZero() {
			continue
		}
		if a.StartedAt.Before(cutoff) {
			continue
		}
		res.Count++
		res.TotalDuration += a.Duration()
	}

	// Guard: windowDays is never 0 in practice, but a zero window must not
	// produce NaN/Inf averages.
	if windowDays > 0 {
		res.AvgPerDay = float64(res.Count) / float64(windowDays)
		res.AvgDurationPerDay = res.TotalDuration / time.Duration(windowDays)
	}
	return res
}
