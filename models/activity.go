package models

import "time"

// ActivityTitle is the closed set of behaviors the detection pipeline reports.
type ActivityTitle string

const (
	ActivityEat      ActivityTitle = "eat"
	ActivitySleep    ActivityTitle = "sleep"
	ActivityDefecate ActivityTitle = "defecate"
	ActivityUrinate  ActivityTitle = "urinate"
	ActivityDrink    ActivityTitle = "drink"
)

// ActivityTitles lists all valid titles in display order.
var ActivityTitles = []ActivityTitle{
	ActivityEat,
	ActivitySleep,
	ActivityDefecate,
	ActivityUrinate,
	ActivityDrink,
}

func (t ActivityTitle) Valid() bool {
	switch t {
	case ActivityEat, ActivitySleep, ActivityDefecate, ActivityUrinate, ActivityDrink:
		return true
	}
	return false
}

// Activity is one detected behavioral event for one cat.
// EndedAt is nil (or equal to StartedAt) while the activity is still in progress.
type Activity struct {
	ID        int64         `json:"id"`
	Title     ActivityTitle `json:"title"`
	CatID     int64         `json:"catId"`
	CameraID  int64         `json:"cameraId"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
	Cat       *Cat          `json:"cat,omitempty"`
	Camera    *Camera       `json:"camera,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// InProgress reports whether the event has not finished yet.
// A zero-length interval is treated as in progress, matching the feed display.
func (a *Activity) InProgress() bool {
	return a.EndedAt == nil || a.EndedAt.Equal(a.StartedAt)
}

// Duration returns the measured length of the event. In-progress events and
// inconsistent intervals (EndedAt before StartedAt) contribute zero.
func (a *Activity) Duration() time.Duration {
	if a.EndedAt == nil {
		return 0
	}
	d := a.EndedAt.Sub(a.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}
