// Package events defines the payloads pushed over the realtime hub.
package events

// ActivityChanged is the sentinel broadcast whenever activity data for a
// scope changes. Clients treat it as an opaque "re-fetch now" marker; the
// payload deliberately carries no data so old and new dashboards interpret
// it the same way.
const ActivityChanged = "activity_changed"

// StatusChanged is emitted when a cat's health status moves. Additive
// changes only; dashboards ignore fields they don't know.
type StatusChanged struct {
	Type      string `json:"type"`
	CatID     int64  `json:"catId"`
	Previous  string `json:"previous"`
	Current   string `json:"current"`
	Direction string `json:"direction"`
}
