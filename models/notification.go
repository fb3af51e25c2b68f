package models

import "time"

// NotificationDirection indicates which way a cat's status moved.
type NotificationDirection string

const (
	DirectionUp   NotificationDirection = "up"
	DirectionDown NotificationDirection = "down"
	DirectionNone NotificationDirection = "none"
)

// Notification records a cat status change pushed to the dashboard.
type Notification struct {
	ID          int64                 `json:"id"`
	CompanyID   int64                 `json:"companyId"`
	CatID       int64                 `json:"catId"`
	Cat         *Cat                  `json:"cat,omitempty"`
	Description string                `json:"description"`
	Direction   NotificationDirection `json:"direction"`
	IsRead      bool                  `json:"read"`
	CreatedAt   time.Time             `json:"createdAt"`
}
