package models

import "time"

type Camera struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CompanyID int64     `json:"companyId"`
	CreatedBy *int64    `json:"createdBy,omitempty"`
	IsDeleted bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
