package models

import "time"

// CatStatus is the coarse health assessment shown on cat cards.
type CatStatus string

const (
	CatStatusOK     CatStatus = "ok"
	CatStatusAlert  CatStatus = "alert"
	CatStatusDanger CatStatus = "danger"
)

func (s CatStatus) Valid() bool {
	switch s {
	case CatStatusOK, CatStatusAlert, CatStatusDanger:
		return true
	}
	return false
}

type Cat struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
	Sex          string     `json:"sex"`
	Picture      string     `json:"picture,omitempty"`
	Observations string     `json:"observations,omitempty"`
	Weight       *float64   `json:"weight,omitempty"`
	Favorite     bool       `json:"favorite"`
	Status       CatStatus  `json:"status"`
	CompanyID    int64      `json:"companyId"`
	CreatedBy    *int64     `json:"createdBy,omitempty"`
	IsDeleted    bool       `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Age returns full years at the given reference time, 0 when birth date is unknown.
func (c *Cat) Age(now time.Time) int {
	if c.BirthDate == nil {
		return 0
	}
	years := now.Year() - c.BirthDate.Year()
	anniversary := c.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
