package models

import "time"

// Access levels; admins (>= AccessLevelAdmin) may manage cameras and employees.
const (
	AccessLevelEmployee = 0
	AccessLevelAdmin    = 1
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AccessLevel  int       `json:"accessLevel"`
	CompanyID    int64     `json:"companyId"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
