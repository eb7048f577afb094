package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
//
// Active starts true and only ever moves to false (soft delete).
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	Active    bool
}

func (u *User) IsActive() bool { return u != nil && u.Active }
