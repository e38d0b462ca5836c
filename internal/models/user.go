package models

import "time"

// User roles. Role checks happen in the auth middleware; handlers only see
// the resolved role string.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application account
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username" validate:"required,max=64"`
	Email             string    `json:"email" validate:"required,email,max=254"`
	FullName          string    `json:"full_name" validate:"max=128"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role" validate:"required,oneof=admin user"`
	Active            bool      `json:"active"`
	PasswordChangedAt time.Time `json:"password_changed_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PasswordExpired reports whether the password is older than maxAge.
// A zero maxAge disables expiry.
func (u *User) PasswordExpired(maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(u.PasswordChangedAt) > maxAge
}
