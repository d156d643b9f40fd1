// Package domain holds the persisted records of the venture platform.
package domain

import "time"

// Role distinguishes ordinary contributors from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an application user stored in the database. Telegram
// and ResumeLink are empty until the user completes their profile;
// submitting a startup or applying to a vacancy requires both.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	FullName     string    `json:"full_name"`
	Telegram     string    `json:"telegram"`
	ResumeLink   string    `json:"resume_link"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ProfileComplete reports whether the contact fields required before
// creating listings or applying are filled in.
func (u *User) ProfileComplete() bool {
	return u != nil && u.Telegram != "" && u.ResumeLink != ""
}

// MissingProfileFields names the contact fields still unset, in a stable
// order, for precondition error messages.
func (u *User) MissingProfileFields() []string {
	var missing []string
	if u == nil || u.Telegram == "" {
		missing = append(missing, "telegram")
	}
	if u == nil || u.ResumeLink == "" {
		missing = append(missing, "resume_link")
	}
	return missing
}
