// Package accounts manages user identities, credentials and roles.
package accounts

import (
	"strings"
	"time"
)

// Roles. The admin role unlocks the administrative surface.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a registered user.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }

// RegisterRequest carries a signup intent.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}
