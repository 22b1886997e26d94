package auth

import (
	"time"

	"github.com/taskhub/taskhub/internal/roles"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	Roles        []roles.Ref
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames returns the canonical role names of the user.
func (u *User) RoleNames() []string {
	return roles.Names(u.Roles)
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Roles []roles.Ref `json:"roles"`
}

// ProfileOf builds the public view of u.
func ProfileOf(u *User) Profile {
	refs := u.Roles
	if refs == nil {
		refs = []roles.Ref{}
	}
	return Profile{ID: u.ID, Email: u.Email, Name: u.Name, Roles: refs}
}
