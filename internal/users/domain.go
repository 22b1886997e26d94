package users

import (
	"time"

	"github.com/taskhub/taskhub/internal/roles"
)

// User represents a user account for management.
type User struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	IsActive  bool        `json:"isActive"`
	Roles     []roles.Ref `json:"roles"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// UpdateUserRequest patches profile fields. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	IsActive *bool   `json:"isActive"`
}

// SetRolesRequest replaces the role set of a user. Each entry may be a bare name or an
// object with a name.
type SetRolesRequest struct {
	Roles []roles.Ref `json:"roles" validate:"required"`
}
