package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Supervisors are scoped to their assigned sites; admins can act
// on any site.
const (
	RoleSuperAdmin = "super_admin"
	RoleSiteAdmin  = "site_admin"
	RoleSupervisor = "supervisor"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Role      string    `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the already-authenticated identity performing an operation,
// extracted from the request by the JWT middleware.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// IsAdmin reports whether the actor holds an elevated, site-unscoped role.
func (a *Actor) IsAdmin() bool {
	return a.Role == RoleSuperAdmin || a.Role == RoleSiteAdmin
}
