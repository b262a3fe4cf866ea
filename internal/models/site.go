package models

import (
	"time"

	"github.com/google/uuid"
)

// Site statuses
const (
	SiteStatusActive   = "active"
	SiteStatusInactive = "inactive"
)

type Site struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ProjectID     uuid.UUID `json:"project_id" db:"project_id"`
	Name          string    `json:"name" db:"name"`
	Location      *string   `json:"location" db:"location"`
	ClientCompany *string   `json:"client_company" db:"client_company"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the site accepts new daily records.
func (s *Site) IsActive() bool {
	return s.Status == SiteStatusActive
}

// SiteAssignment links a supervisor to a site. Only active assignments grant
// record access.
type SiteAssignment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SiteID       uuid.UUID `json:"site_id" db:"site_id"`
	SupervisorID uuid.UUID `json:"supervisor_id" db:"supervisor_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	AssignedAt   time.Time `json:"assigned_at" db:"assigned_at"`
}
