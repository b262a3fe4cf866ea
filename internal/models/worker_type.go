package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkerType is a labor category defined per site (e.g. mason, loader).
// Daily record maps are keyed by worker type IDs.
type WorkerType struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SiteID    uuid.UUID `json:"site_id" db:"site_id"`
	Name      string    `json:"name" db:"name"`
	DailyRate float64   `json:"daily_rate" db:"daily_rate"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
