package models

import (
	"time"

	"github.com/google/uuid"
)

// TotalKey is the synthetic aggregate key maintained inside worker_counts
// and payments_made. It is always recomputed server-side.
const TotalKey = "total"

// DailyRecord is the daily work record for one site and one calendar date.
// Exactly one record may exist per (site_id, record_date).
type DailyRecord struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	SiteID         uuid.UUID           `json:"site_id" db:"site_id"`
	RecordDate     time.Time           `json:"record_date" db:"record_date"`
	SupervisorID   uuid.UUID           `json:"supervisor_id" db:"supervisor_id"`
	WorkerCounts   map[string]int      `json:"worker_counts" db:"worker_counts"`
	PaymentsMade   map[string]float64  `json:"payments_made" db:"payments_made"`
	ProductionData JSONB               `json:"production_data" db:"production_data"`
	WorkerNames    map[string][]string `json:"worker_names,omitempty" db:"worker_names"`
	Notes          *string             `json:"notes" db:"notes"`
	IsLocked       bool                `json:"is_locked" db:"is_locked"`
	LockedAt       *time.Time          `json:"locked_at,omitempty" db:"locked_at"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`

	// Corrections is populated on detail reads, newest first.
	Corrections []*Correction `json:"corrections,omitempty" db:"-"`
}

// RecordPatch is a typed partial update for the five mutable fields of a
// DailyRecord. Nil fields keep their stored value; unknown keys cannot be
// expressed at all.
type RecordPatch struct {
	WorkerCounts   map[string]int      `json:"worker_counts,omitempty"`
	PaymentsMade   map[string]float64  `json:"payments_made,omitempty"`
	ProductionData JSONB               `json:"production_data,omitempty"`
	WorkerNames    map[string][]string `json:"worker_names,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *RecordPatch) IsEmpty() bool {
	return p.WorkerCounts == nil && p.PaymentsMade == nil &&
		p.ProductionData == nil && p.WorkerNames == nil && p.Notes == nil
}

// MutableSnapshot captures the five mutable fields as a JSONB payload for
// the correction ledger and the audit trail.
func (r *DailyRecord) MutableSnapshot() JSONB {
	snap := JSONB{
		"worker_counts":   r.WorkerCounts,
		"payments_made":   r.PaymentsMade,
		"production_data": r.ProductionData,
		"notes":           r.Notes,
	}
	if r.WorkerNames != nil {
		snap["worker_names"] = r.WorkerNames
	}
	return snap
}

// RecordSearchFilter holds filter criteria for daily record listings.
type RecordSearchFilter struct {
	SiteID        *uuid.UUID `json:"site_id,omitempty"`
	SupervisorID  *uuid.UUID `json:"supervisor_id,omitempty"`
	ProjectID     *uuid.UUID `json:"project_id,omitempty"`
	ClientCompany string     `json:"client_company,omitempty"` // partial match
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`

	// ScopeSupervisorID restricts results to sites assigned to this
	// supervisor. The store applies it unconditionally when set; callers
	// cannot widen it through the other filters.
	ScopeSupervisorID *uuid.UUID `json:"-"`

	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// RecordPage is a page of daily records plus pagination metadata.
type RecordPage struct {
	Records []*DailyRecord `json:"records"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
}
