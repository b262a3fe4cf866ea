package models

import (
	"time"

	"github.com/google/uuid"
)

// Correction is one same-day correction applied to a DailyRecord. The ledger
// is append-only: rows are never updated or deleted while the parent exists.
type Correction struct {
	ID               uuid.UUID `json:"id" db:"id"`
	DailyRecordID    uuid.UUID `json:"daily_record_id" db:"daily_record_id"`
	CorrectionReason string    `json:"correction_reason" db:"correction_reason"`
	OldValues        JSONB     `json:"old_values" db:"old_values"`
	NewValues        JSONB     `json:"new_values" db:"new_values"`
	CorrectedBy      uuid.UUID `json:"corrected_by" db:"corrected_by"`
	CorrectedAt      time.Time `json:"corrected_at" db:"corrected_at"`
}
