package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"worksite/internal/models"

	"github.com/google/uuid"
)

// CorrectionsRepository reads the same-day correction ledger. Appends happen
// inside the record correction transaction (DailyRecordsRepository); this
// component has no write path of its own and no independent authorization;
// access control is inherited from the parent record.
type CorrectionsRepository interface {
	ListByRecord(ctx context.Context, dailyRecordID uuid.UUID) ([]*models.Correction, error)
	CountByRecord(ctx context.Context, dailyRecordID uuid.UUID) (int, error)
}

type correctionsRepo struct {
	db Database
}

func NewCorrectionsRepo(db Database) CorrectionsRepository {
	return &correctionsRepo{db: db}
}

func (r *correctionsRepo) ListByRecord(ctx context.Context, dailyRecordID uuid.UUID) ([]*models.Correction, error) {
	query := `
		SELECT id, daily_record_id, correction_reason, old_values, new_values, corrected_by, corrected_at
		FROM same_day_corrections
		WHERE daily_record_id = $1
		ORDER BY corrected_at DESC
	`

	rows, err := r.db.Query(ctx, query, dailyRecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	defer rows.Close()

	var corrections []*models.Correction
	for rows.Next() {
		correction := &models.Correction{}
		var oldValues, newValues []byte

		err := rows.Scan(
			&correction.ID,
			&correction.DailyRecordID,
			&correction.CorrectionReason,
			&oldValues,
			&newValues,
			&correction.CorrectedBy,
			&correction.CorrectedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(oldValues) > 0 {
			if err := json.Unmarshal(oldValues, &correction.OldValues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal old_values: %w", err)
			}
		}
		if len(newValues) > 0 {
			if err := json.Unmarshal(newValues, &correction.NewValues); err != nil {
				return nil, fmt.Errorf("failed to unmarshal new_values: %w", err)
			}
		}

		corrections = append(corrections, correction)
	}

	return corrections, rows.Err()
}

func (r *correctionsRepo) CountByRecord(ctx context.Context, dailyRecordID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM same_day_corrections WHERE daily_record_id = $1`
	if err := r.db.QueryRow(ctx, query, dailyRecordID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count corrections: %w", err)
	}
	return count, nil
}
