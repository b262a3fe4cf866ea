package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"worksite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DailyRecordsRepository interface {
	// Create inserts a new daily record. A concurrent create for the same
	// (site_id, record_date) loses with ErrDuplicateRecord via the unique
	// constraint, never via a check-then-insert.
	Create(ctx context.Context, record *models.DailyRecord) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.DailyRecord, error)

	// List returns a filtered page of records plus the total match count.
	// When filter.ScopeSupervisorID is set, results are constrained to that
	// supervisor's assigned sites inside the query itself.
	List(ctx context.Context, filter *models.RecordSearchFilter) ([]*models.DailyRecord, int, error)

	// ApplyCorrection persists the corrected record and appends the
	// correction entry as one transaction. Neither half commits alone.
	ApplyCorrection(ctx context.Context, record *models.DailyRecord, correction *models.Correction) error

	// Lock sets is_locked on a currently unlocked record.
	Lock(ctx context.Context, id uuid.UUID, lockedAt time.Time) error

	// LockOlderThan locks every unlocked record dated strictly before the
	// cutoff date and returns the ids it locked.
	LockOlderThan(ctx context.Context, cutoff time.Time, lockedAt time.Time) ([]uuid.UUID, error)
}

type dailyRecordsRepo struct {
	db Database
}

func NewDailyRecordsRepo(db Database) DailyRecordsRepository {
	return &dailyRecordsRepo{db: db}
}

const dailyRecordColumns = `id, site_id, record_date, supervisor_id, worker_counts, payments_made, production_data, worker_names, notes, is_locked, locked_at, created_at, updated_at`

func (r *dailyRecordsRepo) Create(ctx context.Context, record *models.DailyRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	workerCounts, paymentsMade, productionData, workerNames, err := marshalRecordFields(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO daily_records (id, site_id, record_date, supervisor_id, worker_counts, payments_made, production_data, worker_names, notes, is_locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, NOW(), NOW())
	`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.SiteID,
		record.RecordDate,
		record.SupervisorID,
		workerCounts,
		paymentsMade,
		productionData,
		workerNames,
		record.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create daily record: %w", err)
	}

	return nil
}

func (r *dailyRecordsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DailyRecord, error) {
	query := `
		SELECT ` + dailyRecordColumns + `
		FROM daily_records
		WHERE id = $1
	`

	record, err := scanDailyRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return record, nil
}

func (r *dailyRecordsRepo) List(ctx context.Context, filter *models.RecordSearchFilter) ([]*models.DailyRecord, int, error) {
	if filter == nil {
		filter = &models.RecordSearchFilter{Limit: 20}
	}

	where := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 0

	if filter.SiteID != nil {
		argIdx++
		where += fmt.Sprintf(" AND dr.site_id = $%d", argIdx)
		args = append(args, *filter.SiteID)
	}

	if filter.SupervisorID != nil {
		argIdx++
		where += fmt.Sprintf(" AND dr.supervisor_id = $%d", argIdx)
		args = append(args, *filter.SupervisorID)
	}

	if filter.ProjectID != nil {
		argIdx++
		where += fmt.Sprintf(" AND s.project_id = $%d", argIdx)
		args = append(args, *filter.ProjectID)
	}

	if filter.ClientCompany != "" {
		argIdx++
		where += fmt.Sprintf(" AND s.client_company ILIKE $%d", argIdx)
		args = append(args, "%"+filter.ClientCompany+"%")
	}

	if filter.StartDate != nil {
		argIdx++
		where += fmt.Sprintf(" AND dr.record_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
	}

	if filter.EndDate != nil {
		argIdx++
		where += fmt.Sprintf(" AND dr.record_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
	}

	// Authorization narrowing happens here, not in the caller, so a
	// supervisor-scoped query can never leak other sites' records.
	if filter.ScopeSupervisorID != nil {
		argIdx++
		where += fmt.Sprintf(" AND dr.site_id IN (SELECT site_id FROM site_supervisors WHERE supervisor_id = $%d AND is_active = true)", argIdx)
		args = append(args, *filter.ScopeSupervisorID)
	}

	from := ` FROM daily_records dr JOIN sites s ON s.id = dr.site_id`

	var total int
	countQuery := `SELECT COUNT(*)` + from + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count daily records: %w", err)
	}

	query := `
		SELECT dr.id, dr.site_id, dr.record_date, dr.supervisor_id, dr.worker_counts, dr.payments_made, dr.production_data, dr.worker_names, dr.notes, dr.is_locked, dr.locked_at, dr.created_at, dr.updated_at` +
		from + where + " ORDER BY dr.record_date DESC, dr.created_at DESC"

	if filter.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list daily records: %w", err)
	}
	defer rows.Close()

	var records []*models.DailyRecord
	for rows.Next() {
		record, err := scanDailyRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	return records, total, rows.Err()
}

func (r *dailyRecordsRepo) ApplyCorrection(ctx context.Context, record *models.DailyRecord, correction *models.Correction) error {
	workerCounts, paymentsMade, productionData, workerNames, err := marshalRecordFields(record)
	if err != nil {
		return err
	}

	oldValues, err := json.Marshal(correction.OldValues)
	if err != nil {
		return fmt.Errorf("failed to marshal old_values: %w", err)
	}
	newValues, err := json.Marshal(correction.NewValues)
	if err != nil {
		return fmt.Errorf("failed to marshal new_values: %w", err)
	}

	if correction.ID == uuid.Nil {
		correction.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin correction transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE daily_records
		SET worker_counts = $1, payments_made = $2, production_data = $3, worker_names = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := tx.Exec(ctx, updateQuery,
		workerCounts,
		paymentsMade,
		productionData,
		workerNames,
		record.Notes,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update daily record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	insertQuery := `
		INSERT INTO same_day_corrections (id, daily_record_id, correction_reason, old_values, new_values, corrected_by, corrected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, insertQuery,
		correction.ID,
		correction.DailyRecordID,
		correction.CorrectionReason,
		oldValues,
		newValues,
		correction.CorrectedBy,
		correction.CorrectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append correction: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *dailyRecordsRepo) Lock(ctx context.Context, id uuid.UUID, lockedAt time.Time) error {
	query := `
		UPDATE daily_records
		SET is_locked = true, locked_at = $2, updated_at = NOW()
		WHERE id = $1 AND is_locked = false
	`
	tag, err := r.db.Exec(ctx, query, id, lockedAt)
	if err != nil {
		return fmt.Errorf("failed to lock daily record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *dailyRecordsRepo) LockOlderThan(ctx context.Context, cutoff time.Time, lockedAt time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE daily_records
		SET is_locked = true, locked_at = $2, updated_at = NOW()
		WHERE record_date < $1 AND is_locked = false
		RETURNING id
	`

	rows, err := r.db.Query(ctx, query, cutoff, lockedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stale records: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// marshalRecordFields serializes the JSONB columns of a daily record.
// worker_names stays NULL when individual identities were not recorded.
func marshalRecordFields(record *models.DailyRecord) (workerCounts, paymentsMade, productionData, workerNames []byte, err error) {
	workerCounts, err = json.Marshal(record.WorkerCounts)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal worker_counts: %w", err)
	}

	paymentsMade, err = json.Marshal(record.PaymentsMade)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal payments_made: %w", err)
	}

	productionData, err = json.Marshal(record.ProductionData)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal production_data: %w", err)
	}

	if record.WorkerNames != nil {
		workerNames, err = json.Marshal(record.WorkerNames)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal worker_names: %w", err)
		}
	}

	return workerCounts, paymentsMade, productionData, workerNames, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDailyRecord(row rowScanner) (*models.DailyRecord, error) {
	record := &models.DailyRecord{}
	var workerCounts, paymentsMade, productionData, workerNames []byte

	err := row.Scan(
		&record.ID,
		&record.SiteID,
		&record.RecordDate,
		&record.SupervisorID,
		&workerCounts,
		&paymentsMade,
		&productionData,
		&workerNames,
		&record.Notes,
		&record.IsLocked,
		&record.LockedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(workerCounts) > 0 {
		if err := json.Unmarshal(workerCounts, &record.WorkerCounts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal worker_counts: %w", err)
		}
	}
	if len(paymentsMade) > 0 {
		if err := json.Unmarshal(paymentsMade, &record.PaymentsMade); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payments_made: %w", err)
		}
	}
	if len(productionData) > 0 {
		if err := json.Unmarshal(productionData, &record.ProductionData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal production_data: %w", err)
		}
	}
	if len(workerNames) > 0 {
		if err := json.Unmarshal(workerNames, &record.WorkerNames); err != nil {
			return nil, fmt.Errorf("failed to unmarshal worker_names: %w", err)
		}
	}

	return record, nil
}
