package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"worksite/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	// Create appends a new audit trail entry
	Create(ctx context.Context, auditLog *models.AuditLog) error

	// Get audit log by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)

	// List audit logs with filtering options
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)

	// Get audit logs for a specific table and record
	GetByTableAndRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)

	// Get audit logs by user
	GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Database
}

func NewAuditLogsRepo(db Database) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}

	query := `
		INSERT INTO audit_trail (id, table_name, record_id, action, old_values, new_values, user_id, reason, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var oldValuesBytes, newValuesBytes []byte
	var err error

	if auditLog.OldValues != nil {
		oldValuesBytes, err = json.Marshal(auditLog.OldValues)
		if err != nil {
			return fmt.Errorf("failed to marshal old_values: %w", err)
		}
	}

	if auditLog.NewValues != nil {
		newValuesBytes, err = json.Marshal(auditLog.NewValues)
		if err != nil {
			return fmt.Errorf("failed to marshal new_values: %w", err)
		}
	}

	_, err = r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.TableName,
		auditLog.RecordID,
		auditLog.Action,
		oldValuesBytes,
		newValuesBytes,
		auditLog.UserID,
		auditLog.Reason,
		auditLog.IPAddress,
		auditLog.UserAgent,
		auditLog.CreatedAt,
	)

	return err
}

const auditLogColumns = `id, table_name, record_id, action, old_values, new_values, user_id, reason, ip_address, user_agent, created_at`

func (r *auditLogsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	query := `
		SELECT ` + auditLogColumns + `
		FROM audit_trail
		WHERE id = $1
	`

	return scanAuditLog(r.db.QueryRow(ctx, query, id))
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT ` + auditLogColumns + `
		FROM audit_trail
		WHERE 1=1
	`

	args := []interface{}{}
	argIdx := 0

	if filters.TableName != nil {
		argIdx++
		query += fmt.Sprintf(" AND table_name = $%d", argIdx)
		args = append(args, *filters.TableName)
	}

	if filters.RecordID != nil {
		argIdx++
		query += fmt.Sprintf(" AND record_id = $%d", argIdx)
		args = append(args, *filters.RecordID)
	}

	if filters.Action != nil {
		argIdx++
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, *filters.Action)
	}

	if filters.UserID != nil {
		argIdx++
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filters.UserID)
	}

	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}

	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auditLogs []*models.AuditLog
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}

	return auditLogs, rows.Err()
}

func (r *auditLogsRepo) GetByTableAndRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	filters := &models.AuditLogFilters{
		TableName: &tableName,
		RecordID:  &recordID,
		Limit:     limit,
		Offset:    offset,
	}
	return r.List(ctx, filters)
}

func (r *auditLogsRepo) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	filters := &models.AuditLogFilters{
		UserID: &userID,
		Limit:  limit,
		Offset: offset,
	}
	return r.List(ctx, filters)
}

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var oldValuesBytes, newValuesBytes []byte

	err := row.Scan(
		&auditLog.ID,
		&auditLog.TableName,
		&auditLog.RecordID,
		&auditLog.Action,
		&oldValuesBytes,
		&newValuesBytes,
		&auditLog.UserID,
		&auditLog.Reason,
		&auditLog.IPAddress,
		&auditLog.UserAgent,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(oldValuesBytes) > 0 {
		if err := json.Unmarshal(oldValuesBytes, &auditLog.OldValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal old_values: %w", err)
		}
	}

	if len(newValuesBytes) > 0 {
		if err := json.Unmarshal(newValuesBytes, &auditLog.NewValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new_values: %w", err)
		}
	}

	return auditLog, nil
}
