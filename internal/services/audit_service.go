package services

import (
	"context"
	"errors"
	"log"
	"time"

	"worksite/internal/models"
	"worksite/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type AuditService interface {
	// Record appends an audit entry. Audit writes are best effort: failures
	// are logged and swallowed so they never fail the operation being audited.
	Record(ctx context.Context, entry *models.AuditLog)

	// Query audit logs
	GetAuditLog(ctx context.Context, auditLogID uuid.UUID) (*models.AuditLog, error)
	ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetEntityHistory(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error)
	GetUserActivity(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

type auditService struct {
	auditLogsRepo repositories.AuditLogsRepository
	clock         clockwork.Clock
}

func NewAuditService(auditLogsRepo repositories.AuditLogsRepository, clock clockwork.Clock) AuditService {
	return &auditService{
		auditLogsRepo: auditLogsRepo,
		clock:         clock,
	}
}

// Record validates and appends an audit entry. Invalid or failed writes are
// logged, never returned: record mutations must not roll back because the
// trail could not be written.
func (s *auditService) Record(ctx context.Context, entry *models.AuditLog) {
	if err := s.validate(entry); err != nil {
		log.Printf("audit: dropping invalid entry for %s.%s: %v", entry.TableName, entry.RecordID, err)
		return
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}

	if err := s.auditLogsRepo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to write %s entry for %s.%s: %v", entry.Action, entry.TableName, entry.RecordID, err)
	}
}

func (s *auditService) validate(entry *models.AuditLog) error {
	if entry.TableName == "" {
		return errors.New("table_name is required")
	}
	if entry.RecordID == "" {
		return errors.New("record_id is required")
	}
	switch entry.Action {
	case models.ActionInsert, models.ActionUpdate, models.ActionDelete:
		return nil
	default:
		return errors.New("unknown action")
	}
}

// GetAuditLog retrieves a single audit log entry
func (s *auditService) GetAuditLog(ctx context.Context, auditLogID uuid.UUID) (*models.AuditLog, error) {
	return s.auditLogsRepo.GetByID(ctx, auditLogID)
}

// ListAuditLogs retrieves multiple audit log entries with filtering
func (s *auditService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	if filters.StartDate != nil && filters.EndDate != nil {
		if filters.EndDate.Sub(*filters.StartDate) > 365*24*time.Hour {
			return nil, errors.New("date range cannot exceed 1 year")
		}
	}

	return s.auditLogsRepo.List(ctx, filters)
}

// GetEntityHistory retrieves audit history for a specific entity
func (s *auditService) GetEntityHistory(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditLogsRepo.GetByTableAndRecord(ctx, tableName, recordID, limit, offset)
}

// GetUserActivity retrieves audit logs for a specific user's actions
func (s *auditService) GetUserActivity(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditLogsRepo.GetByUser(ctx, userID, limit, offset)
}
