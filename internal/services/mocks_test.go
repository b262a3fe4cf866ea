package services

import (
	"context"
	"time"

	"worksite/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockDailyRecordsRepository struct {
	mock.Mock
}

func (m *MockDailyRecordsRepository) Create(ctx context.Context, record *models.DailyRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDailyRecordsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DailyRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyRecord), args.Error(1)
}

func (m *MockDailyRecordsRepository) List(ctx context.Context, filter *models.RecordSearchFilter) ([]*models.DailyRecord, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.DailyRecord), args.Int(1), args.Error(2)
}

func (m *MockDailyRecordsRepository) ApplyCorrection(ctx context.Context, record *models.DailyRecord, correction *models.Correction) error {
	args := m.Called(ctx, record, correction)
	return args.Error(0)
}

func (m *MockDailyRecordsRepository) Lock(ctx context.Context, id uuid.UUID, lockedAt time.Time) error {
	args := m.Called(ctx, id, lockedAt)
	return args.Error(0)
}

func (m *MockDailyRecordsRepository) LockOlderThan(ctx context.Context, cutoff time.Time, lockedAt time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff, lockedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockCorrectionsRepository struct {
	mock.Mock
}

func (m *MockCorrectionsRepository) ListByRecord(ctx context.Context, dailyRecordID uuid.UUID) ([]*models.Correction, error) {
	args := m.Called(ctx, dailyRecordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Correction), args.Error(1)
}

func (m *MockCorrectionsRepository) CountByRecord(ctx context.Context, dailyRecordID uuid.UUID) (int, error) {
	args := m.Called(ctx, dailyRecordID)
	return args.Int(0), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) GetByTableAndRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tableName, recordID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockSitesRepository struct {
	mock.Mock
}

func (m *MockSitesRepository) Create(ctx context.Context, site *models.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSitesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

func (m *MockSitesRepository) List(ctx context.Context, limit, offset int) ([]*models.Site, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Site), args.Error(1)
}

func (m *MockSitesRepository) IsSupervisorAssigned(ctx context.Context, supervisorID, siteID uuid.UUID) (bool, error) {
	args := m.Called(ctx, supervisorID, siteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSitesRepository) AssignedSiteIDs(ctx context.Context, supervisorID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, supervisorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockWorkerTypesRepository struct {
	mock.Mock
}

func (m *MockWorkerTypesRepository) Create(ctx context.Context, workerType *models.WorkerType) error {
	args := m.Called(ctx, workerType)
	return args.Error(0)
}

func (m *MockWorkerTypesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkerType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkerType), args.Error(1)
}

func (m *MockWorkerTypesRepository) ListBySite(ctx context.Context, siteID uuid.UUID, activeOnly bool) ([]*models.WorkerType, error) {
	args := m.Called(ctx, siteID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorkerType), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

func (m *MockCacheService) SetSite(ctx context.Context, site *models.Site, ttl time.Duration) error {
	args := m.Called(ctx, site, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSite(ctx context.Context, siteID uuid.UUID) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

func (m *MockCacheService) GetWorkerTypes(ctx context.Context, siteID uuid.UUID) ([]*models.WorkerType, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorkerType), args.Error(1)
}

func (m *MockCacheService) SetWorkerTypes(ctx context.Context, siteID uuid.UUID, workerTypes []*models.WorkerType, ttl time.Duration) error {
	args := m.Called(ctx, siteID, workerTypes, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteWorkerTypes(ctx context.Context, siteID uuid.UUID) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

func (m *MockCacheService) GetAssignedSites(ctx context.Context, supervisorID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, supervisorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCacheService) SetAssignedSites(ctx context.Context, supervisorID uuid.UUID, siteIDs []uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, supervisorID, siteIDs, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteAssignedSites(ctx context.Context, supervisorID uuid.UUID) error {
	args := m.Called(ctx, supervisorID)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSiteService struct {
	mock.Mock
}

func (m *MockSiteService) CreateSite(ctx context.Context, site *models.Site, actor *models.Actor, meta models.RequestMeta) error {
	args := m.Called(ctx, site, actor, meta)
	return args.Error(0)
}

func (m *MockSiteService) GetSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

func (m *MockSiteService) ListSites(ctx context.Context, limit, offset int) ([]*models.Site, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Site), args.Error(1)
}

func (m *MockSiteService) CreateWorkerType(ctx context.Context, workerType *models.WorkerType, actor *models.Actor, meta models.RequestMeta) error {
	args := m.Called(ctx, workerType, actor, meta)
	return args.Error(0)
}

func (m *MockSiteService) ListWorkerTypes(ctx context.Context, siteID uuid.UUID, activeOnly bool) ([]*models.WorkerType, error) {
	args := m.Called(ctx, siteID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WorkerType), args.Error(1)
}

func (m *MockSiteService) ValidateWorkerTypeKeys(ctx context.Context, siteID uuid.UUID, keys []string) error {
	args := m.Called(ctx, siteID, keys)
	return args.Error(0)
}

type MockAuthzService struct {
	mock.Mock
}

func (m *MockAuthzService) CanAccessSite(ctx context.Context, actor *models.Actor, siteID uuid.UUID) (bool, error) {
	args := m.Called(ctx, actor, siteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthzService) ApplyScope(actor *models.Actor, filter *models.RecordSearchFilter) {
	m.Called(actor, filter)
}

type MockAuditService struct {
	mock.Mock

	// Entries collects everything recorded, in order.
	Entries []*models.AuditLog
}

func (m *MockAuditService) Record(ctx context.Context, entry *models.AuditLog) {
	m.Entries = append(m.Entries, entry)
	m.Called(ctx, entry)
}

func (m *MockAuditService) GetAuditLog(ctx context.Context, auditLogID uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, auditLogID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditService) GetEntityHistory(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tableName, recordID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditService) GetUserActivity(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func stringPtr(s string) *string {
	return &s
}
