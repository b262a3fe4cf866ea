package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"worksite/internal/models"
	"worksite/internal/repositories"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// CreateRecordInput carries the caller-supplied fields for a new daily
// record. Totals inside the maps are recomputed server-side regardless of
// what the caller sent.
type CreateRecordInput struct {
	SiteID         uuid.UUID
	RecordDate     time.Time
	WorkerCounts   map[string]int
	PaymentsMade   map[string]float64
	ProductionData models.JSONB
	WorkerNames    map[string][]string
	Notes          *string
}

type RecordService interface {
	CreateRecord(ctx context.Context, actor *models.Actor, meta models.RequestMeta, input *CreateRecordInput) (*models.DailyRecord, error)
	GetRecord(ctx context.Context, actor *models.Actor, recordID uuid.UUID) (*models.DailyRecord, error)
	ListRecords(ctx context.Context, actor *models.Actor, filter *models.RecordSearchFilter) (*models.RecordPage, error)

	// CorrectRecord applies a same-day correction: the record update and the
	// correction ledger entry commit atomically.
	CorrectRecord(ctx context.Context, actor *models.Actor, meta models.RequestMeta, recordID uuid.UUID, patch *models.RecordPatch, reason string) (*models.DailyRecord, error)

	// LockRecord finalizes a record. Locking is irreversible.
	LockRecord(ctx context.Context, actor *models.Actor, meta models.RequestMeta, recordID uuid.UUID) (*models.DailyRecord, error)

	// LockStale locks every unlocked record older than the given number of
	// days. Used by the scheduled sweep; entries are audited as system
	// actions.
	LockStale(ctx context.Context, olderThanDays int) (int, error)
}

type recordService struct {
	recordsRepo     repositories.DailyRecordsRepository
	correctionsRepo repositories.CorrectionsRepository
	siteService     SiteService
	authz           AuthzService
	audit           AuditService
	clock           clockwork.Clock
}

func NewRecordService(
	recordsRepo repositories.DailyRecordsRepository,
	correctionsRepo repositories.CorrectionsRepository,
	siteService SiteService,
	authz AuthzService,
	audit AuditService,
	clock clockwork.Clock,
) RecordService {
	return &recordService{
		recordsRepo:     recordsRepo,
		correctionsRepo: correctionsRepo,
		siteService:     siteService,
		authz:           authz,
		audit:           audit,
		clock:           clock,
	}
}

func (s *recordService) CreateRecord(ctx context.Context, actor *models.Actor, meta models.RequestMeta, input *CreateRecordInput) (*models.DailyRecord, error) {
	site, err := s.siteService.GetSite(ctx, input.SiteID)
	if err != nil {
		return nil, err
	}
	if !site.IsActive() {
		return nil, ErrSiteInactive
	}

	now := s.clock.Now()
	if calendarDayAfter(input.RecordDate, now) {
		return nil, ErrFutureDate
	}

	allowed, err := s.authz.CanAccessSite(ctx, actor, input.SiteID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}

	if err := s.validateRecordKeys(ctx, input.SiteID, input.WorkerCounts, input.PaymentsMade, input.WorkerNames); err != nil {
		return nil, err
	}

	record := &models.DailyRecord{
		ID:             uuid.New(),
		SiteID:         input.SiteID,
		RecordDate:     startOfDay(input.RecordDate),
		SupervisorID:   actor.ID,
		WorkerCounts:   withCountTotal(input.WorkerCounts),
		PaymentsMade:   withPaymentTotal(input.PaymentsMade),
		ProductionData: input.ProductionData,
		WorkerNames:    input.WorkerNames,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if record.ProductionData == nil {
		record.ProductionData = models.JSONB{}
	}

	if err := s.recordsRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRecord) {
			return nil, ErrDuplicateRecord
		}
		return nil, err
	}

	s.audit.Record(ctx, auditEntry("daily_records", record.ID.String(), models.ActionInsert, actor, meta, nil, record.MutableSnapshot()))
	return record, nil
}

func (s *recordService) GetRecord(ctx context.Context, actor *models.Actor, recordID uuid.UUID) (*models.DailyRecord, error) {
	record, err := s.recordsRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	allowed, err := s.authz.CanAccessSite(ctx, actor, record.SiteID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}

	corrections, err := s.correctionsRepo.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	record.Corrections = corrections
	return record, nil
}

func (s *recordService) ListRecords(ctx context.Context, actor *models.Actor, filter *models.RecordSearchFilter) (*models.RecordPage, error) {
	if filter == nil {
		filter = &models.RecordSearchFilter{}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	s.authz.ApplyScope(actor, filter)

	records, total, err := s.recordsRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := (total + filter.Limit - 1) / filter.Limit
	return &models.RecordPage{
		Records: records,
		Page:    filter.Offset/filter.Limit + 1,
		Limit:   filter.Limit,
		Total:   total,
		Pages:   pages,
	}, nil
}

func (s *recordService) CorrectRecord(ctx context.Context, actor *models.Actor, meta models.RequestMeta, recordID uuid.UUID, patch *models.RecordPatch, reason string) (*models.DailyRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}
	if patch == nil || patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	record, err := s.recordsRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	allowed, err := s.authz.CanAccessSite(ctx, actor, record.SiteID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}

	if record.IsLocked {
		return nil, ErrRecordLocked
	}
	now := s.clock.Now()
	if !sameCalendarDay(record.RecordDate, now) {
		return nil, ErrNotSameDay
	}

	if err := s.validateRecordKeys(ctx, record.SiteID, patch.WorkerCounts, patch.PaymentsMade, patch.WorkerNames); err != nil {
		return nil, err
	}

	oldValues := record.MutableSnapshot()

	if patch.WorkerCounts != nil {
		record.WorkerCounts = withCountTotal(patch.WorkerCounts)
	}
	if patch.PaymentsMade != nil {
		record.PaymentsMade = withPaymentTotal(patch.PaymentsMade)
	}
	if patch.ProductionData != nil {
		record.ProductionData = patch.ProductionData
	}
	if patch.WorkerNames != nil {
		record.WorkerNames = patch.WorkerNames
	}
	if patch.Notes != nil {
		record.Notes = patch.Notes
	}
	record.UpdatedAt = now

	correction := &models.Correction{
		ID:               uuid.New(),
		DailyRecordID:    record.ID,
		CorrectionReason: reason,
		OldValues:        oldValues,
		NewValues:        record.MutableSnapshot(),
		CorrectedBy:      actor.ID,
		CorrectedAt:      now,
	}

	if err := s.recordsRepo.ApplyCorrection(ctx, record, correction); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	entry := auditEntry("daily_records", record.ID.String(), models.ActionUpdate, actor, meta, correction.OldValues, correction.NewValues)
	entry.Reason = &reason
	s.audit.Record(ctx, entry)

	return record, nil
}

func (s *recordService) LockRecord(ctx context.Context, actor *models.Actor, meta models.RequestMeta, recordID uuid.UUID) (*models.DailyRecord, error) {
	record, err := s.recordsRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	allowed, err := s.authz.CanAccessSite(ctx, actor, record.SiteID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}

	if record.IsLocked {
		return nil, ErrAlreadyLocked
	}

	now := s.clock.Now()
	if err := s.recordsRepo.Lock(ctx, recordID, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// The record existed a moment ago, so the guard hit the lock
			// flag, not a missing row.
			return nil, ErrAlreadyLocked
		}
		return nil, err
	}

	record.IsLocked = true
	record.LockedAt = &now
	record.UpdatedAt = now

	s.audit.Record(ctx, auditEntry("daily_records", record.ID.String(), models.ActionUpdate, actor, meta, nil, models.JSONB{
		"action":    "locked",
		"locked_at": now,
	}))
	return record, nil
}

func (s *recordService) LockStale(ctx context.Context, olderThanDays int) (int, error) {
	now := s.clock.Now()
	cutoff := startOfDay(now).AddDate(0, 0, -olderThanDays)

	ids, err := s.recordsRepo.LockOlderThan(ctx, cutoff, now)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		s.audit.Record(ctx, auditEntry("daily_records", id.String(), models.ActionUpdate, nil, models.RequestMeta{}, nil, models.JSONB{
			"action":    "locked",
			"locked_at": now,
		}))
	}
	return len(ids), nil
}

func (s *recordService) validateRecordKeys(ctx context.Context, siteID uuid.UUID, counts map[string]int, payments map[string]float64, names map[string][]string) error {
	keys := make([]string, 0, len(counts)+len(payments)+len(names))
	for key, count := range counts {
		if count < 0 {
			return ErrNegativeValue
		}
		keys = append(keys, key)
	}
	for key, amount := range payments {
		if amount < 0 {
			return ErrNegativeValue
		}
		keys = append(keys, key)
	}
	for key := range names {
		keys = append(keys, key)
	}
	return s.siteService.ValidateWorkerTypeKeys(ctx, siteID, keys)
}

// withCountTotal copies the map and recomputes the aggregate entry. A nil
// input yields a map holding only the zero total.
func withCountTotal(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts)+1)
	total := 0
	for key, v := range counts {
		if key == models.TotalKey {
			continue
		}
		out[key] = v
		total += v
	}
	out[models.TotalKey] = total
	return out
}

func withPaymentTotal(payments map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(payments)+1)
	total := 0.0
	for key, v := range payments {
		if key == models.TotalKey {
			continue
		}
		out[key] = v
		total += v
	}
	out[models.TotalKey] = total
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// calendarDayAfter reports whether a falls on a later calendar date than b.
// Dates are compared as (year, month, day) triples in each value's own
// location, so a UTC-midnight record date is never rejected just because the
// server clock runs in a zone ahead of UTC.
func calendarDayAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
