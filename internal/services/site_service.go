package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"worksite/internal/caching"
	"worksite/internal/models"
	"worksite/internal/repositories"

	"github.com/google/uuid"
)

const (
	siteCacheTTL       = 10 * time.Minute
	workerTypeCacheTTL = 10 * time.Minute
)

type SiteService interface {
	CreateSite(ctx context.Context, site *models.Site, actor *models.Actor, meta models.RequestMeta) error
	GetSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error)
	ListSites(ctx context.Context, limit, offset int) ([]*models.Site, error)

	CreateWorkerType(ctx context.Context, workerType *models.WorkerType, actor *models.Actor, meta models.RequestMeta) error
	ListWorkerTypes(ctx context.Context, siteID uuid.UUID, activeOnly bool) ([]*models.WorkerType, error)

	// ValidateWorkerTypeKeys checks that every key names an active worker
	// type of the site. The aggregate total key is always accepted.
	ValidateWorkerTypeKeys(ctx context.Context, siteID uuid.UUID, keys []string) error
}

type siteService struct {
	sitesRepo       repositories.SitesRepository
	workerTypesRepo repositories.WorkerTypesRepository
	cache           caching.CacheService
	audit           AuditService
}

func NewSiteService(sitesRepo repositories.SitesRepository, workerTypesRepo repositories.WorkerTypesRepository, cache caching.CacheService, audit AuditService) SiteService {
	return &siteService{
		sitesRepo:       sitesRepo,
		workerTypesRepo: workerTypesRepo,
		cache:           cache,
		audit:           audit,
	}
}

func (s *siteService) CreateSite(ctx context.Context, site *models.Site, actor *models.Actor, meta models.RequestMeta) error {
	if strings.TrimSpace(site.Name) == "" {
		return errors.New("site name is required")
	}
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	if site.Status == "" {
		site.Status = models.SiteStatusActive
	}

	if err := s.sitesRepo.Create(ctx, site); err != nil {
		return err
	}

	s.audit.Record(ctx, auditEntry("sites", site.ID.String(), models.ActionInsert, actor, meta, nil, models.JSONB{
		"name":           site.Name,
		"project_id":     site.ProjectID,
		"location":       site.Location,
		"client_company": site.ClientCompany,
		"status":         site.Status,
	}))
	return nil
}

// GetSite returns the site, reading through the cache. Cache failures fall
// back to the database.
func (s *siteService) GetSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	if site, err := s.cache.GetSite(ctx, siteID); err == nil {
		return site, nil
	} else if !errors.Is(err, caching.ErrCacheMiss) {
		log.Printf("cache: site lookup failed for %s: %v", siteID, err)
	}

	site, err := s.sitesRepo.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}

	if err := s.cache.SetSite(ctx, site, siteCacheTTL); err != nil {
		log.Printf("cache: site store failed for %s: %v", siteID, err)
	}
	return site, nil
}

func (s *siteService) ListSites(ctx context.Context, limit, offset int) ([]*models.Site, error) {
	return s.sitesRepo.List(ctx, limit, offset)
}

func (s *siteService) CreateWorkerType(ctx context.Context, workerType *models.WorkerType, actor *models.Actor, meta models.RequestMeta) error {
	if strings.TrimSpace(workerType.Name) == "" {
		return errors.New("worker type name is required")
	}
	if workerType.DailyRate < 0 {
		return errors.New("daily rate cannot be negative")
	}
	if _, err := s.GetSite(ctx, workerType.SiteID); err != nil {
		return err
	}
	if workerType.ID == uuid.Nil {
		workerType.ID = uuid.New()
	}
	workerType.IsActive = true

	if err := s.workerTypesRepo.Create(ctx, workerType); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRecord) {
			return ErrWorkerTypeExists
		}
		return err
	}

	// Invalidate the per-site listing so validations see the new type.
	if err := s.cache.DeleteWorkerTypes(ctx, workerType.SiteID); err != nil {
		log.Printf("cache: worker type invalidation failed for site %s: %v", workerType.SiteID, err)
	}

	s.audit.Record(ctx, auditEntry("worker_types", workerType.ID.String(), models.ActionInsert, actor, meta, nil, models.JSONB{
		"site_id":    workerType.SiteID,
		"name":       workerType.Name,
		"daily_rate": workerType.DailyRate,
	}))
	return nil
}

func (s *siteService) ListWorkerTypes(ctx context.Context, siteID uuid.UUID, activeOnly bool) ([]*models.WorkerType, error) {
	if !activeOnly {
		return s.workerTypesRepo.ListBySite(ctx, siteID, false)
	}
	return s.activeWorkerTypes(ctx, siteID)
}

func (s *siteService) activeWorkerTypes(ctx context.Context, siteID uuid.UUID) ([]*models.WorkerType, error) {
	if workerTypes, err := s.cache.GetWorkerTypes(ctx, siteID); err == nil {
		return workerTypes, nil
	} else if !errors.Is(err, caching.ErrCacheMiss) {
		log.Printf("cache: worker type lookup failed for site %s: %v", siteID, err)
	}

	workerTypes, err := s.workerTypesRepo.ListBySite(ctx, siteID, true)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetWorkerTypes(ctx, siteID, workerTypes, workerTypeCacheTTL); err != nil {
		log.Printf("cache: worker type store failed for site %s: %v", siteID, err)
	}
	return workerTypes, nil
}

func (s *siteService) ValidateWorkerTypeKeys(ctx context.Context, siteID uuid.UUID, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	workerTypes, err := s.activeWorkerTypes(ctx, siteID)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(workerTypes))
	for _, wt := range workerTypes {
		known[wt.ID.String()] = true
	}

	for _, key := range keys {
		if key == models.TotalKey {
			continue
		}
		if !known[key] {
			return ErrInvalidWorkerType
		}
	}
	return nil
}

// auditEntry builds a trail entry from the acting user and request metadata.
// A nil actor marks a system action.
func auditEntry(tableName, recordID, action string, actor *models.Actor, meta models.RequestMeta, oldValues, newValues models.JSONB) *models.AuditLog {
	entry := &models.AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		OldValues: oldValues,
		NewValues: newValues,
	}
	if actor != nil {
		userID := actor.ID
		entry.UserID = &userID
	}
	if meta.IPAddress != "" {
		ip := meta.IPAddress
		entry.IPAddress = &ip
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		entry.UserAgent = &ua
	}
	return entry
}
