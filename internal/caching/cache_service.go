package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"worksite/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent. Callers fall through to the
// database on any cache error.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	// Site caching
	GetSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error)
	SetSite(ctx context.Context, site *models.Site, ttl time.Duration) error
	DeleteSite(ctx context.Context, siteID uuid.UUID) error

	// Per-site worker type caching
	GetWorkerTypes(ctx context.Context, siteID uuid.UUID) ([]*models.WorkerType, error)
	SetWorkerTypes(ctx context.Context, siteID uuid.UUID, workerTypes []*models.WorkerType, ttl time.Duration) error
	DeleteWorkerTypes(ctx context.Context, siteID uuid.UUID) error

	// Supervisor site-scope caching
	GetAssignedSites(ctx context.Context, supervisorID uuid.UUID) ([]uuid.UUID, error)
	SetAssignedSites(ctx context.Context, supervisorID uuid.UUID, siteIDs []uuid.UUID, ttl time.Duration) error
	DeleteAssignedSites(ctx context.Context, supervisorID uuid.UUID) error

	// Health probe
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	return &redisCacheService{client: client}
}

func siteKey(siteID uuid.UUID) string {
	return fmt.Sprintf("site:%s", siteID)
}

func workerTypesKey(siteID uuid.UUID) string {
	return fmt.Sprintf("site:%s:worker_types", siteID)
}

func assignedSitesKey(supervisorID uuid.UUID) string {
	return fmt.Sprintf("supervisor:%s:sites", supervisorID)
}

func (s *redisCacheService) GetSite(ctx context.Context, siteID uuid.UUID) (*models.Site, error) {
	data, err := s.client.Get(ctx, siteKey(siteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	site := &models.Site{}
	if err := json.Unmarshal(data, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *redisCacheService) SetSite(ctx context.Context, site *models.Site, ttl time.Duration) error {
	data, err := json.Marshal(site)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, siteKey(site.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteSite(ctx context.Context, siteID uuid.UUID) error {
	return s.client.Del(ctx, siteKey(siteID)).Err()
}

func (s *redisCacheService) GetWorkerTypes(ctx context.Context, siteID uuid.UUID) ([]*models.WorkerType, error) {
	data, err := s.client.Get(ctx, workerTypesKey(siteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var workerTypes []*models.WorkerType
	if err := json.Unmarshal(data, &workerTypes); err != nil {
		return nil, err
	}
	return workerTypes, nil
}

func (s *redisCacheService) SetWorkerTypes(ctx context.Context, siteID uuid.UUID, workerTypes []*models.WorkerType, ttl time.Duration) error {
	data, err := json.Marshal(workerTypes)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, workerTypesKey(siteID), data, ttl).Err()
}

func (s *redisCacheService) DeleteWorkerTypes(ctx context.Context, siteID uuid.UUID) error {
	return s.client.Del(ctx, workerTypesKey(siteID)).Err()
}

func (s *redisCacheService) GetAssignedSites(ctx context.Context, supervisorID uuid.UUID) ([]uuid.UUID, error) {
	data, err := s.client.Get(ctx, assignedSitesKey(supervisorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var siteIDs []uuid.UUID
	if err := json.Unmarshal(data, &siteIDs); err != nil {
		return nil, err
	}
	return siteIDs, nil
}

func (s *redisCacheService) SetAssignedSites(ctx context.Context, supervisorID uuid.UUID, siteIDs []uuid.UUID, ttl time.Duration) error {
	data, err := json.Marshal(siteIDs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, assignedSitesKey(supervisorID), data, ttl).Err()
}

func (s *redisCacheService) DeleteAssignedSites(ctx context.Context, supervisorID uuid.UUID) error {
	return s.client.Del(ctx, assignedSitesKey(supervisorID)).Err()
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
