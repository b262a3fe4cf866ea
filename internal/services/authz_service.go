package services

import (
	"context"
	"errors"
	"log"
	"time"

	"worksite/internal/caching"
	"worksite/internal/models"
	"worksite/internal/repositories"

	"github.com/google/uuid"
)

const assignmentCacheTTL = 5 * time.Minute

// AuthzService decides whether an actor may touch a site's records. Admin
// roles are site-unscoped; supervisors need an active site assignment.
type AuthzService interface {
	CanAccessSite(ctx context.Context, actor *models.Actor, siteID uuid.UUID) (bool, error)

	// ApplyScope narrows a record search filter to what the actor may see.
	ApplyScope(actor *models.Actor, filter *models.RecordSearchFilter)
}

type authzService struct {
	sitesRepo repositories.SitesRepository
	cache     caching.CacheService
}

func NewAuthzService(sitesRepo repositories.SitesRepository, cache caching.CacheService) AuthzService {
	return &authzService{
		sitesRepo: sitesRepo,
		cache:     cache,
	}
}

func (s *authzService) CanAccessSite(ctx context.Context, actor *models.Actor, siteID uuid.UUID) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.IsAdmin() {
		return true, nil
	}
	if actor.Role != models.RoleSupervisor {
		return false, nil
	}

	if siteIDs, err := s.cache.GetAssignedSites(ctx, actor.ID); err == nil {
		for _, id := range siteIDs {
			if id == siteID {
				return true, nil
			}
		}
		return false, nil
	} else if !errors.Is(err, caching.ErrCacheMiss) {
		log.Printf("cache: assignment lookup failed for supervisor %s: %v", actor.ID, err)
	}

	siteIDs, err := s.sitesRepo.AssignedSiteIDs(ctx, actor.ID)
	if err != nil {
		return false, err
	}
	if err := s.cache.SetAssignedSites(ctx, actor.ID, siteIDs, assignmentCacheTTL); err != nil {
		log.Printf("cache: assignment store failed for supervisor %s: %v", actor.ID, err)
	}

	for _, id := range siteIDs {
		if id == siteID {
			return true, nil
		}
	}
	return false, nil
}

// ApplyScope pins supervisor listings to their assigned sites. The store
// enforces the scope in SQL, so a supervisor cannot widen results through
// the caller-supplied filters.
func (s *authzService) ApplyScope(actor *models.Actor, filter *models.RecordSearchFilter) {
	if actor == nil || actor.IsAdmin() {
		return
	}
	supervisorID := actor.ID
	filter.ScopeSupervisorID = &supervisorID
}
