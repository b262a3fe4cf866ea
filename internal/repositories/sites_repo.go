package repositories

import (
	"context"
	"errors"
	"fmt"

	"worksite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SitesRepository interface {
	Create(ctx context.Context, site *models.Site) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error)
	List(ctx context.Context, limit, offset int) ([]*models.Site, error)

	// IsSupervisorAssigned reports whether the supervisor holds an active
	// assignment to the site.
	IsSupervisorAssigned(ctx context.Context, supervisorID, siteID uuid.UUID) (bool, error)

	// AssignedSiteIDs returns the sites a supervisor is actively assigned to.
	AssignedSiteIDs(ctx context.Context, supervisorID uuid.UUID) ([]uuid.UUID, error)
}

type sitesRepo struct {
	db Database
}

func NewSitesRepo(db Database) SitesRepository {
	return &sitesRepo{db: db}
}

func (r *sitesRepo) Create(ctx context.Context, site *models.Site) error {
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	if site.Status == "" {
		site.Status = models.SiteStatusActive
	}

	query := `
		INSERT INTO sites (id, project_id, name, location, client_company, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, site.ID, site.ProjectID, site.Name, site.Location, site.ClientCompany, site.Status)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

func (r *sitesRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	site := &models.Site{}
	query := `
		SELECT id, project_id, name, location, client_company, status, created_at, updated_at
		FROM sites
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&site.ID,
		&site.ProjectID,
		&site.Name,
		&site.Location,
		&site.ClientCompany,
		&site.Status,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return site, nil
}

func (r *sitesRepo) List(ctx context.Context, limit, offset int) ([]*models.Site, error) {
	query := `
		SELECT id, project_id, name, location, client_company, status, created_at, updated_at
		FROM sites
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*models.Site
	for rows.Next() {
		site := &models.Site{}
		err := rows.Scan(
			&site.ID,
			&site.ProjectID,
			&site.Name,
			&site.Location,
			&site.ClientCompany,
			&site.Status,
			&site.CreatedAt,
			&site.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

func (r *sitesRepo) IsSupervisorAssigned(ctx context.Context, supervisorID, siteID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM site_supervisors
			WHERE supervisor_id = $1 AND site_id = $2 AND is_active = true
		)
	`
	if err := r.db.QueryRow(ctx, query, supervisorID, siteID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check site assignment: %w", err)
	}
	return exists, nil
}

func (r *sitesRepo) AssignedSiteIDs(ctx context.Context, supervisorID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT site_id FROM site_supervisors
		WHERE supervisor_id = $1 AND is_active = true
	`

	rows, err := r.db.Query(ctx, query, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned sites: %w", err)
	}
	defer rows.Close()

	var siteIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		siteIDs = append(siteIDs, id)
	}

	return siteIDs, rows.Err()
}
