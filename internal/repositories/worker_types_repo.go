package repositories

import (
	"context"
	"errors"
	"fmt"

	"worksite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WorkerTypesRepository interface {
	Create(ctx context.Context, workerType *models.WorkerType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WorkerType, error)
	ListBySite(ctx context.Context, siteID uuid.UUID, activeOnly bool) ([]*models.WorkerType, error)
}

type workerTypesRepo struct {
	db Database
}

func NewWorkerTypesRepo(db Database) WorkerTypesRepository {
	return &workerTypesRepo{db: db}
}

func (r *workerTypesRepo) Create(ctx context.Context, workerType *models.WorkerType) error {
	if workerType.ID == uuid.Nil {
		workerType.ID = uuid.New()
	}

	query := `
		INSERT INTO worker_types (id, site_id, name, daily_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, workerType.ID, workerType.SiteID, workerType.Name, workerType.DailyRate, workerType.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create worker type: %w", err)
	}
	return nil
}

func (r *workerTypesRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkerType, error) {
	workerType := &models.WorkerType{}
	query := `
		SELECT id, site_id, name, daily_rate, is_active, created_at, updated_at
		FROM worker_types
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&workerType.ID,
		&workerType.SiteID,
		&workerType.Name,
		&workerType.DailyRate,
		&workerType.IsActive,
		&workerType.CreatedAt,
		&workerType.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return workerType, nil
}

func (r *workerTypesRepo) ListBySite(ctx context.Context, siteID uuid.UUID, activeOnly bool) ([]*models.WorkerType, error) {
	query := `
		SELECT id, site_id, name, daily_rate, is_active, created_at, updated_at
		FROM worker_types
		WHERE site_id = $1
	`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker types: %w", err)
	}
	defer rows.Close()

	var workerTypes []*models.WorkerType
	for rows.Next() {
		workerType := &models.WorkerType{}
		err := rows.Scan(
			&workerType.ID,
			&workerType.SiteID,
			&workerType.Name,
			&workerType.DailyRate,
			&workerType.IsActive,
			&workerType.CreatedAt,
			&workerType.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		workerTypes = append(workerTypes, workerType)
	}

	return workerTypes, rows.Err()
}
