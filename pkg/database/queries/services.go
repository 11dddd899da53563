package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceExists   = errors.New("service already exists")
)

type ServiceRepository struct {
	db *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) GetAll(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	query := `
		SELECT id, name, env, description, metric_endpoint, created_at
		FROM services
		ORDER BY id`

	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	var service models.Service
	query := `
		SELECT id, name, env, description, metric_endpoint, created_at
		FROM services
		WHERE id = $1`

	err := r.db.GetContext(ctx, &service, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	query := `
		INSERT INTO services (name, env, description, metric_endpoint)
		VALUES (:name, :env, :description, :metric_endpoint)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, service)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrServiceExists
	}
	return rows.Scan(&service.ID, &service.CreatedAt)
}

// ListServiceIDs feeds the anomaly sweep.
func (r *ServiceRepository) ListServiceIDs(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM services ORDER BY id`); err != nil {
		return nil, err
	}
	return ids, nil
}
