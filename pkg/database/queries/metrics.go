package queries

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

type MetricsRepository struct {
	db *sqlx.DB
}

func NewMetricsRepository(db *sqlx.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// QueryRecent returns the newest limit samples in ascending time order.
func (r *MetricsRepository) QueryRecent(ctx context.Context, serviceID int64, metricName string, limit int) ([]models.MetricSample, error) {
	if limit <= 0 {
		limit = 50
	}

	samples := []models.MetricSample{}
	query := `
		SELECT id, service_id, metric_name, timestamp, value FROM (
			SELECT id, service_id, metric_name, timestamp, value
			FROM metric_samples
			WHERE service_id = $1 AND metric_name = $2
			ORDER BY timestamp DESC, id DESC
			LIMIT $3
		) recent
		ORDER BY timestamp ASC, id ASC`

	if err := r.db.SelectContext(ctx, &samples, query, serviceID, metricName, limit); err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *MetricsRepository) Insert(ctx context.Context, sample *models.MetricSample) error {
	query := `
		INSERT INTO metric_samples (service_id, metric_name, timestamp, value)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.db.QueryRowxContext(ctx, query,
		sample.ServiceID, sample.MetricName, sample.Timestamp, sample.Value,
	).Scan(&sample.ID)
}

func (r *MetricsRepository) InsertBatch(ctx context.Context, samples []models.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	query := `
		INSERT INTO metric_samples (service_id, metric_name, timestamp, value)
		VALUES (:service_id, :metric_name, :timestamp, :value)`

	if err := namedExecChunks(ctx, r.db, query, samples); err != nil {
		return fmt.Errorf("failed to insert %d samples: %w", len(samples), err)
	}
	return nil
}
