package queries

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

type AnomalyRepository struct {
	db *sqlx.DB
}

func NewAnomalyRepository(db *sqlx.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

func (r *AnomalyRepository) Append(ctx context.Context, event *models.AnomalyEvent) error {
	query := `
		INSERT INTO anomaly_events
			(service_id, metric_name, start_time, end_time, severity, score, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRowxContext(ctx, query,
		event.ServiceID,
		event.MetricName,
		event.StartTime,
		event.EndTime,
		event.Severity,
		event.Score,
		event.Reason,
		event.CreatedAt,
	).Scan(&event.ID)
}

// FindRecent returns the newest limit events, optionally for one service,
// in ascending creation order.
func (r *AnomalyRepository) FindRecent(ctx context.Context, serviceID *int64, limit int) ([]models.AnomalyEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	events := []models.AnomalyEvent{}
	query := `
		SELECT id, service_id, metric_name, start_time, end_time, severity, score, reason, created_at
		FROM anomaly_events
		WHERE ($1::BIGINT IS NULL OR service_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &events, query, serviceID, limit); err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}
