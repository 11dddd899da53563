package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/internal/resilience"
	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

// ResilientMetricStore retries failed reads and stops calling the backend
// while its circuit breaker is open.
type ResilientMetricStore struct {
	store          MetricStore
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientMetricStoreConfig struct {
	Store         MetricStore
	Name          string
	MaxFailures   int
	OpenTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func NewResilientMetricStore(cfg ResilientMetricStoreConfig) *ResilientMetricStore {
	if cfg.Name == "" {
		cfg.Name = "metric_store"
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        cfg.Name,
		MaxFailures: cfg.MaxFailures,
		OpenTimeout: cfg.OpenTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			logger.WithField("breaker", name).Warnf("Circuit breaker %s -> %s", from, to)
		},
	})
	metrics.SetCircuitBreakerState(cfg.Name, int(resilience.StateClosed))

	return &ResilientMetricStore{
		store:          cfg.Store,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (r *ResilientMetricStore) QueryRecent(ctx context.Context, serviceID int64, metricName string, limit int) ([]models.MetricSample, error) {
	var samples []models.MetricSample

	err := r.circuitBreaker.Do(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, r.retryAttempts, r.retryDelay, isPermanent, func(attempt int) error {
			var err error
			samples, err = r.store.QueryRecent(ctx, serviceID, metricName, limit)
			if err != nil && attempt < r.retryAttempts && !isPermanent(err) {
				logger.WithService(serviceID).Warnf("Metric read attempt %d/%d failed: %v", attempt, r.retryAttempts, err)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *ResilientMetricStore) CircuitState() resilience.State {
	return r.circuitBreaker.State()
}

func (r *ResilientMetricStore) ResetCircuit() {
	r.circuitBreaker.Reset()
}

func isPermanent(err error) bool {
	return errors.Is(err, validation.ErrInvalidInput) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
