package collector

import (
	"context"
	"errors"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

var (
	ErrCollectionFailed = errors.New("metric collection failed")
	ErrTimeout          = errors.New("collection timeout")
	ErrNoEndpoint       = errors.New("service has no metric endpoint")
	ErrInvalidResponse  = errors.New("invalid response from metric endpoint")
)

// Collector pulls the current metric values of one service.
type Collector interface {
	Collect(ctx context.Context, service models.Service) ([]models.MetricSample, error)
	Close() error
}
