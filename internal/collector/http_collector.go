package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

const maxResponseBytes = 1 << 20

// HTTPCollector reads a service's metric endpoint, which answers with
//
//	{"timestamp": "2026-03-01T12:00:00Z", "metrics": {"responseTime": 120.5}}
//
// A missing timestamp means "now".
type HTTPCollector struct {
	client *http.Client
	now    func() time.Time
}

type HTTPCollectorConfig struct {
	Timeout time.Duration
}

func NewHTTPCollector(cfg HTTPCollectorConfig) *HTTPCollector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPCollector{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

type endpointResponse struct {
	Timestamp string             `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (c *HTTPCollector) Collect(ctx context.Context, service models.Service) ([]models.MetricSample, error) {
	if service.MetricEndpoint == "" {
		return nil, ErrNoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service.MetricEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrCollectionFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrCollectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrCollectionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrCollectionFailed, err)
	}

	var parsed endpointResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	samples := c.convert(service.ID, &parsed)
	logger.WithService(service.ID).Debugf("Collected %d metric values from %s", len(samples), service.MetricEndpoint)
	return samples, nil
}

func (c *HTTPCollector) convert(serviceID int64, resp *endpointResponse) []models.MetricSample {
	timestamp := c.now().UTC()
	if resp.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, resp.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	names := make([]string, 0, len(resp.Metrics))
	for name := range resp.Metrics {
		if err := validation.ValidateMetricName(name); err != nil {
			logger.WithService(serviceID).Debugf("Skipping metric %q: %v", name, err)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	samples := make([]models.MetricSample, len(names))
	for i, name := range names {
		samples[i] = models.MetricSample{
			ServiceID:  serviceID,
			MetricName: name,
			Timestamp:  timestamp,
			Value:      resp.Metrics[name],
		}
	}
	return samples
}

func (c *HTTPCollector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
