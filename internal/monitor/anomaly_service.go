package monitor

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/OldStager01/monitor-platform/internal/anomaly"
	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

const (
	DefaultMetricName  = "responseTime"
	DefaultSampleLimit = 50
	DefaultConcurrency = 4
)

type AnomalyServiceConfig struct {
	Detector    *anomaly.Detector
	Metrics     MetricStore
	Anomalies   AnomalyStore
	Catalog     ServiceCatalog
	Publisher   *events.Publisher
	MetricName  string
	SampleLimit int
	Concurrency int
}

// AnomalyService loads metric windows, runs the detector and records what it
// finds.
type AnomalyService struct {
	config AnomalyServiceConfig
}

// SweepReport describes one pass over every known service.
type SweepReport struct {
	Services int
	Failed   int
	Events   []models.AnomalyEvent
}

func NewAnomalyService(cfg AnomalyServiceConfig) *AnomalyService {
	if cfg.Detector == nil {
		cfg.Detector = anomaly.New(anomaly.Config{})
	}
	if cfg.MetricName == "" {
		cfg.MetricName = DefaultMetricName
	}
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = DefaultSampleLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &AnomalyService{config: cfg}
}

func (s *AnomalyService) MetricName() string {
	return s.config.MetricName
}

// DetectForService checks the configured metric of one service. The result is
// empty, never nil, when nothing is anomalous.
func (s *AnomalyService) DetectForService(ctx context.Context, serviceID int64) ([]models.AnomalyEvent, error) {
	log := logger.WithService(serviceID)
	found := []models.AnomalyEvent{}

	samples, err := s.config.Metrics.QueryRecent(ctx, serviceID, s.config.MetricName, s.config.SampleLimit)
	if err != nil {
		metrics.ObserveDetection("error")
		return nil, fmt.Errorf("failed to load samples for service %d: %w", serviceID, err)
	}

	event, err := s.config.Detector.Detect(serviceID, s.config.MetricName, samples)
	if err != nil {
		metrics.ObserveDetection("error")
		return nil, fmt.Errorf("service %d: %w", serviceID, err)
	}

	if event == nil {
		if len(samples) < s.config.Detector.MinSampleCount() {
			metrics.ObserveDetection("insufficient")
			log.Debugf("Only %d samples of %s, skipping detection", len(samples), s.config.MetricName)
		} else {
			metrics.ObserveDetection("normal")
		}
		return found, nil
	}

	if err := s.config.Anomalies.Append(ctx, event); err != nil {
		metrics.ObserveDetection("error")
		return nil, fmt.Errorf("failed to store anomaly for service %d: %w", serviceID, err)
	}

	metrics.ObserveDetection("anomaly")
	metrics.IncAnomaly(string(event.Severity))
	s.config.Publisher.WithTraceID(logger.TraceIDFromContext(ctx)).AnomalyDetected(event)

	log.Warnf("Anomaly detected on %s: severity=%s score=%.2f", event.MetricName, event.Severity, event.Score)
	return append(found, *event), nil
}

// DetectAll runs DetectForService for every catalogued service.
func (s *AnomalyService) DetectAll(ctx context.Context) ([]models.AnomalyEvent, error) {
	report, err := s.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	return report.Events, nil
}

// Sweep checks all services with bounded parallelism. A failing service is
// logged and counted; it does not stop the others. Events are ordered by
// service ID.
func (s *AnomalyService) Sweep(ctx context.Context) (SweepReport, error) {
	ids, err := s.config.Catalog.ListServiceIDs(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed to list services: %w", err)
	}

	ids = append([]int64(nil), ids...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	perService := make([][]models.AnomalyEvent, len(ids))
	failed := make([]bool, len(ids))

	var g errgroup.Group
	g.SetLimit(s.config.Concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				failed[i] = true
				return nil
			}
			found, err := s.DetectForService(ctx, id)
			if err != nil {
				failed[i] = true
				logger.WithService(id).Errorf("Anomaly detection failed: %v", err)
				s.config.Publisher.Error(models.ServiceSubject(id), "Anomaly detection failed", err)
				return nil
			}
			perService[i] = found
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Services: len(ids), Events: []models.AnomalyEvent{}}
	for i := range ids {
		if failed[i] {
			report.Failed++
			continue
		}
		report.Events = append(report.Events, perService[i]...)
	}
	return report, nil
}
