package collector

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/internal/resilience"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

const (
	DefaultScrapeInterval    = 30 * time.Second
	DefaultScrapeConcurrency = 4
)

type ServiceLister interface {
	GetAll(ctx context.Context) ([]models.Service, error)
}

type SampleWriter interface {
	InsertBatch(ctx context.Context, samples []models.MetricSample) error
}

type ScraperConfig struct {
	Collector   Collector
	Services    ServiceLister
	Writer      SampleWriter
	Interval    time.Duration
	Concurrency int
	MaxFailures int
	OpenTimeout time.Duration
}

// ScrapeReport summarizes one pass over all services with an endpoint.
type ScrapeReport struct {
	Services int
	Failed   int
	Skipped  int
	Samples  int
}

// Scraper periodically pulls metric endpoints into the metric store. Each
// endpoint has its own circuit breaker so one dead service does not slow
// down the rest.
type Scraper struct {
	config ScraperConfig

	mu       sync.Mutex
	breakers map[int64]*resilience.CircuitBreaker

	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewScraper(cfg ScraperConfig) *Scraper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultScrapeInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultScrapeConcurrency
	}
	return &Scraper{
		config:   cfg,
		breakers: make(map[int64]*resilience.CircuitBreaker),
	}
}

func (s *Scraper) breaker(serviceID int64) *resilience.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.breakers[serviceID]; ok {
		return cb
	}
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        models.ServiceSubject(serviceID),
		MaxFailures: s.config.MaxFailures,
		OpenTimeout: s.config.OpenTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			logger.WithField("breaker", name).Warnf("Scrape circuit %s -> %s", from, to)
		},
	})
	s.breakers[serviceID] = cb
	return cb
}

// CircuitState reports the breaker state of one service's endpoint.
func (s *Scraper) CircuitState(serviceID int64) resilience.State {
	return s.breaker(serviceID).State()
}

// ScrapeOnce collects every service that has a metric endpoint. Per-service
// failures are logged and counted, not returned.
func (s *Scraper) ScrapeOnce(ctx context.Context) (ScrapeReport, error) {
	services, err := s.config.Services.GetAll(ctx)
	if err != nil {
		return ScrapeReport{}, err
	}

	var (
		mu     sync.Mutex
		report ScrapeReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, svc := range services {
		if svc.MetricEndpoint == "" {
			report.Skipped++
			continue
		}
		report.Services++

		g.Go(func() error {
			n, err := s.scrape(gctx, svc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				logger.WithService(svc.ID).Warnf("Metric scrape failed: %v", err)
				return nil
			}
			report.Samples += n
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Scraper) scrape(ctx context.Context, svc models.Service) (int, error) {
	var samples []models.MetricSample
	err := s.breaker(svc.ID).Do(ctx, func(ctx context.Context) error {
		var err error
		samples, err = s.config.Collector.Collect(ctx, svc)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, nil
	}
	if err := s.config.Writer.InsertBatch(ctx, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

func (s *Scraper) Start() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.run(ctx)

	logger.WithField("interval", s.config.Interval.String()).Info("Metric scraper started")
}

func (s *Scraper) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.runMu.Unlock()

	s.wg.Wait()
	logger.Info("Metric scraper stopped")
}

func (s *Scraper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scraper) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.config.Interval)
	defer cancel()

	report, err := s.ScrapeOnce(tickCtx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Errorf("Metric scrape pass failed: %v", err)
		}
		return
	}
	logger.WithFields(map[string]interface{}{
		"services": report.Services,
		"failed":   report.Failed,
		"samples":  report.Samples,
	}).Debug("Metric scrape pass finished")
}

func (s *Scraper) Close() error {
	s.Stop()
	return s.config.Collector.Close()
}
