package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
)

const DefaultSweepInterval = 60 * time.Second

type sweepRunner interface {
	Sweep(ctx context.Context) (SweepReport, error)
}

type SweeperConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	Runner    sweepRunner
	Publisher *events.Publisher
}

// Sweeper runs a full anomaly sweep on start and then on every tick.
type Sweeper struct {
	config  SweeperConfig
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewSweeper(cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSweepInterval
	}
	if cfg.Timeout <= 0 || cfg.Timeout > cfg.Interval {
		cfg.Timeout = cfg.Interval
	}

	return &Sweeper{config: cfg}
}

func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.run(ctx)

	logger.WithField("interval", s.config.Interval.String()).Info("Anomaly sweeper started")
	return nil
}

// Stop cancels the loop and waits for it to exit. The lock is held until
// then so a concurrent Start cannot overlap the old loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.cancel()
	s.cancel = nil
	s.wg.Wait()

	logger.Info("Anomaly sweeper stopped")
}

func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one sweep bounded by the configured timeout.
func (s *Sweeper) RunOnce(parent context.Context) (SweepReport, error) {
	ctx, cancel := context.WithTimeout(parent, s.config.Timeout)
	defer cancel()

	started := time.Now()
	report, err := s.config.Runner.Sweep(ctx)
	elapsed := time.Since(started)
	metrics.ObserveSweep(elapsed)

	if err != nil {
		if parent.Err() == nil {
			logger.Errorf("Anomaly sweep failed: %v", err)
			s.config.Publisher.Error("", "Anomaly sweep failed", err)
		}
		return report, err
	}

	s.config.Publisher.SweepCompleted(events.SweepSummary{
		Services:   report.Services,
		Failed:     report.Failed,
		Anomalies:  len(report.Events),
		DurationMs: elapsed.Milliseconds(),
	})
	logger.WithFields(map[string]interface{}{
		"services":  report.Services,
		"failed":    report.Failed,
		"anomalies": len(report.Events),
	}).Info("Anomaly sweep complete")
	return report, nil
}
