package monitor

import (
	"context"
	"fmt"

	"github.com/OldStager01/monitor-platform/internal/cache"
	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/internal/hotspot"
	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

type HotspotServiceConfig struct {
	Aggregator *hotspot.Aggregator
	Snapshots  ThreadSnapshotStore
	Cache      cache.AnalysisCache
	Publisher  *events.Publisher
}

// HotspotService builds health reports from stored thread snapshots and keeps
// the latest one per process in the cache.
type HotspotService struct {
	config HotspotServiceConfig
}

func NewHotspotService(cfg HotspotServiceConfig) *HotspotService {
	if cfg.Aggregator == nil {
		cfg.Aggregator = hotspot.NewAggregator(hotspot.AggregatorConfig{})
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemoryCache(cache.DefaultSize, cache.DefaultTTL)
	}
	return &HotspotService{config: cfg}
}

func (s *HotspotService) Analyze(ctx context.Context, processID int64) (*models.ThreadHotspotAnalysis, error) {
	log := logger.WithProcess(processID)

	threads, err := s.config.Snapshots.LatestThreads(ctx, processID)
	if err != nil {
		metrics.ObserveAnalysis(processID, 0, err)
		return nil, fmt.Errorf("failed to load threads of process %d: %w", processID, err)
	}

	analysis, err := s.config.Aggregator.Analyze(processID, threads, func(threadID int64) ([]models.StackFrame, error) {
		return s.config.Snapshots.FramesOf(ctx, processID, threadID)
	})
	if err != nil {
		metrics.ObserveAnalysis(processID, 0, err)
		return nil, fmt.Errorf("process %d: %w", processID, err)
	}

	if err := s.config.Cache.Set(ctx, analysis); err != nil {
		log.Warnf("Failed to cache analysis: %v", err)
	}

	metrics.ObserveAnalysis(processID, analysis.HealthScore, nil)
	s.config.Publisher.WithTraceID(logger.TraceIDFromContext(ctx)).HotspotAnalyzed(analysis)

	log.Infof("Hotspot analysis complete: %d threads, health score %d", analysis.TotalThreads, analysis.HealthScore)
	return analysis, nil
}

// Latest returns the most recent cached analysis of a process, if any.
func (s *HotspotService) Latest(ctx context.Context, processID int64) (*models.ThreadHotspotAnalysis, bool, error) {
	analysis, ok, err := s.config.Cache.Get(ctx, processID)
	if err != nil {
		return nil, false, err
	}
	metrics.ObserveCacheLookup(ok)
	return analysis, ok, nil
}
