package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OldStager01/monitor-platform/api"
	"github.com/OldStager01/monitor-platform/api/handlers"
	"github.com/OldStager01/monitor-platform/internal/anomaly"
	"github.com/OldStager01/monitor-platform/internal/cache"
	"github.com/OldStager01/monitor-platform/internal/collector"
	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/internal/hotspot"
	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/internal/monitor"
	"github.com/OldStager01/monitor-platform/pkg/config"
	"github.com/OldStager01/monitor-platform/pkg/database"
	"github.com/OldStager01/monitor-platform/pkg/database/queries"
	"github.com/OldStager01/monitor-platform/pkg/influx"
)

// metricBackend is what both metric stores provide.
type metricBackend interface {
	handlers.MetricStore
	monitor.MetricStore
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	detectOnce := flag.Bool("detect-once", false, "run one anomaly sweep and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.SetupFile(logger.FileOptions{
		Path:       cfg.App.LogFile.Path,
		MaxSizeMB:  cfg.App.LogFile.MaxSizeMB,
		MaxBackups: cfg.App.LogFile.MaxBackups,
		MaxAgeDays: cfg.App.LogFile.MaxAgeDays,
		Compress:   cfg.App.LogFile.Compress,
	})
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	db, err := database.New(cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connection established")

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.MigrationTimeout)
		defer cancel()

		logger.Info("Running database migrations")
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	if err := checkSchema(db); err != nil {
		return err
	}

	serviceRepo := queries.NewServiceRepository(db.DB)
	anomalyRepo := queries.NewAnomalyRepository(db.DB)
	threadRepo := queries.NewThreadRepository(db.DB)

	healthChecks := map[string]handlers.Checker{"database": db}

	var backend metricBackend
	switch cfg.MetricStore.Type {
	case "influxdb":
		ic := cfg.MetricStore.InfluxDB
		store := influx.NewMetricStore(influx.Config{
			URL:         ic.URL,
			Token:       ic.Token,
			Org:         ic.Org,
			Bucket:      ic.Bucket,
			Measurement: ic.Measurement,
			Lookback:    ic.Lookback,
		})
		defer store.Close()
		healthChecks["influxdb"] = store
		backend = store
	default:
		backend = queries.NewMetricsRepository(db.DB)
	}

	resilientMetrics := monitor.NewResilientMetricStore(monitor.ResilientMetricStoreConfig{
		Store:         backend,
		Name:          "metric_store",
		MaxFailures:   cfg.Detector.CircuitBreaker.MaxFailures,
		OpenTimeout:   cfg.Detector.CircuitBreaker.Timeout,
		RetryAttempts: cfg.Detector.RetryAttempts,
		RetryDelay:    cfg.Detector.RetryDelay,
	})

	analysisCache, err := newAnalysisCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer analysisCache.Close()
	if rc, ok := analysisCache.(*cache.RedisCache); ok {
		healthChecks["redis"] = handlers.CheckerFunc(rc.Ping)
	}

	bus := events.NewEventBus(cfg.Events.BufferSize)
	publisher := events.NewPublisher(bus)
	eventLogger := events.NewEventLogger(bus.SubscribeAll())
	eventLogger.Start()

	anomalyService := monitor.NewAnomalyService(monitor.AnomalyServiceConfig{
		Detector: anomaly.New(anomaly.Config{
			MinSampleCount:    cfg.Detector.MinSampleCount,
			ZScoreThreshold:   cfg.Detector.ZScoreThreshold,
			RatioThreshold:    cfg.Detector.RatioThreshold,
			HighSeverityScore: cfg.Detector.HighSeverityScore,
		}),
		Metrics:     resilientMetrics,
		Anomalies:   anomalyRepo,
		Catalog:     serviceRepo,
		Publisher:   publisher,
		MetricName:  cfg.Detector.MetricName,
		SampleLimit: cfg.Detector.SampleLimit,
		Concurrency: cfg.Detector.Concurrency,
	})

	hotspotService := monitor.NewHotspotService(monitor.HotspotServiceConfig{
		Aggregator: hotspot.NewAggregator(hotspot.AggregatorConfig{TopN: cfg.Hotspot.TopN}),
		Snapshots:  threadRepo,
		Cache:      analysisCache,
		Publisher:  publisher,
	})

	sweeper := monitor.NewSweeper(monitor.SweeperConfig{
		Interval:  cfg.Detector.Interval,
		Timeout:   cfg.Detector.SweepTimeout,
		Runner:    anomalyService,
		Publisher: publisher,
	})

	if *detectOnce {
		defer shutdownEvents(bus, eventLogger)
		report, err := sweeper.RunOnce(context.Background())
		if err != nil {
			return fmt.Errorf("anomaly sweep failed: %w", err)
		}
		logger.Infof("Sweep finished: %d services, %d failed, %d anomalies",
			report.Services, report.Failed, len(report.Events))
		return nil
	}

	var metricsServer *http.Server
	if cfg.Prometheus.Enabled && cfg.Prometheus.Port > 0 && cfg.Prometheus.Port != cfg.API.Port {
		metricsServer = metrics.StartServer(cfg.Prometheus.Port)
	}

	server := api.NewServer(cfg.API, cfg.WebSocket, cfg.App.Mode, api.Dependencies{
		Services:      serviceRepo,
		Metrics:       backend,
		Anomalies:     anomalyRepo,
		Detector:      anomalyService,
		Snapshots:     threadRepo,
		Hotspots:      hotspotService,
		HealthChecks:  healthChecks,
		DefaultMetric: anomalyService.MetricName(),
		Events:        bus.SubscribeAll(),
	})

	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}

	var scraper *collector.Scraper
	if cfg.Collector.Enabled {
		scraper = collector.NewScraper(collector.ScraperConfig{
			Collector:   collector.NewHTTPCollector(collector.HTTPCollectorConfig{Timeout: cfg.Collector.Timeout}),
			Services:    serviceRepo,
			Writer:      backend,
			Interval:    cfg.Collector.Interval,
			Concurrency: cfg.Collector.Concurrency,
			MaxFailures: cfg.Collector.MaxFailures,
			OpenTimeout: cfg.Collector.OpenTimeout,
		})
		scraper.Start()
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var runErr error
	select {
	case err := <-errChan:
		runErr = fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	timeout := cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if scraper != nil {
		if err := scraper.Close(); err != nil {
			logger.Warnf("Scraper close: %v", err)
		}
	}
	sweeper.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown error: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Metrics server shutdown: %v", err)
		}
	}

	shutdownEvents(bus, eventLogger)

	if runErr == nil {
		logger.Info("Server stopped gracefully")
	}
	return runErr
}

func newAnalysisCache(cfg config.CacheConfig) (cache.AnalysisCache, error) {
	if cfg.Type != "redis" {
		return cache.NewMemoryCache(cfg.Size, cfg.TTL), nil
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       cfg.TTL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Infof("Analysis cache backed by redis at %s", cfg.Redis.Addr)
	return rc, nil
}

// shutdownEvents closes the bus so the event logger drains and exits.
func shutdownEvents(bus *events.EventBus, eventLogger *events.EventLogger) {
	bus.Close()
	eventLogger.Stop()
}

func checkSchema(db *database.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if version, err := db.GetVersion(ctx); err == nil {
		logger.Debugf("Database server: %s", version)
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema is missing tables %v, run with -migrate first", missing)
	}
	return nil
}
