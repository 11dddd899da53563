package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, errors.New("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, errors.New("app.log_level must be one of: debug, info, warn, error"))
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	switch c.MetricStore.Type {
	case "postgres":
	case "influxdb":
		if c.MetricStore.InfluxDB.URL == "" {
			errs = append(errs, errors.New("metric_store.influxdb.url is required"))
		}
		if c.MetricStore.InfluxDB.Bucket == "" {
			errs = append(errs, errors.New("metric_store.influxdb.bucket is required"))
		}
	default:
		errs = append(errs, errors.New("metric_store.type must be one of: postgres, influxdb"))
	}

	d := c.Detector
	if d.Interval <= 0 {
		errs = append(errs, errors.New("detector.interval must be positive"))
	}
	if d.SweepTimeout <= 0 || d.SweepTimeout > d.Interval {
		errs = append(errs, errors.New("detector.sweep_timeout must be positive and not exceed detector.interval"))
	}
	if d.MetricName == "" {
		errs = append(errs, errors.New("detector.metric_name is required"))
	}
	if d.MinSampleCount < 2 {
		errs = append(errs, errors.New("detector.min_sample_count must be at least 2"))
	}
	if d.SampleLimit < d.MinSampleCount {
		errs = append(errs, errors.New("detector.sample_limit must be >= min_sample_count"))
	}
	if d.ZScoreThreshold <= 0 || d.RatioThreshold <= 0 {
		errs = append(errs, errors.New("detector thresholds must be positive"))
	}
	if d.HighSeverityScore < d.ZScoreThreshold {
		errs = append(errs, errors.New("detector.high_severity_score must be >= zscore_threshold"))
	}
	if d.Concurrency <= 0 {
		errs = append(errs, errors.New("detector.concurrency must be positive"))
	}

	if c.Collector.Enabled {
		if c.Collector.Interval <= 0 {
			errs = append(errs, errors.New("collector.interval must be positive"))
		}
		if c.Collector.Timeout <= 0 || c.Collector.Timeout > c.Collector.Interval {
			errs = append(errs, errors.New("collector.timeout must be positive and not exceed collector.interval"))
		}
	}

	if c.Hotspot.TopN <= 0 {
		errs = append(errs, errors.New("hotspot.top_n must be positive"))
	}

	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required"))
		}
	default:
		errs = append(errs, errors.New("cache.type must be one of: memory, redis"))
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.DefaultLimit <= 0 || c.API.DefaultLimit > c.API.MaxLimit {
		errs = append(errs, errors.New("api.default_limit must be positive and not exceed api.max_limit"))
	}

	if c.Prometheus.Port < 0 || c.Prometheus.Port > 65535 {
		errs = append(errs, errors.New("prometheus.port must be between 0 and 65535"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}

	return nil
}
