package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/monitor")
	}

	v.SetEnvPrefix("MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "monitor-platform")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")
	v.SetDefault("app.log_file.max_size_mb", 100)
	v.SetDefault("app.log_file.max_backups", 5)
	v.SetDefault("app.log_file.max_age_days", 14)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "monitor")
	v.SetDefault("database.user", "monitor")
	v.SetDefault("database.password", "monitor")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migration_timeout", "60s")

	v.SetDefault("metric_store.type", "postgres")
	v.SetDefault("metric_store.influxdb.url", "http://localhost:8086")
	v.SetDefault("metric_store.influxdb.org", "monitor")
	v.SetDefault("metric_store.influxdb.bucket", "metrics")
	v.SetDefault("metric_store.influxdb.measurement", "service_metrics")
	v.SetDefault("metric_store.influxdb.lookback", "168h")

	v.SetDefault("detector.interval", "60s")
	v.SetDefault("detector.sweep_timeout", "50s")
	v.SetDefault("detector.metric_name", "responseTime")
	v.SetDefault("detector.sample_limit", 50)
	v.SetDefault("detector.min_sample_count", 5)
	v.SetDefault("detector.zscore_threshold", 3.0)
	v.SetDefault("detector.ratio_threshold", 2.0)
	v.SetDefault("detector.high_severity_score", 4.0)
	v.SetDefault("detector.concurrency", 4)
	v.SetDefault("detector.retry_attempts", 3)
	v.SetDefault("detector.retry_delay", "500ms")
	v.SetDefault("detector.circuit_breaker.max_failures", 5)
	v.SetDefault("detector.circuit_breaker.timeout", "30s")

	v.SetDefault("collector.enabled", false)
	v.SetDefault("collector.interval", "30s")
	v.SetDefault("collector.timeout", "5s")
	v.SetDefault("collector.concurrency", 4)
	v.SetDefault("collector.max_failures", 3)
	v.SetDefault("collector.open_timeout", "2m")

	v.SetDefault("hotspot.top_n", 10)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.key_prefix", "monitor")

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.rate_burst", 200)
	v.SetDefault("api.default_limit", 100)
	v.SetDefault("api.max_limit", 1000)
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Content-Type", "X-Trace-ID"})

	v.SetDefault("websocket.max_connections", 1000)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.broadcast_buffer", 256)
	v.SetDefault("websocket.client_buffer", 256)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.port", 0)

	v.SetDefault("events.buffer_size", 100)
}
