package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadDefaults(t)

	assert.Equal(t, "monitor-platform", cfg.App.Name)
	assert.Equal(t, 60*time.Second, cfg.Detector.Interval)
	assert.Equal(t, "responseTime", cfg.Detector.MetricName)
	assert.Equal(t, 50, cfg.Detector.SampleLimit)
	assert.Equal(t, 5, cfg.Detector.MinSampleCount)
	assert.Equal(t, 3.0, cfg.Detector.ZScoreThreshold)
	assert.Equal(t, 2.0, cfg.Detector.RatioThreshold)
	assert.Equal(t, 4.0, cfg.Detector.HighSeverityScore)
	assert.Equal(t, 10, cfg.Hotspot.TopN)
	assert.Equal(t, "postgres", cfg.MetricStore.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.yaml")
	content := `
app:
  mode: production
detector:
  interval: 2m
  sweep_timeout: 90s
hotspot:
  top_n: 5
cache:
  type: redis
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("MONITOR_DETECTOR_METRIC_NAME", "latencyP99")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Mode)
	assert.Equal(t, 2*time.Minute, cfg.Detector.Interval)
	assert.Equal(t, 5, cfg.Hotspot.TopN)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "latencyP99", cfg.Detector.MetricName)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr string
	}{
		{
			name:      "bad mode",
			mutate:    func(c *Config) { c.App.Mode = "staging" },
			expectErr: "app.mode",
		},
		{
			name:      "unknown metric store",
			mutate:    func(c *Config) { c.MetricStore.Type = "cassandra" },
			expectErr: "metric_store.type",
		},
		{
			name:      "influx without bucket",
			mutate:    func(c *Config) { c.MetricStore.Type = "influxdb"; c.MetricStore.InfluxDB.Bucket = "" },
			expectErr: "metric_store.influxdb.bucket",
		},
		{
			name:      "window shorter than minimum",
			mutate:    func(c *Config) { c.Detector.SampleLimit = 3 },
			expectErr: "detector.sample_limit",
		},
		{
			name:      "sweep timeout exceeds interval",
			mutate:    func(c *Config) { c.Detector.SweepTimeout = 2 * c.Detector.Interval },
			expectErr: "detector.sweep_timeout",
		},
		{
			name: "collector timeout exceeds interval",
			mutate: func(c *Config) {
				c.Collector.Enabled = true
				c.Collector.Timeout = time.Minute
			},
			expectErr: "collector.timeout",
		},
		{
			name:      "zero top n",
			mutate:    func(c *Config) { c.Hotspot.TopN = 0 },
			expectErr: "hotspot.top_n",
		},
		{
			name:      "unknown cache",
			mutate:    func(c *Config) { c.Cache.Type = "memcached" },
			expectErr: "cache.type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.App.Name = ""
	cfg.API.Port = 0

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name")
	assert.Contains(t, err.Error(), "api.port")
}

func TestDatabaseConfig_ToDBConfig(t *testing.T) {
	cfg := loadDefaults(t)

	db := cfg.Database.ToDBConfig()

	assert.Equal(t, cfg.Database.Host, db.Host)
	assert.Equal(t, cfg.Database.DSN(), db.DSN())
}
