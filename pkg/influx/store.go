package influx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

const (
	DefaultMeasurement = "service_metrics"
	DefaultLookback    = 7 * 24 * time.Hour
	serviceTag         = "service_id"
)

type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	Lookback    time.Duration
}

// MetricStore keeps service metrics in InfluxDB: one measurement, the
// service ID as a tag and the metric name as the field.
type MetricStore struct {
	client influxdb2.Client
	query  api.QueryAPI
	write  api.WriteAPIBlocking
	config Config
}

func NewMetricStore(cfg Config) *MetricStore {
	if cfg.Measurement == "" {
		cfg.Measurement = DefaultMeasurement
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &MetricStore{
		client: client,
		query:  client.QueryAPI(cfg.Org),
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		config: cfg,
	}
}

// QueryRecent returns the newest limit points, oldest first.
func (s *MetricStore) QueryRecent(ctx context.Context, serviceID int64, metricName string, limit int) ([]models.MetricSample, error) {
	if err := validation.ValidateMetricName(metricName); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	result, err := s.query.Query(ctx, recentQuery(s.config, serviceID, metricName, limit))
	if err != nil {
		return nil, fmt.Errorf("influx query failed: %w", err)
	}
	defer result.Close()

	samples := []models.MetricSample{}
	for i := 0; result.Next(); i++ {
		record := result.Record()
		value, ok := toFloat(record.Value())
		if !ok {
			return nil, validation.InvalidAt("samples", i, "value is not numeric")
		}
		samples = append(samples, models.MetricSample{
			ServiceID:  serviceID,
			MetricName: metricName,
			Timestamp:  record.Time(),
			Value:      value,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("influx result error: %w", err)
	}
	return samples, nil
}

func (s *MetricStore) InsertBatch(ctx context.Context, samples []models.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(samples))
	for _, sample := range samples {
		points = append(points, influxdb2.NewPoint(
			s.config.Measurement,
			map[string]string{serviceTag: strconv.FormatInt(sample.ServiceID, 10)},
			map[string]interface{}{sample.MetricName: sample.Value},
			sample.Timestamp,
		))
	}

	if err := s.write.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx write failed: %w", err)
	}
	return nil
}

func (s *MetricStore) HealthCheck(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influxdb error: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("influxdb unhealthy: %s", health.Status)
	}
	return nil
}

func (s *MetricStore) Close() {
	s.client.Close()
}

func recentQuery(cfg Config, serviceID int64, metricName string, limit int) string {
	return fmt.Sprintf(`
		from(bucket: %q)
		|> range(start: -%ds)
		|> filter(fn: (r) => r["_measurement"] == %q)
		|> filter(fn: (r) => r["%s"] == "%d")
		|> filter(fn: (r) => r["_field"] == %q)
		|> sort(columns: ["_time"], desc: true)
		|> limit(n: %d)
		|> sort(columns: ["_time"])
	`, cfg.Bucket, int64(cfg.Lookback.Seconds()), cfg.Measurement, serviceTag, serviceID, metricName, limit)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
