package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

type anomalyFixture struct {
	metrics   *fakeMetricStore
	anomalies *fakeAnomalyStore
	catalog   *fakeCatalog
	bus       *events.EventBus
	service   *AnomalyService
}

func newAnomalyFixture(t *testing.T, ids ...int64) *anomalyFixture {
	t.Helper()
	f := &anomalyFixture{
		metrics:   newFakeMetricStore(),
		anomalies: &fakeAnomalyStore{},
		catalog:   &fakeCatalog{ids: ids},
		bus:       events.NewEventBus(32),
	}
	t.Cleanup(f.bus.Close)

	f.service = NewAnomalyService(AnomalyServiceConfig{
		Metrics:     f.metrics,
		Anomalies:   f.anomalies,
		Catalog:     f.catalog,
		Publisher:   events.NewPublisher(f.bus),
		Concurrency: 2,
	})
	return f
}

func TestAnomalyService_DetectForService(t *testing.T) {
	tests := []struct {
		name          string
		values        []float64
		expectedCount int
	}{
		{name: "no samples", values: nil, expectedCount: 0},
		{name: "too few samples", values: []float64{100, 100, 100, 500}, expectedCount: 0},
		{name: "stable window", values: []float64{100, 101, 99, 100, 100}, expectedCount: 0},
		{name: "spike", values: []float64{100, 100, 100, 100, 500}, expectedCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnomalyFixture(t, 1)
			f.metrics.put(1, DefaultMetricName, tt.values...)

			found, err := f.service.DetectForService(context.Background(), 1)

			require.NoError(t, err)
			assert.NotNil(t, found)
			assert.Len(t, found, tt.expectedCount)
			assert.Equal(t, tt.expectedCount, f.anomalies.count())
		})
	}
}

func TestAnomalyService_DetectForService_PersistsAndPublishes(t *testing.T) {
	f := newAnomalyFixture(t, 3)
	sub := f.bus.Subscribe(models.EventTypeAnomalyDetected)
	f.metrics.put(3, DefaultMetricName, 100, 100, 100, 100, 500)

	found, err := f.service.DetectForService(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].ID)
	assert.Equal(t, models.AnomalySeverityHigh, found[0].Severity)

	select {
	case e := <-sub:
		assert.Equal(t, "service:3", e.Subject)
	case <-time.After(time.Second):
		t.Fatal("expected anomaly_detected event")
	}
}

func TestAnomalyService_UsesWindowLimit(t *testing.T) {
	f := newAnomalyFixture(t, 1)
	// an old spike followed by 50 flat samples falls out of the window
	values := []float64{100, 100, 100, 100, 5000}
	for i := 0; i < DefaultSampleLimit; i++ {
		values = append(values, 100)
	}
	f.metrics.put(1, DefaultMetricName, values...)

	found, err := f.service.DetectForService(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAnomalyService_RepeatedRunsAreNotDeduplicated(t *testing.T) {
	f := newAnomalyFixture(t, 1)
	f.metrics.put(1, DefaultMetricName, 100, 100, 100, 100, 500)

	for i := 0; i < 3; i++ {
		_, err := f.service.DetectForService(context.Background(), 1)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, f.anomalies.count())
}

func TestAnomalyService_DetectForService_Errors(t *testing.T) {
	storeErr := errors.New("connection refused")

	t.Run("metric store failure", func(t *testing.T) {
		f := newAnomalyFixture(t, 1)
		f.metrics.errs[1] = storeErr

		_, err := f.service.DetectForService(context.Background(), 1)

		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("malformed sample", func(t *testing.T) {
		f := newAnomalyFixture(t, 1)
		f.metrics.put(1, DefaultMetricName, 100, 100, 100, 100, 500)
		f.metrics.samples[1][2].Timestamp = time.Time{}

		_, err := f.service.DetectForService(context.Background(), 1)

		var invalid *validation.InvalidInputError
		assert.True(t, errors.As(err, &invalid))
		assert.Equal(t, 0, f.anomalies.count())
	})

	t.Run("anomaly store failure", func(t *testing.T) {
		f := newAnomalyFixture(t, 1)
		f.metrics.put(1, DefaultMetricName, 100, 100, 100, 100, 500)
		f.anomalies.err = storeErr

		_, err := f.service.DetectForService(context.Background(), 1)

		assert.ErrorIs(t, err, storeErr)
	})
}

func TestAnomalyService_DetectAll(t *testing.T) {
	f := newAnomalyFixture(t, 5, 2, 9, 7)
	f.metrics.put(2, DefaultMetricName, 50, 50, 50, 50, 100)
	f.metrics.put(5, DefaultMetricName, 100, 100, 100, 100, 100)
	f.metrics.put(9, DefaultMetricName, 10, 10, 10, 10, 90)
	f.metrics.errs[7] = errors.New("timeout")

	found, err := f.service.DetectAll(context.Background())

	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(2), found[0].ServiceID)
	assert.Equal(t, int64(9), found[1].ServiceID)
}

func TestAnomalyService_Sweep_Report(t *testing.T) {
	f := newAnomalyFixture(t, 1, 2, 3)
	f.metrics.put(1, DefaultMetricName, 100, 100, 100, 100, 500)
	f.metrics.errs[3] = errors.New("timeout")

	report, err := f.service.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Services)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Events, 1)
}

func TestAnomalyService_DetectAll_EmptyCatalog(t *testing.T) {
	f := newAnomalyFixture(t)

	found, err := f.service.DetectAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestAnomalyService_DetectAll_CatalogError(t *testing.T) {
	f := newAnomalyFixture(t)
	f.catalog.err = errors.New("db down")

	_, err := f.service.DetectAll(context.Background())

	assert.Error(t, err)
}

func TestAnomalyService_DetectAll_Cancelled(t *testing.T) {
	f := newAnomalyFixture(t, 1, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.DetectAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAnomalyService_Defaults(t *testing.T) {
	s := NewAnomalyService(AnomalyServiceConfig{})

	assert.Equal(t, DefaultMetricName, s.MetricName())
	assert.Equal(t, DefaultSampleLimit, s.config.SampleLimit)
	assert.Equal(t, DefaultConcurrency, s.config.Concurrency)
	assert.NotNil(t, s.config.Detector)
}
