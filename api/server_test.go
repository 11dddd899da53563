package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/api/handlers"
	"github.com/OldStager01/monitor-platform/api/middleware"
	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/pkg/config"
	"github.com/OldStager01/monitor-platform/pkg/database/queries"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

type stubStore struct{}

func (stubStore) GetAll(context.Context) ([]models.Service, error) {
	return []models.Service{{ID: 1, Name: "checkout"}}, nil
}

func (stubStore) GetByID(_ context.Context, id int64) (*models.Service, error) {
	if id == 1 {
		return &models.Service{ID: 1, Name: "checkout"}, nil
	}
	return nil, queries.ErrServiceNotFound
}

func (stubStore) Create(context.Context, *models.Service) error { return nil }

func (stubStore) QueryRecent(context.Context, int64, string, int) ([]models.MetricSample, error) {
	return nil, nil
}

func (stubStore) InsertBatch(context.Context, []models.MetricSample) error { return nil }

func (stubStore) FindRecent(context.Context, *int64, int) ([]models.AnomalyEvent, error) {
	return nil, nil
}

func (stubStore) DetectForService(context.Context, int64) ([]models.AnomalyEvent, error) {
	return nil, nil
}

func (stubStore) DetectAll(context.Context) ([]models.AnomalyEvent, error) { return nil, nil }

func (stubStore) ReplaceSnapshot(context.Context, int64, []models.ThreadInfo, []models.StackFrame) error {
	return nil
}

func (stubStore) Analyze(_ context.Context, processID int64) (*models.ThreadHotspotAnalysis, error) {
	return &models.ThreadHotspotAnalysis{ProcessID: processID, HealthScore: 100}, nil
}

func (stubStore) Latest(context.Context, int64) (*models.ThreadHotspotAnalysis, bool, error) {
	return nil, false, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bus := events.NewEventBus(8)
	store := stubStore{}

	s := NewServer(config.APIConfig{
		Port:         8080,
		RateLimit:    6000,
		RateBurst:    100,
		DefaultLimit: 10,
		MaxLimit:     100,
	}, config.WebSocketConfig{}, "test", Dependencies{
		Services:  store,
		Metrics:   store,
		Anomalies: store,
		Detector:  store,
		Snapshots: store,
		Hotspots:  store,
		HealthChecks: map[string]handlers.Checker{
			"database": handlers.CheckerFunc(func(context.Context) error { return nil }),
		},
		DefaultMetric: "responseTime",
		Events:        bus.SubscribeAll(),
	})

	t.Cleanup(func() {
		require.NoError(t, s.Shutdown(context.Background()))
		bus.Close()
	})
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method       string
		path         string
		expectedCode int
	}{
		{method: http.MethodGet, path: "/health", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/health/live", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/health/ready", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/api/services", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/api/services/1", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/api/services/2", expectedCode: http.StatusNotFound},
		{method: http.MethodGet, path: "/api/metrics/1", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/api/anomalies", expectedCode: http.StatusOK},
		{method: http.MethodPost, path: "/api/anomalies/detect", expectedCode: http.StatusOK},
		{method: http.MethodPost, path: "/api/processes/3/threads/analyze", expectedCode: http.StatusOK},
		{method: http.MethodGet, path: "/api/processes/3/threads/analysis", expectedCode: http.StatusNotFound},
		{method: http.MethodGet, path: "/api/unknown", expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(middleware.TraceIDHeader))
		})
	}
}

func TestServer_MetricsEndpointExposesCollectors(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/services", nil))
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "monitor_http_requests_total"))
}

func TestServer_DetectEndpointIsThrottled(t *testing.T) {
	s := newTestServer(t)

	codes := make(map[int]int)
	for i := 0; i < 8; i++ {
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/anomalies/detect", nil))
		codes[w.Code]++
	}

	assert.Equal(t, 5, codes[http.StatusOK])
	assert.Equal(t, 3, codes[http.StatusTooManyRequests])
}
