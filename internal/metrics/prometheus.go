package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/monitor-platform/internal/logger"
)

const namespace = "monitor"

var (
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomaly_detections_total",
			Help:      "Detection runs by outcome (anomaly, normal, insufficient, error).",
		},
		[]string{"outcome"},
	)

	AnomaliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Anomaly events recorded, by severity.",
		},
		[]string{"severity"},
	)

	HotspotAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hotspot_analyses_total",
			Help:      "Hotspot analyses by result (ok, error).",
		},
		[]string{"result"},
	)

	ProcessHealthScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_health_score",
			Help:      "Latest hotspot health score per process.",
		},
		[]string{"process_id"},
	)

	SweepDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a full anomaly sweep over all services.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Internal events by type and severity.",
		},
		[]string{"type", "severity"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "0=closed, 1=open, 2=half-open.",
		},
		[]string{"name"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_lookups_total",
			Help:      "Analysis cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10),
		},
		[]string{"method", "path"},
	)

	WebSocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections_active",
			Help:      "Connected WebSocket clients.",
		},
	)
)

func ObserveDetection(outcome string) {
	DetectionsTotal.WithLabelValues(outcome).Inc()
}

func IncAnomaly(severity string) {
	AnomaliesTotal.WithLabelValues(severity).Inc()
}

func ObserveAnalysis(processID int64, healthScore int, err error) {
	if err != nil {
		HotspotAnalysesTotal.WithLabelValues("error").Inc()
		return
	}
	HotspotAnalysesTotal.WithLabelValues("ok").Inc()
	ProcessHealthScore.WithLabelValues(strconv.FormatInt(processID, 10)).Set(float64(healthScore))
}

func ObserveSweep(d time.Duration) {
	SweepDurationSeconds.Observe(d.Seconds())
}

func IncEvent(eventType, severity string) {
	EventsTotal.WithLabelValues(eventType, severity).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func ObserveCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(method, path).Observe(d.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer exposes /metrics on its own port, separate from the API.
func StartServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Infof("Prometheus metrics server listening on %s", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
	return srv
}
