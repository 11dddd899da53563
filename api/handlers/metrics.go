package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
	"github.com/gin-gonic/gin"
)

type MetricStore interface {
	QueryRecent(ctx context.Context, serviceID int64, metricName string, limit int) ([]models.MetricSample, error)
	InsertBatch(ctx context.Context, samples []models.MetricSample) error
}

type MetricsHandler struct {
	store         MetricStore
	defaultMetric string
	limits        Limits
	now           func() time.Time
}

func NewMetricsHandler(store MetricStore, defaultMetric string, limits Limits) *MetricsHandler {
	return &MetricsHandler{
		store:         store,
		defaultMetric: defaultMetric,
		limits:        limits,
		now:           time.Now,
	}
}

type MetricSampleInput struct {
	ServiceID  int64     `json:"service_id" binding:"required" example:"3"`
	MetricName string    `json:"metric_name" binding:"required" example:"responseTime"`
	Timestamp  time.Time `json:"timestamp" example:"2026-03-01T12:00:00Z"`
	Value      *float64  `json:"value" binding:"required" example:"120.5"`
}

type IngestMetricsRequest struct {
	Samples []MetricSampleInput `json:"samples" binding:"required,min=1,dive"`
}

// Recent godoc
// @Summary Recent metric samples
// @Description Most recent samples of one metric, oldest first
// @Tags Metrics
// @Produce json
// @Param serviceId path int true "Service ID"
// @Param metric query string false "Metric name" default(responseTime)
// @Param limit query int false "Maximum samples" default(100)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/metrics/{serviceId} [get]
func (h *MetricsHandler) Recent(c *gin.Context) {
	serviceID, ok := parseID(c, "serviceId")
	if !ok {
		return
	}

	metric := c.DefaultQuery("metric", h.defaultMetric)
	samples, err := h.store.QueryRecent(c.Request.Context(), serviceID, metric, h.limits.parse(c))
	if err != nil {
		respondError(c, err, "failed to fetch metrics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service_id":  serviceID,
		"metric_name": metric,
		"data":        nonNil(samples),
		"count":       len(samples),
	})
}

// Ingest godoc
// @Summary Ingest metric samples
// @Tags Metrics
// @Accept json
// @Produce json
// @Param request body IngestMetricsRequest true "Samples"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/metrics [post]
func (h *MetricsHandler) Ingest(c *gin.Context) {
	var req IngestMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := h.now().UTC()
	samples := make([]models.MetricSample, len(req.Samples))
	for i, in := range req.Samples {
		if err := validation.ValidateID("service_id", in.ServiceID); err != nil {
			respondError(c, fmt.Errorf("samples[%d]: %w", i, err), "invalid sample")
			return
		}
		if err := validation.ValidateMetricName(in.MetricName); err != nil {
			respondError(c, fmt.Errorf("samples[%d]: %w", i, err), "invalid sample")
			return
		}
		ts := in.Timestamp
		if ts.IsZero() {
			ts = now
		}
		samples[i] = models.MetricSample{
			ServiceID:  in.ServiceID,
			MetricName: in.MetricName,
			Timestamp:  ts,
			Value:      *in.Value,
		}
	}

	if err := h.store.InsertBatch(c.Request.Context(), samples); err != nil {
		respondError(c, err, "failed to store metrics")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"count": len(samples)})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
