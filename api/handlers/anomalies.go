package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
	"github.com/gin-gonic/gin"
)

type AnomalyReader interface {
	FindRecent(ctx context.Context, serviceID *int64, limit int) ([]models.AnomalyEvent, error)
}

type AnomalyDetector interface {
	DetectForService(ctx context.Context, serviceID int64) ([]models.AnomalyEvent, error)
	DetectAll(ctx context.Context) ([]models.AnomalyEvent, error)
}

type AnomalyHandler struct {
	reader   AnomalyReader
	detector AnomalyDetector
	limits   Limits
}

func NewAnomalyHandler(reader AnomalyReader, detector AnomalyDetector, limits Limits) *AnomalyHandler {
	return &AnomalyHandler{reader: reader, detector: detector, limits: limits}
}

// DetectRequest runs detection for one service, or every service when
// ServiceID is omitted.
type DetectRequest struct {
	ServiceID *int64 `json:"service_id,omitempty" example:"3"`
}

// Recent godoc
// @Summary Recent anomaly events
// @Tags Anomalies
// @Produce json
// @Param service_id query int false "Filter by service"
// @Param limit query int false "Maximum events" default(100)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/anomalies [get]
func (h *AnomalyHandler) Recent(c *gin.Context) {
	var serviceID *int64
	if s := c.Query("service_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service_id"})
			return
		}
		serviceID = &id
	}

	found, err := h.reader.FindRecent(c.Request.Context(), serviceID, h.limits.parse(c))
	if err != nil {
		respondError(c, err, "failed to fetch anomalies")
		return
	}
	respondList(c, found)
}

// Detect godoc
// @Summary Run anomaly detection
// @Description Detects anomalies for one service, or for all services when service_id is omitted
// @Tags Anomalies
// @Accept json
// @Produce json
// @Param request body DetectRequest false "Target service"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 503 {object} map[string]string "Metric store unavailable"
// @Router /api/anomalies/detect [post]
func (h *AnomalyHandler) Detect(c *gin.Context) {
	var req DetectRequest
	if c.Request.ContentLength != 0 {
		// a chunked request may still carry no body at all
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	var (
		found []models.AnomalyEvent
		err   error
	)
	if req.ServiceID != nil {
		if verr := validation.ValidateID("service_id", *req.ServiceID); verr != nil {
			respondError(c, verr, "invalid request")
			return
		}
		found, err = h.detector.DetectForService(ctx, *req.ServiceID)
	} else {
		found, err = h.detector.DetectAll(ctx)
	}
	if err != nil {
		respondError(c, err, "anomaly detection failed")
		return
	}

	respondList(c, found)
}
