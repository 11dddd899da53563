package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/resilience"
	"github.com/OldStager01/monitor-platform/pkg/database/queries"
	"github.com/OldStager01/monitor-platform/pkg/validation"
	"github.com/gin-gonic/gin"
)

const (
	fallbackDefaultLimit = 100
	fallbackMaxLimit     = 1000
)

// Limits bounds the ?limit= query parameter.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) parse(c *gin.Context) int {
	maxLimit := l.Max
	if maxLimit <= 0 {
		maxLimit = fallbackMaxLimit
	}
	limit := l.Default
	if limit <= 0 || limit > maxLimit {
		limit = min(fallbackDefaultLimit, maxLimit)
	}

	if s := c.Query("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = min(parsed, maxLimit)
		}
	}
	return limit
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors onto status codes: invalid input is 422,
// a missing service is 404, an open circuit is 503 and the rest is 500.
func respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, queries.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": message})
	default:
		logger.ErrorCtxf(c.Request.Context(), "%s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func respondList[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{
		"data":  nonNil(items),
		"count": len(items),
	})
}
