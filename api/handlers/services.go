package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/database/queries"
	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
	"github.com/gin-gonic/gin"
)

type ServiceStore interface {
	GetAll(ctx context.Context) ([]models.Service, error)
	GetByID(ctx context.Context, id int64) (*models.Service, error)
	Create(ctx context.Context, service *models.Service) error
}

type ServiceHandler struct {
	services ServiceStore
}

func NewServiceHandler(services ServiceStore) *ServiceHandler {
	return &ServiceHandler{services: services}
}

type CreateServiceRequest struct {
	Name           string `json:"name" binding:"required" example:"checkout-api"`
	Env            string `json:"env" example:"prod"`
	Description    string `json:"description" example:"Checkout REST API"`
	MetricEndpoint string `json:"metric_endpoint" example:"http://checkout:9090/metrics"`
}

// List godoc
// @Summary List services
// @Description Get all monitored services
// @Tags Services
// @Produce json
// @Success 200 {object} map[string]interface{} "List of services"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	services, err := h.services.GetAll(ctx)
	if err != nil {
		respondError(c, err, "failed to fetch services")
		return
	}
	respondList(c, services)
}

// Get godoc
// @Summary Get service
// @Tags Services
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} models.Service
// @Failure 400 {object} map[string]string "Invalid service ID"
// @Failure 404 {object} map[string]string "Service not found"
// @Router /api/services/{id} [get]
func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	service, err := h.services.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to fetch service")
		return
	}
	c.JSON(http.StatusOK, service)
}

// Create godoc
// @Summary Register service
// @Tags Services
// @Accept json
// @Produce json
// @Param request body CreateServiceRequest true "Service"
// @Success 201 {object} models.Service
// @Failure 400 {object} map[string]string "Malformed body"
// @Failure 409 {object} map[string]string "Service name already registered"
// @Failure 422 {object} map[string]string "Invalid service name"
// @Router /api/services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := validation.SanitizeString(req.Name)
	if err := validation.ValidateServiceName(name); err != nil {
		respondError(c, err, "invalid service")
		return
	}

	service := &models.Service{
		Name:           name,
		Env:            validation.SanitizeString(req.Env),
		Description:    validation.SanitizeString(req.Description),
		MetricEndpoint: validation.SanitizeString(req.MetricEndpoint),
	}
	if err := h.services.Create(c.Request.Context(), service); err != nil {
		if errors.Is(err, queries.ErrServiceExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "service already exists"})
			return
		}
		respondError(c, err, "failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}
