package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/OldStager01/monitor-platform/api/handlers"
	"github.com/OldStager01/monitor-platform/api/middleware"
	"github.com/OldStager01/monitor-platform/api/websocket"
	_ "github.com/OldStager01/monitor-platform/docs"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/pkg/config"
	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the stores and services the HTTP layer calls into.
type Dependencies struct {
	Services      handlers.ServiceStore
	Metrics       handlers.MetricStore
	Anomalies     handlers.AnomalyReader
	Detector      handlers.AnomalyDetector
	Snapshots     handlers.SnapshotWriter
	Hotspots      handlers.HotspotAnalyzer
	HealthChecks  map[string]handlers.Checker
	DefaultMetric string
	// Events feeds the WebSocket bridge; nil disables push.
	Events <-chan *models.Event
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.APIConfig
	deps       Dependencies
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
}

func NewServer(cfg config.APIConfig, wsCfg config.WebSocketConfig, mode string, deps Dependencies) *Server {
	if mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		router: gin.New(),
		config: cfg,
		deps:   deps,
		wsHub:  websocket.NewHub(websocket.SettingsFromConfig(wsCfg)),
	}

	s.setupMiddleware()
	s.setupRoutes()

	go s.wsHub.Run()

	if deps.Events != nil {
		s.wsBridge = websocket.NewEventBridge(s.wsHub, deps.Events)
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(middleware.CORSFromConfig(s.config.CORS)))
	s.router.Use(middleware.RequestSizeLimit(middleware.DefaultMaxBodyBytes))

	if s.config.RateLimit > 0 {
		s.router.Use(middleware.RateLimit(middleware.NewRateLimiter(s.config.RateLimit, s.config.RateBurst)))
	}
}

func (s *Server) setupRoutes() {
	limits := handlers.Limits{Default: s.config.DefaultLimit, Max: s.config.MaxLimit}

	healthHandler := handlers.NewHealthHandler(s.deps.HealthChecks)
	serviceHandler := handlers.NewServiceHandler(s.deps.Services)
	metricsHandler := handlers.NewMetricsHandler(s.deps.Metrics, s.deps.DefaultMetric, limits)
	anomalyHandler := handlers.NewAnomalyHandler(s.deps.Anomalies, s.deps.Detector, limits)
	threadHandler := handlers.NewThreadHandler(s.deps.Snapshots, s.deps.Hotspots)

	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// detection and analysis are expensive; keep them well below the global limit
	expensive := middleware.NewEndpointRateLimiter()
	expensive.AddEndpoint("/api/anomalies/detect", 10, 5)
	expensive.AddEndpoint("/api/processes/:id/threads/analyze", 30, 10)

	api := s.router.Group("/api")
	api.Use(expensive.Middleware())
	{
		api.GET("/services", serviceHandler.List)
		api.POST("/services", serviceHandler.Create)
		api.GET("/services/:id", serviceHandler.Get)

		api.GET("/metrics/:serviceId", metricsHandler.Recent)
		api.POST("/metrics", metricsHandler.Ingest)

		api.GET("/anomalies", anomalyHandler.Recent)
		api.POST("/anomalies/detect", anomalyHandler.Detect)

		api.POST("/processes/:id/threads/snapshot", threadHandler.Snapshot)
		api.POST("/processes/:id/threads/analyze", threadHandler.Analyze)
		api.GET("/processes/:id/threads/analysis", threadHandler.Latest)
	}
}

func (s *Server) Start() error {
	idle := s.config.IdleTimeout
	if idle <= 0 {
		idle = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  idle,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
