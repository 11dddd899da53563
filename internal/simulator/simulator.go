package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/OldStager01/monitor-platform/internal/logger"
)

type Config struct {
	Port           int
	BaseResponseMs float64
	Variance       float64
	Seed           int64
	Now            func() time.Time
}

// Simulator serves metric endpoints for fake services so the scraper and the
// anomaly sweep can be exercised without real workloads. Services are
// created on first read.
type Simulator struct {
	config     Config
	rng        *rand.Rand
	services   map[string]*ServiceSim
	mu         sync.RWMutex
	httpServer *http.Server
}

func New(cfg Config) *Simulator {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.BaseResponseMs <= 0 {
		cfg.BaseResponseMs = 100
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Simulator{
		config:   cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		services: make(map[string]*ServiceSim),
	}
}

func (s *Simulator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /services", s.listHandler)
	mux.HandleFunc("GET /services/{name}/metrics", s.metricsHandler)
	mux.HandleFunc("POST /services/{name}/spike", s.spikeHandler)
	mux.HandleFunc("POST /services/{name}/pattern", s.patternHandler)
	return mux
}

func (s *Simulator) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Simulator listening on %s", addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Simulator server error: %v", err)
		}
	}()

	return nil
}

func (s *Simulator) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Simulator) GetOrCreate(name string) *ServiceSim {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc, ok := s.services[name]; ok {
		return svc
	}

	svc := NewServiceSim(name, ServiceSimConfig{
		BaseResponseMs: s.config.BaseResponseMs,
		BaseErrorRate:  0.01,
		Variance:       s.config.Variance,
	}, rand.New(rand.NewSource(s.rng.Int63())))
	s.services[name] = svc

	logger.Infof("Created simulated service: %s", name)
	return svc
}

func (s *Simulator) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Simulator response encode failed: %v", err)
	}
}

func (s *Simulator) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Simulator) listHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"services": s.names()})
}

func (s *Simulator) metricsHandler(w http.ResponseWriter, r *http.Request) {
	now := s.config.Now().UTC()
	svc := s.GetOrCreate(r.PathValue("name"))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp": now.Format(time.RFC3339),
		"metrics":   svc.Read(now),
	})
}

// spikeHandler takes ?factor= (default 5) and ?duration= (default 1m).
func (s *Simulator) spikeHandler(w http.ResponseWriter, r *http.Request) {
	factor := 5.0
	if v := r.URL.Query().Get("factor"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "factor must be a positive number"})
			return
		}
		factor = parsed
	}

	duration := time.Minute
	if v := r.URL.Query().Get("duration"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "duration must be a positive Go duration"})
			return
		}
		duration = parsed
	}

	svc := s.GetOrCreate(r.PathValue("name"))
	svc.Spike(factor, duration, s.config.Now())

	logger.Infof("Spike on %s: x%.1f for %s", svc.Name(), factor, duration)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":  svc.Name(),
		"factor":   factor,
		"duration": duration.String(),
	})
}

func (s *Simulator) patternHandler(w http.ResponseWriter, r *http.Request) {
	svc := s.GetOrCreate(r.PathValue("name"))
	pattern := ParsePattern(r.URL.Query().Get("name"), s.config.Now(), rand.New(rand.NewSource(s.rng.Int63())))
	svc.SetPattern(pattern)

	writeJSON(w, http.StatusOK, map[string]string{
		"service": svc.Name(),
		"pattern": pattern.Name(),
	})
}
