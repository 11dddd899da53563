package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

type ServiceSimConfig struct {
	BaseResponseMs float64
	BaseErrorRate  float64
	Variance       float64
	Pattern        Pattern
}

// ServiceSim produces responseTime and errorRate readings for one fake
// service. A spike multiplies the response time until it expires.
type ServiceSim struct {
	name   string
	config ServiceSimConfig
	rng    *rand.Rand

	mu          sync.Mutex
	spikeFactor float64
	spikeUntil  time.Time
}

func NewServiceSim(name string, cfg ServiceSimConfig, rng *rand.Rand) *ServiceSim {
	if cfg.BaseResponseMs <= 0 {
		cfg.BaseResponseMs = 100
	}
	if cfg.Pattern == nil {
		cfg.Pattern = SteadyPattern{}
	}
	return &ServiceSim{name: name, config: cfg, rng: rng}
}

func (s *ServiceSim) Name() string {
	return s.name
}

func (s *ServiceSim) Spike(factor float64, d time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spikeFactor = factor
	s.spikeUntil = now.Add(d)
}

func (s *ServiceSim) SetPattern(p Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.Pattern = p
}

// Read returns the metric values at the given instant.
func (s *ServiceSim) Read(now time.Time) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt := s.config.Pattern.Apply(s.config.BaseResponseMs, now)
	if s.config.Variance > 0 {
		rt += (s.rng.Float64()*2 - 1) * s.config.Variance
	}
	errRate := s.config.BaseErrorRate

	if now.Before(s.spikeUntil) {
		rt *= s.spikeFactor
		errRate = math.Min(errRate*s.spikeFactor, 1)
	}

	return map[string]float64{
		"responseTime": math.Max(rt, 1),
		"errorRate":    errRate,
	}
}
