package simulator

import (
	"math"
	"math/rand"
	"time"
)

// Pattern shapes a baseline value over time.
type Pattern interface {
	Apply(base float64, at time.Time) float64
	Name() string
}

func ParsePattern(name string, start time.Time, rng *rand.Rand) Pattern {
	switch name {
	case "daily":
		return DailyPattern{}
	case "random":
		return &RandomPattern{rng: rng}
	case "gradual_rise":
		return GradualRisePattern{Start: start}
	case "sine_wave":
		return SineWavePattern{Period: 10 * time.Minute, Amplitude: 0.2}
	default:
		return SteadyPattern{}
	}
}

type SteadyPattern struct{}

func (SteadyPattern) Apply(base float64, _ time.Time) float64 { return base }
func (SteadyPattern) Name() string                            { return "steady" }

// DailyPattern is slower during business hours and faster at night.
type DailyPattern struct{}

func (DailyPattern) Apply(base float64, at time.Time) float64 {
	hour := at.Hour()

	modifier := 1.0
	switch {
	case hour >= 9 && hour <= 11:
		modifier = 1.4
	case hour >= 14 && hour <= 16:
		modifier = 1.3
	case hour >= 17 && hour <= 20:
		modifier = 1.1
	case hour <= 6:
		modifier = 0.7
	}
	return base * modifier
}

func (DailyPattern) Name() string { return "daily" }

// RandomPattern scales by a factor in [0.5, 1.5).
type RandomPattern struct {
	rng *rand.Rand
}

func (p *RandomPattern) Apply(base float64, _ time.Time) float64 {
	return base * (0.5 + p.rng.Float64())
}

func (p *RandomPattern) Name() string { return "random" }

// GradualRisePattern adds 2% per minute since Start, capped at +50%.
type GradualRisePattern struct {
	Start time.Time
}

func (p GradualRisePattern) Apply(base float64, at time.Time) float64 {
	increase := math.Min(at.Sub(p.Start).Minutes()*2, 50)
	if increase < 0 {
		increase = 0
	}
	return base * (1 + increase/100)
}

func (GradualRisePattern) Name() string { return "gradual_rise" }

// SineWavePattern oscillates by Amplitude (a fraction of base) over Period.
type SineWavePattern struct {
	Period    time.Duration
	Amplitude float64
}

func (p SineWavePattern) Apply(base float64, at time.Time) float64 {
	phase := float64(at.UnixNano()) / float64(p.Period.Nanoseconds()) * 2 * math.Pi
	return base * (1 + math.Sin(phase)*p.Amplitude)
}

func (SineWavePattern) Name() string { return "sine_wave" }
