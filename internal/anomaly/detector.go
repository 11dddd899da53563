package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

const (
	DefaultMinSampleCount    = 5
	DefaultZScoreThreshold   = 3.0
	DefaultRatioThreshold    = 2.0
	DefaultHighSeverityScore = 4.0
)

type Config struct {
	MinSampleCount    int
	ZScoreThreshold   float64
	RatioThreshold    float64
	HighSeverityScore float64
	Now               func() time.Time
}

// Detector compares the latest sample of a window against the baseline formed
// by the samples before it. It holds no mutable state.
type Detector struct {
	config Config
}

// Result carries the statistics of one evaluation, anomalous or not.
type Result struct {
	Mean      float64
	Std       float64
	Latest    float64
	Score     float64
	Anomalous bool
}

func New(cfg Config) *Detector {
	if cfg.MinSampleCount == 0 {
		cfg.MinSampleCount = DefaultMinSampleCount
	}
	if cfg.ZScoreThreshold == 0 {
		cfg.ZScoreThreshold = DefaultZScoreThreshold
	}
	if cfg.RatioThreshold == 0 {
		cfg.RatioThreshold = DefaultRatioThreshold
	}
	if cfg.HighSeverityScore == 0 {
		cfg.HighSeverityScore = DefaultHighSeverityScore
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Detector{config: cfg}
}

// MinSampleCount is the shortest window Detect will score.
func (d *Detector) MinSampleCount() int {
	return d.config.MinSampleCount
}

// Detect evaluates an ascending window of samples for one (service, metric)
// pair. It returns nil when the window is too short or the latest value is
// within the baseline.
func (d *Detector) Detect(serviceID int64, metricName string, samples []models.MetricSample) (*models.AnomalyEvent, error) {
	if err := validateWindow(serviceID, metricName, samples); err != nil {
		return nil, err
	}
	if len(samples) < d.config.MinSampleCount {
		return nil, nil
	}

	result := d.Evaluate(models.MetricValues(samples))
	if !result.Anomalous {
		return nil, nil
	}

	latest := samples[len(samples)-1]
	return &models.AnomalyEvent{
		ServiceID:  serviceID,
		MetricName: metricName,
		StartTime:  latest.Timestamp,
		EndTime:    latest.Timestamp,
		Severity:   d.severity(result.Score),
		Score:      result.Score,
		Reason:     reason(result),
		CreatedAt:  d.config.Now(),
	}, nil
}

// Evaluate scores the last value of values against the rest. values must
// hold at least two elements.
func (d *Detector) Evaluate(values []float64) Result {
	history := values[:len(values)-1]
	latest := values[len(values)-1]

	mean, std := meanStd(history)
	result := Result{Mean: mean, Std: std, Latest: latest}

	if std > 0 {
		result.Score = (latest - mean) / std
		result.Anomalous = result.Score >= d.config.ZScoreThreshold
		return result
	}

	// Flat history: fall back to the ratio against the mean.
	ratio := 0.0
	if mean != 0 {
		ratio = latest / mean
	}
	result.Score = ratio
	result.Anomalous = ratio >= d.config.RatioThreshold
	return result
}

func (d *Detector) severity(score float64) models.AnomalySeverity {
	switch {
	case score >= d.config.HighSeverityScore:
		return models.AnomalySeverityHigh
	case score >= d.config.ZScoreThreshold:
		return models.AnomalySeverityMedium
	default:
		return models.AnomalySeverityLow
	}
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		diff := v - mean
		sq += diff * diff
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func reason(r Result) string {
	if r.Std > 0 {
		return fmt.Sprintf(
			"latest value %.2f is above historical mean %.2f with standard deviation %.2f (score=%.2f), flagged as anomaly",
			r.Latest, r.Mean, r.Std, r.Score,
		)
	}
	return fmt.Sprintf(
		"latest value %.2f is well above historical mean %.2f (score=%.2f), flagged as anomaly",
		r.Latest, r.Mean, r.Score,
	)
}

func validateWindow(serviceID int64, metricName string, samples []models.MetricSample) error {
	for i, s := range samples {
		switch {
		case s.ServiceID != serviceID:
			return validation.InvalidAt("samples", i, fmt.Sprintf("service_id %d does not match %d", s.ServiceID, serviceID))
		case s.MetricName != metricName:
			return validation.InvalidAt("samples", i, fmt.Sprintf("metric_name %q does not match %q", s.MetricName, metricName))
		case s.Timestamp.IsZero():
			return validation.InvalidAt("samples", i, "missing timestamp")
		case math.IsNaN(s.Value) || math.IsInf(s.Value, 0):
			return validation.InvalidAt("samples", i, "value is not a finite number")
		case i > 0 && s.Timestamp.Before(samples[i-1].Timestamp):
			return validation.InvalidAt("samples", i, "timestamps are not in ascending order")
		}
	}
	return nil
}
