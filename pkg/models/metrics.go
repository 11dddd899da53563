package models

import "time"

// MetricSample is a single recorded value of a service metric.
type MetricSample struct {
	ID         int64     `json:"id" db:"id"`
	ServiceID  int64     `json:"service_id" db:"service_id"`
	MetricName string    `json:"metric_name" db:"metric_name"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Value      float64   `json:"value" db:"value"`
}

// MetricValues extracts the values of samples in order
func MetricValues(samples []MetricSample) []float64 {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}
