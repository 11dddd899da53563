package models

import "time"

// Service is a monitored application whose metrics feed anomaly detection.
type Service struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Env            string    `json:"env" db:"env"`
	Description    string    `json:"description,omitempty" db:"description"`
	MetricEndpoint string    `json:"metric_endpoint,omitempty" db:"metric_endpoint"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
