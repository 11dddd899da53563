package models

import "time"

type AnomalySeverity string

const (
	AnomalySeverityLow    AnomalySeverity = "low"
	AnomalySeverityMedium AnomalySeverity = "medium"
	AnomalySeverityHigh   AnomalySeverity = "high"
)

// AnomalyEvent records a flagged deviation of a metric's latest value from
// its recent baseline. Events are created once and never mutated.
type AnomalyEvent struct {
	ID         int64           `json:"id" db:"id"`
	ServiceID  int64           `json:"service_id" db:"service_id"`
	MetricName string          `json:"metric_name" db:"metric_name"`
	StartTime  time.Time       `json:"start_time" db:"start_time"`
	EndTime    time.Time       `json:"end_time" db:"end_time"`
	Severity   AnomalySeverity `json:"severity" db:"severity"`
	Score      float64         `json:"score" db:"score"`
	Reason     string          `json:"reason" db:"reason"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

func (e *AnomalyEvent) IsHigh() bool {
	return e.Severity == AnomalySeverityHigh
}
