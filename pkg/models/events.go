package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeAnomalyDetected EventType = "anomaly_detected"
	EventTypeHotspotAnalyzed EventType = "hotspot_analyzed"
	EventTypeSweepCompleted  EventType = "sweep_completed"
	EventTypeAlert           EventType = "alert"
	EventTypeError           EventType = "error"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event. Subject identifies what the
// event is about, e.g. "service:3" or "process:12".
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Subject   string        `json:"subject,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, subject, message string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Subject:   subject,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}

func ServiceSubject(serviceID int64) string {
	return "service:" + strconv.FormatInt(serviceID, 10)
}

func ProcessSubject(processID int64) string {
	return "process:" + strconv.FormatInt(processID, 10)
}
