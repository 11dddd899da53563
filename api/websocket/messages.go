package websocket

import (
	"encoding/json"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

const (
	// AllSubjects subscribes a client to every event.
	AllSubjects = "*"

	MessageTypeAnomaly            = "anomaly"
	MessageTypeHotspotAnalysis    = "hotspot_analysis"
	MessageTypeSweep              = "sweep"
	MessageTypeAlert              = "alert"
	MessageTypeError              = "error"
	MessageTypeSubscriptionUpdate = "subscription_update"
)

// OutgoingMessage is the frame pushed to clients.
type OutgoingMessage struct {
	Type      string      `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// IncomingMessage is what clients send to change subscriptions.
type IncomingMessage struct {
	Type    string `json:"type"`
	Subject string `json:"subject,omitempty"`
}

func (m *OutgoingMessage) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromEvent converts an internal event; ok is false for types that are not
// pushed to clients.
func FromEvent(event *models.Event) (*OutgoingMessage, bool) {
	msgType := messageType(event.Type)
	if msgType == "" {
		return nil, false
	}
	return &OutgoingMessage{
		Type:      msgType,
		Subject:   event.Subject,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
		TraceID:   event.TraceID,
	}, true
}

func messageType(eventType models.EventType) string {
	switch eventType {
	case models.EventTypeAnomalyDetected:
		return MessageTypeAnomaly
	case models.EventTypeHotspotAnalyzed:
		return MessageTypeHotspotAnalysis
	case models.EventTypeSweepCompleted:
		return MessageTypeSweep
	case models.EventTypeAlert:
		return MessageTypeAlert
	case models.EventTypeError:
		return MessageTypeError
	default:
		return ""
	}
}

func subscriptionUpdate(action string, subjects []string) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      MessageTypeSubscriptionUpdate,
		Timestamp: time.Now(),
		Message:   action,
		Data:      map[string]interface{}{"subjects": subjects},
	}
}
