package events

import (
	"fmt"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	if p == nil {
		return nil
	}
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) AnomalyDetected(anomaly *models.AnomalyEvent) {
	msg := fmt.Sprintf("Anomaly on %s: %s severity, score %.2f", anomaly.MetricName, anomaly.Severity, anomaly.Score)
	event := models.NewEvent(models.EventTypeAnomalyDetected, models.ServiceSubject(anomaly.ServiceID), msg).
		WithData(anomaly)

	switch anomaly.Severity {
	case models.AnomalySeverityHigh:
		event.WithSeverity(models.SeverityCritical)
	case models.AnomalySeverityMedium:
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) HotspotAnalyzed(analysis *models.ThreadHotspotAnalysis) {
	event := models.NewEvent(models.EventTypeHotspotAnalyzed, models.ProcessSubject(analysis.ProcessID), analysis.Summary).
		WithData(analysis)

	switch {
	case analysis.HealthScore < 60:
		event.WithSeverity(models.SeverityCritical)
	case analysis.HealthScore < 80:
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

type SweepSummary struct {
	Services   int   `json:"services"`
	Failed     int   `json:"failed"`
	Anomalies  int   `json:"anomalies"`
	DurationMs int64 `json:"duration_ms"`
}

func (p *Publisher) SweepCompleted(summary SweepSummary) {
	msg := fmt.Sprintf("Anomaly sweep complete: %d services, %d anomalies", summary.Services, summary.Anomalies)
	event := models.NewEvent(models.EventTypeSweepCompleted, "", msg).
		WithData(summary)

	if summary.Failed > 0 {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) Alert(subject string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, subject, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(subject string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, subject, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
