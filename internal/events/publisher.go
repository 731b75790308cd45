package events

import (
	"fmt"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
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

func (p *Publisher) SnapshotReceived(snap *models.Snapshot) {
	event := models.NewEvent(models.EventTypeSnapshotReceived, "", "Telemetry snapshot received").
		WithData(snap)
	p.publish(event)
}

func (p *Publisher) PredictionUpdated(resource models.ResourceType, prediction models.ResourcePrediction) {
	msg := fmt.Sprintf("Prediction updated: risk=%s score=%d", prediction.RiskLevel, prediction.OptimizationScore)
	event := models.NewEvent(models.EventTypePredictionUpdated, string(resource), msg).
		WithData(prediction)

	if prediction.RiskLevel == models.RiskCritical {
		event.WithSeverity(models.SeverityCritical)
	} else if prediction.RiskLevel == models.RiskHigh {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) AlertCreated(alert models.Alert) {
	event := models.NewEvent(models.EventTypeAlertCreated, string(alert.Category), alert.Title).
		WithData(alert)

	if alert.Type == models.AlertCritical {
		event.WithSeverity(models.SeverityCritical)
	} else if alert.Type == models.AlertWarning {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) AlertAcknowledged(alert models.Alert) {
	event := models.NewEvent(models.EventTypeAlertAcknowledged, string(alert.Category), "Alert acknowledged: "+alert.Title).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) AlertResolved(alert models.Alert) {
	event := models.NewEvent(models.EventTypeAlertResolved, string(alert.Category), "Alert resolved: "+alert.Title).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) RecommendationExecuted(alertID, recommendationID string, success bool) {
	msg := fmt.Sprintf("Recommendation %s executed: success=%v", recommendationID, success)
	event := models.NewEvent(models.EventTypeRecommendationExecuted, "", msg).
		WithData(map[string]interface{}{
			"alert_id":          alertID,
			"recommendation_id": recommendationID,
			"success":           success,
		})

	if !success {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) Error(resource string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, resource, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
