package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/pkg/models"
)

// EventBridge forwards engine events to WebSocket clients
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	// Typed payloads get the dedicated message format.
	switch event.Type {
	case models.EventTypePredictionUpdated:
		if prediction, ok := event.Data.(models.ResourcePrediction); ok {
			BroadcastPrediction(b.hub, prediction)
			return
		}
	case models.EventTypeAlertCreated, models.EventTypeAlertAcknowledged, models.EventTypeAlertResolved:
		if alert, ok := event.Data.(models.Alert); ok {
			BroadcastAlert(b.hub, alert)
			return
		}
	}

	wsMessage := b.convertToWSMessage(event)
	if wsMessage == nil {
		return
	}

	data, err := json.Marshal(wsMessage)
	if err != nil {
		logger.Errorf("Failed to marshal WebSocket message: %v", err)
		return
	}

	b.hub.BroadcastToResource(event.Resource, data)
}

// WebSocketEvent is the message format sent to WebSocket clients
type WebSocketEvent struct {
	Type      string      `json:"type"`
	Resource  string      `json:"resource,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func (b *EventBridge) convertToWSMessage(event *models.Event) *WebSocketEvent {
	wsType := mapEventType(event.Type)
	if wsType == "" {
		return nil // Skip events we don't want to broadcast
	}

	return &WebSocketEvent{
		Type:      wsType,
		Resource:  event.Resource,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}
}

func mapEventType(eventType models.EventType) string {
	switch eventType {
	case models.EventTypePredictionUpdated:
		return "prediction"
	case models.EventTypeAlertCreated:
		return "alert_created"
	case models.EventTypeAlertAcknowledged:
		return "alert_acknowledged"
	case models.EventTypeAlertResolved:
		return "alert_resolved"
	case models.EventTypeRecommendationExecuted:
		return "recommendation_executed"
	case models.EventTypeError:
		return "error"
	default:
		// Skip snapshot_received and other internal events
		return ""
	}
}
