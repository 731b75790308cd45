package models

import "time"

type EventType string

const (
	EventTypeSnapshotReceived        EventType = "snapshot_received"
	EventTypePredictionUpdated       EventType = "prediction_updated"
	EventTypeAlertCreated            EventType = "alert_created"
	EventTypeAlertAcknowledged       EventType = "alert_acknowledged"
	EventTypeAlertResolved           EventType = "alert_resolved"
	EventTypeRecommendationExecuted  EventType = "recommendation_executed"
	EventTypeError                   EventType = "error"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal engine event published on the bus.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Resource  string        `json:"resource,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, resource, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Resource:  resource,
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
