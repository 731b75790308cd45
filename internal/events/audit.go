package events

import (
	"context"

	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/pkg/database"
	"github.com/havenhealth/ops-engine/pkg/database/queries"
	"github.com/havenhealth/ops-engine/pkg/models"
)

// AuditLogger consumes the event stream, writes each event to the
// structured log, and persists the durable subset (alert lifecycle,
// telemetry rows, prediction summaries) to the audit tables. The
// engine itself never reads these tables back; all live state stays
// in memory.
type AuditLogger struct {
	db        *database.DB
	alerts    *queries.AlertAuditRepository
	telemetry *queries.TelemetryRepository
	preds     *queries.PredictionRepository
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewAuditLogger(db *database.DB, eventChan <-chan *models.Event) *AuditLogger {
	ctx, cancel := context.WithCancel(context.Background())

	l := &AuditLogger{
		db:        db,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
	if db != nil {
		l.alerts = queries.NewAlertAuditRepository(db.DB)
		l.telemetry = queries.NewTelemetryRepository(db.DB)
		l.preds = queries.NewPredictionRepository(db.DB)
	}
	return l
}

func (l *AuditLogger) Start() {
	go l.run()
}

func (l *AuditLogger) Stop() {
	l.cancel()
}

func (l *AuditLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *AuditLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"resource":   event.Resource,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	if l.db == nil {
		return
	}

	switch event.Type {
	case models.EventTypeAlertCreated, models.EventTypeAlertAcknowledged, models.EventTypeAlertResolved:
		l.persistAlert(event)
	case models.EventTypeSnapshotReceived:
		l.persistSnapshot(event)
	case models.EventTypePredictionUpdated:
		l.persistPrediction(event)
	}
}

func (l *AuditLogger) persistAlert(event *models.Event) {
	alert, ok := event.Data.(models.Alert)
	if !ok {
		return
	}

	if err := l.alerts.Insert(l.ctx, string(event.Type), alert); err != nil {
		logger.Errorf("Failed to persist alert audit row: %v", err)
	}
}

func (l *AuditLogger) persistSnapshot(event *models.Event) {
	snap, ok := event.Data.(*models.Snapshot)
	if !ok {
		return
	}

	if err := l.telemetry.Insert(l.ctx, models.NewHistoricalPoint(snap)); err != nil {
		logger.Errorf("Failed to persist telemetry row: %v", err)
	}
}

func (l *AuditLogger) persistPrediction(event *models.Event) {
	prediction, ok := event.Data.(models.ResourcePrediction)
	if !ok {
		return
	}

	if err := l.preds.Insert(l.ctx, prediction); err != nil {
		logger.Errorf("Failed to persist prediction record: %v", err)
	}
}
