package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type AlertAuditRow struct {
	ID         int
	EventType  string
	AlertID    string
	AlertType  string
	Category   string
	Title      string
	Message    string
	Priority   int
	Resolved   bool
	RecordedAt time.Time
}

type AlertAuditRepository struct {
	db *sql.DB
}

func NewAlertAuditRepository(db *sql.DB) *AlertAuditRepository {
	return &AlertAuditRepository{db: db}
}

func (r *AlertAuditRepository) Insert(ctx context.Context, eventType string, alert models.Alert) error {
	query := `
		INSERT INTO alerts_audit (
			event_type, alert_id, alert_type, category, title,
			message, priority, resolved, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		eventType,
		alert.ID,
		string(alert.Type),
		string(alert.Category),
		alert.Title,
		alert.Message,
		alert.Priority,
		alert.Resolved,
		time.Now(),
	)
	return err
}

func (r *AlertAuditRepository) GetRecent(ctx context.Context, limit int) ([]AlertAuditRow, error) {
	query := `
		SELECT id, event_type, alert_id, alert_type, category, title,
		       message, priority, resolved, recorded_at
		FROM alerts_audit
		ORDER BY recorded_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audit []AlertAuditRow
	for rows.Next() {
		var row AlertAuditRow
		if err := rows.Scan(
			&row.ID,
			&row.EventType,
			&row.AlertID,
			&row.AlertType,
			&row.Category,
			&row.Title,
			&row.Message,
			&row.Priority,
			&row.Resolved,
			&row.RecordedAt,
		); err != nil {
			return nil, err
		}
		audit = append(audit, row)
	}

	return audit, rows.Err()
}

func (r *AlertAuditRepository) GetByAlertID(ctx context.Context, alertID string) ([]AlertAuditRow, error) {
	query := `
		SELECT id, event_type, alert_id, alert_type, category, title,
		       message, priority, resolved, recorded_at
		FROM alerts_audit
		WHERE alert_id = $1
		ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audit []AlertAuditRow
	for rows.Next() {
		var row AlertAuditRow
		if err := rows.Scan(
			&row.ID,
			&row.EventType,
			&row.AlertID,
			&row.AlertType,
			&row.Category,
			&row.Title,
			&row.Message,
			&row.Priority,
			&row.Resolved,
			&row.RecordedAt,
		); err != nil {
			return nil, err
		}
		audit = append(audit, row)
	}

	return audit, rows.Err()
}
