package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type TelemetryRepository struct {
	db *sql.DB
}

func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

func (r *TelemetryRepository) Insert(ctx context.Context, point models.HistoricalPoint) error {
	query := `
		INSERT INTO telemetry_history (
			timestamp, oxygen_demand, bed_occupancy, beds_available,
			staff_workload, emergency_cases, day_of_week, hour, seasonality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		point.Timestamp,
		point.OxygenDemand,
		point.BedOccupancy,
		point.BedsAvailable,
		point.StaffWorkload,
		point.EmergencyCases,
		point.DayOfWeek,
		point.Hour,
		point.Seasonality,
	)
	return err
}

func (r *TelemetryRepository) GetRange(ctx context.Context, from, to time.Time) ([]models.HistoricalPoint, error) {
	query := `
		SELECT timestamp, oxygen_demand, bed_occupancy, beds_available,
		       staff_workload, emergency_cases, day_of_week, hour, seasonality
		FROM telemetry_history
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.HistoricalPoint
	for rows.Next() {
		var p models.HistoricalPoint
		if err := rows.Scan(
			&p.Timestamp,
			&p.OxygenDemand,
			&p.BedOccupancy,
			&p.BedsAvailable,
			&p.StaffWorkload,
			&p.EmergencyCases,
			&p.DayOfWeek,
			&p.Hour,
			&p.Seasonality,
		); err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

func (r *TelemetryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM telemetry_history WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
