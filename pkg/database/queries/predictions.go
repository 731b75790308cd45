package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type PredictionRow struct {
	ID                int
	ResourceType      string
	CurrentValue      float64
	Trend             string
	RiskLevel         string
	OptimizationScore int
	RegressionSlope   sql.NullFloat64
	GeneratedAt       time.Time
}

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Insert(ctx context.Context, prediction models.ResourcePrediction) error {
	query := `
		INSERT INTO prediction_history (
			resource_type, current_value, trend, risk_level,
			optimization_score, regression_slope, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var slope sql.NullFloat64
	if prediction.RegressionSlope != nil {
		slope = sql.NullFloat64{Float64: *prediction.RegressionSlope, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		string(prediction.ResourceType),
		prediction.CurrentValue,
		string(prediction.Trend),
		string(prediction.RiskLevel),
		prediction.OptimizationScore,
		slope,
		prediction.GeneratedAt,
	)
	return err
}

func (r *PredictionRepository) GetRecent(ctx context.Context, resourceType string, limit int) ([]PredictionRow, error) {
	query := `
		SELECT id, resource_type, current_value, trend, risk_level,
		       optimization_score, regression_slope, generated_at
		FROM prediction_history
		WHERE resource_type = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, resourceType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []PredictionRow
	for rows.Next() {
		var row PredictionRow
		if err := rows.Scan(
			&row.ID,
			&row.ResourceType,
			&row.CurrentValue,
			&row.Trend,
			&row.RiskLevel,
			&row.OptimizationScore,
			&row.RegressionSlope,
			&row.GeneratedAt,
		); err != nil {
			return nil, err
		}
		predictions = append(predictions, row)
	}

	return predictions, rows.Err()
}
