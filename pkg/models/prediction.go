package models

import "time"

// PredictionPoint is a single forecast value. Never mutated after
// creation; Value is clamped to the resource's valid range and
// Confidence lies in [0,1].
type PredictionPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// RegressionForecast is one fixed-horizon point forecast produced by
// the least-squares forecaster.
type RegressionForecast struct {
	HorizonHours int     `json:"horizon_hours"`
	Value        float64 `json:"value"`
	Confidence   float64 `json:"confidence"`
}

// ResourcePrediction is the aggregate forecasting output for one
// resource type. Recomputed wholesale on each forecast cycle.
type ResourcePrediction struct {
	ResourceType        ResourceType         `json:"resource_type"`
	CurrentValue        float64              `json:"current_value"`
	Predictions         []PredictionPoint    `json:"predictions"`
	Trend               Trend                `json:"trend"`
	RiskLevel           RiskLevel            `json:"risk_level"`
	Recommendations     []string             `json:"recommendations"`
	OptimizationScore   int                  `json:"optimization_score"`
	RegressionForecasts []RegressionForecast `json:"regression_forecasts,omitempty"`
	RegressionSlope     *float64             `json:"regression_slope,omitempty"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// Clone returns a deep copy so subscribers never share slices with the
// engine's live state.
func (rp ResourcePrediction) Clone() ResourcePrediction {
	out := rp
	out.Predictions = append([]PredictionPoint(nil), rp.Predictions...)
	out.Recommendations = append([]string(nil), rp.Recommendations...)
	out.RegressionForecasts = append([]RegressionForecast(nil), rp.RegressionForecasts...)
	if rp.RegressionSlope != nil {
		slope := *rp.RegressionSlope
		out.RegressionSlope = &slope
	}
	return out
}

// PredictionSet is the full per-resource output of one forecast cycle.
type PredictionSet map[ResourceType]ResourcePrediction

func (ps PredictionSet) Clone() PredictionSet {
	out := make(PredictionSet, len(ps))
	for k, v := range ps {
		out[k] = v.Clone()
	}
	return out
}
