package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/risk"
	"github.com/havenhealth/ops-engine/pkg/models"
)

func points(values ...float64) []models.PredictionPoint {
	out := make([]models.PredictionPoint, len(values))
	for i, v := range values {
		out[i] = models.PredictionPoint{Value: v}
	}
	return out
}

func TestAssess_Oxygen(t *testing.T) {
	tests := []struct {
		name     string
		points   []models.PredictionPoint
		expected models.RiskLevel
	}{
		// min 55, avg 65: min alone crosses the critical band.
		{"critical by min", points(55, 75), models.RiskCritical},
		// min 65 stays above 60 but avg 65 crosses avg < 70.
		{"critical by avg", points(65, 65), models.RiskCritical},
		{"high", points(68, 84), models.RiskHigh},
		// min 72, avg 78: min < 80 triggers medium.
		{"medium", points(72, 84), models.RiskMedium},
		{"low", points(90, 94), models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := risk.Assess(models.ResourceOxygen, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestAssess_Beds(t *testing.T) {
	tests := []struct {
		name     string
		points   []models.PredictionPoint
		expected models.RiskLevel
	}{
		{"critical by min", points(3, 40), models.RiskCritical},
		{"critical by avg", points(8, 8), models.RiskCritical},
		{"high", points(8, 40), models.RiskHigh},
		{"medium", points(18, 40), models.RiskMedium},
		{"low", points(30, 40), models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := risk.Assess(models.ResourceBeds, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestAssess_Staff(t *testing.T) {
	tests := []struct {
		name     string
		points   []models.PredictionPoint
		expected models.RiskLevel
	}{
		{"critical by max", points(95, 50), models.RiskCritical},
		{"critical by avg", points(86, 86), models.RiskCritical},
		{"high", points(88, 50), models.RiskHigh},
		{"medium", points(80, 50), models.RiskMedium},
		{"low", points(60, 50), models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := risk.Assess(models.ResourceStaff, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestAssess_Emergency(t *testing.T) {
	tests := []struct {
		name     string
		points   []models.PredictionPoint
		expected models.RiskLevel
	}{
		{"critical by max", points(9, 1), models.RiskCritical},
		{"critical by avg", points(7, 7), models.RiskCritical},
		{"high", points(6.5, 2), models.RiskHigh},
		{"medium", points(4.5, 2), models.RiskMedium},
		{"low", points(2, 2), models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := risk.Assess(models.ResourceEmergency, tt.points)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestAssess_EmptyIsLow(t *testing.T) {
	level, err := risk.Assess(models.ResourceOxygen, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, level)
}

func TestAssess_InvalidResource(t *testing.T) {
	_, err := risk.Assess(models.ResourceType("ventilators"), points(50))
	assert.ErrorIs(t, err, models.ErrInvalidResourceType)
}
