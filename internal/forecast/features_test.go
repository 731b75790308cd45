package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/forecast"
	"github.com/havenhealth/ops-engine/pkg/models"
	"github.com/havenhealth/ops-engine/pkg/random"
)

var forecastStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func histWithEmergency(cases float64, n int) []models.HistoricalPoint {
	points := make([]models.HistoricalPoint, n)
	for i := range points {
		points[i] = models.HistoricalPoint{
			Timestamp:      forecastStart.Add(time.Duration(i-n) * time.Hour),
			EmergencyCases: cases,
		}
	}
	return points
}

func TestFeaturePredictor_HorizonLengths(t *testing.T) {
	tests := []struct {
		resource models.ResourceType
		steps    int
	}{
		{models.ResourceOxygen, 24},
		{models.ResourceStaff, 24},
		{models.ResourceEmergency, 24},
		{models.ResourceBeds, 48},
	}

	p := forecast.NewFeaturePredictor(random.NewSeeded(1))

	for _, tt := range tests {
		t.Run(string(tt.resource), func(t *testing.T) {
			points, err := p.Project(tt.resource, 50, histWithEmergency(3, 10), forecastStart)
			require.NoError(t, err)
			assert.Len(t, points, tt.steps)
			assert.Equal(t, tt.steps, forecast.HorizonHours(tt.resource))
		})
	}
}

func TestFeaturePredictor_TimestampsAreHourly(t *testing.T) {
	p := forecast.NewFeaturePredictor(random.NewSeeded(1))

	points, err := p.Project(models.ResourceOxygen, 80, nil, forecastStart)
	require.NoError(t, err)

	for i, pt := range points {
		assert.Equal(t, forecastStart.Add(time.Duration(i+1)*time.Hour), pt.Timestamp)
	}
}

func TestFeaturePredictor_ValuesClamped(t *testing.T) {
	p := forecast.NewFeaturePredictor(random.NewSeeded(1))

	tests := []struct {
		name    string
		current float64
	}{
		{"far above range", 500},
		{"far below range", -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := p.Project(models.ResourceStaff, tt.current, histWithEmergency(3, 10), forecastStart)
			require.NoError(t, err)
			for _, pt := range points {
				assert.GreaterOrEqual(t, pt.Value, 0.0)
				assert.LessOrEqual(t, pt.Value, 100.0)
			}
		})
	}
}

func TestFeaturePredictor_ConfidenceWithFullFeatures(t *testing.T) {
	// Fixed draw of 0.4 puts the base at 0.70 + 0.4*0.25 = 0.80; with
	// emergency history present completeness is 1.0.
	p := forecast.NewFeaturePredictor(random.NewFixed(0.4))

	points, err := p.Project(models.ResourceOxygen, 80, histWithEmergency(3, 10), forecastStart)
	require.NoError(t, err)

	for _, pt := range points {
		assert.InDelta(t, 0.80, pt.Confidence, 1e-9)
	}
}

func TestFeaturePredictor_ConfidenceDegradesWithoutHistory(t *testing.T) {
	p := forecast.NewFeaturePredictor(random.NewFixed(0.4))

	// Empty history drops the emergency feature: 4 of 5 features.
	points, err := p.Project(models.ResourceOxygen, 80, nil, forecastStart)
	require.NoError(t, err)

	for _, pt := range points {
		assert.InDelta(t, 0.80*4.0/5.0, pt.Confidence, 1e-9)
	}
}

func TestFeaturePredictor_InvalidResource(t *testing.T) {
	p := forecast.NewFeaturePredictor(random.NewSeeded(1))

	_, err := p.Project(models.ResourceType("ventilators"), 50, nil, forecastStart)
	assert.ErrorIs(t, err, models.ErrInvalidResourceType)
}

func TestTrendOf(t *testing.T) {
	mk := func(values ...float64) []models.PredictionPoint {
		points := make([]models.PredictionPoint, len(values))
		for i, v := range values {
			points[i] = models.PredictionPoint{Value: v}
		}
		return points
	}

	tests := []struct {
		name     string
		points   []models.PredictionPoint
		expected models.Trend
	}{
		{"rising", mk(50, 52, 54, 56, 58, 60), models.TrendIncreasing},
		{"falling", mk(60, 58, 56, 54, 52, 50), models.TrendDecreasing},
		{"flat", mk(50, 50.5, 50, 49.5, 50, 50), models.TrendStable},
		{"too short", mk(50), models.TrendStable},
		{"short window rising", mk(40, 80), models.TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, forecast.TrendOf(tt.points))
		})
	}
}
