package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/optimize"
	"github.com/havenhealth/ops-engine/pkg/models"
)

func constant(value float64, n int) []models.PredictionPoint {
	points := make([]models.PredictionPoint, n)
	for i := range points {
		points[i] = models.PredictionPoint{Value: value}
	}
	return points
}

func TestScore_OxygenAtTarget(t *testing.T) {
	// Constant series at the 85 target: stability 100, adequacy 100.
	score, err := optimize.Score(models.ResourceOxygen, constant(85, 24))
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestScore_StaffAboveBaseline(t *testing.T) {
	// Constant 70: stability 100, adequacy 100 - (70-50)*2 = 60.
	// round(0.4*100 + 0.6*60) = 76.
	score, err := optimize.Score(models.ResourceStaff, constant(70, 24))
	require.NoError(t, err)
	assert.Equal(t, 76, score)
}

func TestScore_EmergencyBelowBaselineFullAdequacy(t *testing.T) {
	score, err := optimize.Score(models.ResourceEmergency, constant(2, 24))
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestScore_BedsAboveTargetClampedTo100(t *testing.T) {
	// Adequacy 60/30*100 = 200; the blend must still clamp at 100.
	score, err := optimize.Score(models.ResourceBeds, constant(60, 24))
	require.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestScore_NeverNegative(t *testing.T) {
	// Extreme swings zero out stability; staff far above baseline
	// drives adequacy deeply negative.
	points := []models.PredictionPoint{{Value: 0}, {Value: 100}, {Value: 0}, {Value: 100}}
	score, err := optimize.Score(models.ResourceStaff, points)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestScore_VariancePenalizesStability(t *testing.T) {
	steady, err := optimize.Score(models.ResourceOxygen, constant(85, 24))
	require.NoError(t, err)

	noisy := []models.PredictionPoint{{Value: 80}, {Value: 90}, {Value: 80}, {Value: 90}}
	jittery, err := optimize.Score(models.ResourceOxygen, noisy)
	require.NoError(t, err)

	assert.Less(t, jittery, steady)
}

func TestScore_EmptyPoints(t *testing.T) {
	score, err := optimize.Score(models.ResourceOxygen, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestScore_InvalidResource(t *testing.T) {
	_, err := optimize.Score(models.ResourceType("ventilators"), constant(50, 5))
	assert.ErrorIs(t, err, models.ErrInvalidResourceType)
}
