// Package optimize blends forecast stability and adequacy-to-target
// into a single 0-100 score per resource.
package optimize

import (
	"math"

	"github.com/havenhealth/ops-engine/pkg/models"
)

const (
	stabilityWeight = 0.4
	adequacyWeight  = 0.6

	oxygenTarget      = 85.0
	bedsTarget        = 30.0
	staffBaseline     = 50.0
	emergencyBaseline = 3.0

	staffPenaltyPerUnit     = 2.0
	emergencyPenaltyPerUnit = 10.0
)

// Score computes round(0.4*stability + 0.6*adequacy). Stability is
// max(0, 100 - variance); adequacy rewards oxygen/bed forecasts near
// their targets and penalizes staff/emergency averages above baseline.
// The result is clamped to [0,100]; unbounded adequacy formulas (bed
// average above target) could otherwise push it past 100.
func Score(resource models.ResourceType, points []models.PredictionPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	avg := mean(points)

	stability := 100 - variance(points, avg)
	if stability < 0 {
		stability = 0
	}

	adequacy, err := adequacyFor(resource, avg)
	if err != nil {
		return 0, err
	}

	score := math.Round(stabilityWeight*stability + adequacyWeight*adequacy)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score), nil
}

func adequacyFor(resource models.ResourceType, avg float64) (float64, error) {
	switch resource {
	case models.ResourceOxygen:
		return avg / oxygenTarget * 100, nil
	case models.ResourceBeds:
		return avg / bedsTarget * 100, nil
	case models.ResourceStaff:
		excess := avg - staffBaseline
		if excess < 0 {
			excess = 0
		}
		return 100 - excess*staffPenaltyPerUnit, nil
	case models.ResourceEmergency:
		excess := avg - emergencyBaseline
		if excess < 0 {
			excess = 0
		}
		return 100 - excess*emergencyPenaltyPerUnit, nil
	default:
		return 0, models.ErrInvalidResourceType
	}
}

func mean(points []models.PredictionPoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total / float64(len(points))
}

func variance(points []models.PredictionPoint, avg float64) float64 {
	var sumSq float64
	for _, p := range points {
		d := p.Value - avg
		sumSq += d * d
	}
	return sumSq / float64(len(points))
}
