// Package risk classifies a forecast point set into an ordinal risk
// level using resource-specific thresholds.
package risk

import (
	"github.com/havenhealth/ops-engine/pkg/models"
)

// Assess is a pure function of the prediction values. Each band checks
// two statistics (min or max, and mean) with OR semantics: either
// condition alone triggers the band. Deliberate fail-toward-alarm
// policy; the risk is always the more severe of the two conditions.
func Assess(resource models.ResourceType, points []models.PredictionPoint) (models.RiskLevel, error) {
	if len(points) == 0 {
		return models.RiskLow, nil
	}

	min, max, avg := stats(points)

	switch resource {
	case models.ResourceOxygen:
		// Oxygen demand: lower is worse (value tracks consumption
		// pressure rather than reserve in these checks).
		switch {
		case min < 60 || avg < 70:
			return models.RiskCritical, nil
		case min < 70 || avg < 75:
			return models.RiskHigh, nil
		case min < 80 || avg < 85:
			return models.RiskMedium, nil
		default:
			return models.RiskLow, nil
		}

	case models.ResourceBeds:
		// Bed availability: higher is better.
		switch {
		case min < 5 || avg < 10:
			return models.RiskCritical, nil
		case min < 10 || avg < 15:
			return models.RiskHigh, nil
		case min < 20 || avg < 25:
			return models.RiskMedium, nil
		default:
			return models.RiskLow, nil
		}

	case models.ResourceStaff:
		// Staff workload: higher is worse.
		switch {
		case max > 90 || avg > 85:
			return models.RiskCritical, nil
		case max > 85 || avg > 80:
			return models.RiskHigh, nil
		case max > 75 || avg > 70:
			return models.RiskMedium, nil
		default:
			return models.RiskLow, nil
		}

	case models.ResourceEmergency:
		// Emergency case load: higher is worse.
		switch {
		case max > 8 || avg > 6:
			return models.RiskCritical, nil
		case max > 6 || avg > 4.5:
			return models.RiskHigh, nil
		case max > 4 || avg > 3:
			return models.RiskMedium, nil
		default:
			return models.RiskLow, nil
		}

	default:
		return "", models.ErrInvalidResourceType
	}
}

func stats(points []models.PredictionPoint) (min, max, avg float64) {
	min = points[0].Value
	max = points[0].Value

	var total float64
	for _, p := range points {
		total += p.Value
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return min, max, total / float64(len(points))
}
