// Package forecast produces short-horizon numeric predictions from the
// historical telemetry series: a fixed-weight feature predictor for
// hourly projections and a least-squares forecaster for fixed horizons.
package forecast

import (
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
	"github.com/havenhealth/ops-engine/pkg/random"
)

const (
	// DefaultHorizonHours is how many hourly points most resources
	// project forward. Beds use the longer bed planning horizon.
	DefaultHorizonHours = 24
	BedsHorizonHours    = 48

	// Confidence is a heuristic, not a real uncertainty model: a random
	// base in [0.70,0.95] scaled by data completeness. Intentionally
	// approximate.
	confidenceBase   = 0.70
	confidenceSpread = 0.25

	emergencyLookback = 24
)

// featureWeights is the fixed per-resource weight vector applied to the
// named feature values. Hand-tuned configuration, not learned.
type featureWeights struct {
	current       float64
	hourOfDay     float64
	dayOfWeek     float64
	emergencyLoad float64
	seasonality   float64
}

var resourceWeights = map[models.ResourceType]featureWeights{
	models.ResourceOxygen:    {current: 0.88, hourOfDay: 4.0, dayOfWeek: 1.5, emergencyLoad: 0.6, seasonality: 3.5},
	models.ResourceBeds:      {current: 0.90, hourOfDay: -2.0, dayOfWeek: 1.0, emergencyLoad: -0.8, seasonality: -2.5},
	models.ResourceStaff:     {current: 0.85, hourOfDay: 5.0, dayOfWeek: 2.0, emergencyLoad: 1.2, seasonality: 4.0},
	models.ResourceEmergency: {current: 0.75, hourOfDay: 1.2, dayOfWeek: 0.5, emergencyLoad: 0.2, seasonality: 1.0},
}

// expectedFeatures is the number of features in each resource's vector,
// used for the data-completeness confidence scaling.
const expectedFeatures = 5

// FeaturePredictor projects hourly points forward by recombining the
// fixed feature weights with time-dependent features recomputed for
// each future step.
type FeaturePredictor struct {
	rand random.Source
}

func NewFeaturePredictor(rnd random.Source) *FeaturePredictor {
	if rnd == nil {
		rnd = random.New()
	}
	return &FeaturePredictor{rand: rnd}
}

// HorizonHours returns how many hourly steps a resource projects.
func HorizonHours(resource models.ResourceType) int {
	if resource == models.ResourceBeds {
		return BedsHorizonHours
	}
	return DefaultHorizonHours
}

// Project produces the hourly forecast for one resource. current is
// the latest raw reading for that resource (bed availability count,
// workload percent, case count, or oxygen demand); hist supplies the
// recent emergency-load feature. Values are clamped to [0,100].
func (p *FeaturePredictor) Project(
	resource models.ResourceType,
	current float64,
	hist []models.HistoricalPoint,
	from time.Time,
) ([]models.PredictionPoint, error) {
	weights, ok := resourceWeights[resource]
	if !ok {
		return nil, models.ErrInvalidResourceType
	}

	avgEmergency, emergencyKnown := recentEmergencyLoad(hist)

	available := expectedFeatures
	if !emergencyKnown {
		available--
	}
	completeness := float64(available) / float64(expectedFeatures)

	steps := HorizonHours(resource)
	points := make([]models.PredictionPoint, steps)

	for i := 0; i < steps; i++ {
		ts := from.Add(time.Duration(i+1) * time.Hour)

		hourNorm := float64(ts.Hour()) / 23.0
		dayNorm := float64(ts.Weekday()) / 6.0
		seasonal := models.SeasonalityFactor(ts.Hour())

		value := weights.current*current +
			weights.hourOfDay*hourNorm +
			weights.dayOfWeek*dayNorm +
			weights.emergencyLoad*avgEmergency +
			weights.seasonality*seasonal

		points[i] = models.PredictionPoint{
			Timestamp:  ts,
			Value:      clamp(value, 0, 100),
			Confidence: p.confidence(completeness),
		}
	}

	return points, nil
}

func (p *FeaturePredictor) confidence(completeness float64) float64 {
	base := confidenceBase + p.rand.Float64()*confidenceSpread
	return clamp(base*completeness, 0, 1)
}

func recentEmergencyLoad(hist []models.HistoricalPoint) (float64, bool) {
	if len(hist) == 0 {
		return 0, false
	}

	start := len(hist) - emergencyLookback
	if start < 0 {
		start = 0
	}

	var total float64
	window := hist[start:]
	for _, pt := range window {
		total += pt.EmergencyCases
	}
	return total / float64(len(window)), true
}

// TrendOf derives the trend by comparing the first and last values of
// a short sub-window of the hourly projection.
func TrendOf(points []models.PredictionPoint) models.Trend {
	const (
		window    = 6
		threshold = 2.0
	)

	if len(points) < 2 {
		return models.TrendStable
	}

	n := window
	if n > len(points) {
		n = len(points)
	}

	diff := points[n-1].Value - points[0].Value
	switch {
	case diff > threshold:
		return models.TrendIncreasing
	case diff < -threshold:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
