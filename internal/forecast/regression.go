package forecast

import (
	"math"
)

const (
	// RegressionWindow is how many recent series points the fit uses.
	RegressionWindow = 48

	// noiseCeiling normalizes the residual RMSE: a fit whose RMSE
	// reaches this many units contributes the minimum fit confidence.
	noiseCeiling = 20.0

	// FlatFallbackValue is forecast when the series has no points at all.
	FlatFallbackValue = 75.0

	confidenceFloor = 0.65
	confidenceCeil  = 0.98

	slopePenaltyRate    = 0.01
	slopePenaltyCap     = 0.08
	horizonPenaltyRate  = 0.012
	horizonPenaltyCap   = 0.15
	shortHorizonBoost   = 0.02
	shortHorizonMaxHour = 2

	fallbackBaseConfidence = 0.85
	fallbackDecayRate      = 0.01
)

// DefaultHorizons are the fixed forecast horizons in hours.
var DefaultHorizons = []int{1, 6, 24}

// HorizonForecast is one fixed-horizon output of the regression fit.
type HorizonForecast struct {
	HorizonHours int
	Value        float64
	Confidence   float64
}

// OLSFit is an ordinary-least-squares line over a series, with the
// sample index as the independent variable.
type OLSFit struct {
	Slope     float64
	Intercept float64
	RMSE      float64
	N         int
}

// FitOLS fits a line to the series. ok is false when fewer than 2
// points are available and no fit exists.
func FitOLS(series []float64) (fit OLSFit, ok bool) {
	n := len(series)
	if n < 2 {
		return OLSFit{N: n}, false
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return OLSFit{N: n}, false
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	var sumSq float64
	for i, y := range series {
		resid := y - (intercept + slope*float64(i))
		sumSq += resid * resid
	}

	return OLSFit{
		Slope:     slope,
		Intercept: intercept,
		RMSE:      math.Sqrt(sumSq / fn),
		N:         n,
	}, true
}

// RegressionForecaster produces point forecasts at fixed horizons with
// confidence derived from fit error and horizon distance.
type RegressionForecaster struct {
	window   int
	horizons []int
}

func NewRegressionForecaster(window int, horizons []int) *RegressionForecaster {
	if window <= 0 {
		window = RegressionWindow
	}
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	return &RegressionForecaster{window: window, horizons: horizons}
}

// Forecast fits the most recent window of the series and extrapolates
// each horizon. With fewer than 2 points it falls back to a flat
// forecast at the last known value (or FlatFallbackValue when the
// series is empty), with confidence decaying linearly per horizon
// hour. The returned slope is nil in the fallback case.
func (f *RegressionForecaster) Forecast(series []float64) ([]HorizonForecast, *float64) {
	if len(series) > f.window {
		series = series[len(series)-f.window:]
	}

	fit, ok := FitOLS(series)
	if !ok {
		return f.flatFallback(series), nil
	}

	lastIndex := float64(fit.N - 1)
	out := make([]HorizonForecast, len(f.horizons))
	for i, h := range f.horizons {
		value := fit.Intercept + fit.Slope*(lastIndex+float64(h))
		out[i] = HorizonForecast{
			HorizonHours: h,
			Value:        clamp(value, 0, 100),
			Confidence:   f.confidence(fit, h),
		}
	}

	slope := fit.Slope
	return out, &slope
}

func (f *RegressionForecaster) confidence(fit OLSFit, horizon int) float64 {
	normRMSE := fit.RMSE / noiseCeiling
	if normRMSE > 1 {
		normRMSE = 1
	}
	conf := 0.95 - 0.30*normRMSE

	slopePenalty := math.Abs(fit.Slope) * slopePenaltyRate
	if slopePenalty > slopePenaltyCap {
		slopePenalty = slopePenaltyCap
	}
	conf -= slopePenalty

	horizonPenalty := horizonPenaltyRate * float64(horizon)
	if horizonPenalty > horizonPenaltyCap {
		horizonPenalty = horizonPenaltyCap
	}
	conf -= horizonPenalty

	if horizon <= shortHorizonMaxHour {
		conf += shortHorizonBoost
	}

	return clamp(conf, confidenceFloor, confidenceCeil)
}

func (f *RegressionForecaster) flatFallback(series []float64) []HorizonForecast {
	value := FlatFallbackValue
	if len(series) > 0 {
		value = series[len(series)-1]
	}

	out := make([]HorizonForecast, len(f.horizons))
	for i, h := range f.horizons {
		conf := fallbackBaseConfidence - fallbackDecayRate*float64(h)
		if conf < confidenceFloor {
			conf = confidenceFloor
		}
		out[i] = HorizonForecast{
			HorizonHours: h,
			Value:        clamp(value, 0, 100),
			Confidence:   conf,
		}
	}
	return out
}
