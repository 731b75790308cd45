// Package engine wires telemetry ingestion, the historical series
// store, the forecasters, and the classifiers into the per-resource
// forecasting cycle, and owns the prediction subscription fabric.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/havenhealth/ops-engine/internal/alerting"
	"github.com/havenhealth/ops-engine/internal/events"
	"github.com/havenhealth/ops-engine/internal/forecast"
	"github.com/havenhealth/ops-engine/internal/history"
	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/internal/metrics"
	"github.com/havenhealth/ops-engine/internal/optimize"
	"github.com/havenhealth/ops-engine/internal/recommend"
	"github.com/havenhealth/ops-engine/internal/risk"
	"github.com/havenhealth/ops-engine/pkg/clock"
	"github.com/havenhealth/ops-engine/pkg/models"
	"github.com/havenhealth/ops-engine/pkg/random"
)

type Config struct {
	ForecastInterval   time.Duration
	HistoryRetention   int
	RegressionWindow   int
	RegressionHorizons []int
}

func (c Config) withDefaults() Config {
	if c.ForecastInterval <= 0 {
		c.ForecastInterval = 60 * time.Second
	}
	if c.HistoryRetention <= 0 {
		c.HistoryRetention = history.DefaultRetention
	}
	if c.RegressionWindow <= 0 {
		c.RegressionWindow = forecast.RegressionWindow
	}
	if len(c.RegressionHorizons) == 0 {
		c.RegressionHorizons = forecast.DefaultHorizons
	}
	return c
}

type Engine struct {
	cfg        Config
	store      *history.Store
	features   *forecast.FeaturePredictor
	regression *forecast.RegressionForecaster
	alerts     *alerting.Manager
	pub        *events.Publisher
	clock      clock.Clock

	mu           sync.RWMutex
	lastSnapshot *models.Snapshot
	latest       models.PredictionSet
	subs         map[int]func(models.PredictionSet)
	nextSubID    int

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	runMu   sync.Mutex
}

func New(cfg Config, alerts *alerting.Manager, pub *events.Publisher, clk clock.Clock, rnd random.Source) *Engine {
	cfg = cfg.withDefaults()
	if clk == nil {
		clk = clock.Real()
	}

	return &Engine{
		cfg:        cfg,
		store:      history.NewStore(cfg.HistoryRetention),
		features:   forecast.NewFeaturePredictor(rnd),
		regression: forecast.NewRegressionForecaster(cfg.RegressionWindow, cfg.RegressionHorizons),
		alerts:     alerts,
		pub:        pub,
		clock:      clk,
		latest:     make(models.PredictionSet),
		subs:       make(map[int]func(models.PredictionSet)),
	}
}

// Ingest consumes one telemetry snapshot: appends the derived history
// row, publishes the event, and evaluates immediate breaches. The
// source cadence is externally controlled; no fixed rate is assumed.
func (e *Engine) Ingest(snap *models.Snapshot) {
	if snap == nil {
		return
	}

	point := models.NewHistoricalPoint(snap)
	e.store.Append(point)

	e.mu.Lock()
	e.lastSnapshot = snap
	e.mu.Unlock()

	e.pub.SnapshotReceived(snap)

	if e.alerts != nil {
		e.alerts.EvaluateSnapshot(snap)
	}
}

// Forecast computes the full prediction aggregate for one resource.
func (e *Engine) Forecast(resource models.ResourceType) (models.ResourcePrediction, error) {
	if _, err := models.ParseResourceType(string(resource)); err != nil {
		return models.ResourcePrediction{}, err
	}

	hist := e.store.Tail(0)
	current := e.currentValue(resource, hist)
	now := e.clock.Now()

	points, err := e.features.Project(resource, current, hist, now)
	if err != nil {
		return models.ResourcePrediction{}, err
	}

	riskLevel, err := risk.Assess(resource, points)
	if err != nil {
		return models.ResourcePrediction{}, err
	}

	score, err := optimize.Score(resource, points)
	if err != nil {
		return models.ResourcePrediction{}, err
	}

	prediction := models.ResourcePrediction{
		ResourceType:      resource,
		CurrentValue:      current,
		Predictions:       points,
		Trend:             forecast.TrendOf(points),
		RiskLevel:         riskLevel,
		Recommendations:   recommend.Actions(resource, riskLevel),
		OptimizationScore: score,
		GeneratedAt:       now,
	}

	if resource == models.ResourceOxygen {
		series := make([]float64, len(hist))
		for i, p := range hist {
			series[i] = p.OxygenDemand
		}

		forecasts, slope := e.regression.Forecast(series)
		prediction.RegressionForecasts = make([]models.RegressionForecast, len(forecasts))
		for i, f := range forecasts {
			prediction.RegressionForecasts[i] = models.RegressionForecast{
				HorizonHours: f.HorizonHours,
				Value:        f.Value,
				Confidence:   f.Confidence,
			}
		}
		prediction.RegressionSlope = slope
	}

	return prediction, nil
}

// RunCycle recomputes every resource's prediction wholesale, replaces
// the published set, and notifies subscribers.
func (e *Engine) RunCycle() models.PredictionSet {
	started := time.Now()
	set := make(models.PredictionSet)

	for _, resource := range models.AllResourceTypes() {
		prediction, err := e.Forecast(resource)
		if err != nil {
			logger.WithResource(string(resource)).Errorf("Forecast failed: %v", err)
			e.pub.Error(string(resource), "Forecast cycle failed", err)
			continue
		}
		set[resource] = prediction
		e.pub.PredictionUpdated(resource, prediction)
	}

	mtr := metrics.Get()
	mtr.IncForecastCycles()
	mtr.SetForecastLatency(time.Since(started))
	for resource, prediction := range set {
		mtr.SetRiskLevel(string(resource), riskSeverity(prediction.RiskLevel))
		mtr.SetOptimizationScore(string(resource), prediction.OptimizationScore)
		mtr.SetCurrentValue(string(resource), prediction.CurrentValue)
	}

	e.mu.Lock()
	e.latest = set
	listeners := make([]func(models.PredictionSet), 0, len(e.subs))
	for _, fn := range e.subs {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(set.Clone())
	}

	return set
}

// Latest returns a deep copy of the most recent prediction set.
func (e *Engine) Latest() models.PredictionSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest.Clone()
}

// History returns the most recent n derived telemetry rows.
func (e *Engine) History(n int) []models.HistoricalPoint {
	return e.store.Tail(n)
}

// Subscribe registers a prediction listener. The callback fires
// immediately with the current set, then after every forecast cycle.
// The returned function unsubscribes; double-unsubscribe is a no-op.
func (e *Engine) Subscribe(fn func(models.PredictionSet)) func() {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subs[id] = fn
	snapshot := e.latest.Clone()
	e.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Start launches the periodic forecast cycle.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return
	}
	e.running = true

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	ticker := e.clock.NewTicker(e.cfg.ForecastInterval)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer ticker.Stop()

		// Run immediately on start
		e.RunCycle()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				e.RunCycle()
			}
		}
	}()

	logger.Infof("Forecast engine started (interval %s)", e.cfg.ForecastInterval)
}

// Stop halts the forecast cycle and waits for it to exit.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if !e.running {
		return
	}
	e.running = false

	e.cancel()
	e.wg.Wait()

	logger.Info("Forecast engine stopped")
}

// riskSeverity maps the ordinal risk level onto the numeric gauge
// exported by the metrics handler.
func riskSeverity(level models.RiskLevel) int {
	switch level {
	case models.RiskCritical:
		return 3
	case models.RiskHigh:
		return 2
	case models.RiskMedium:
		return 1
	default:
		return 0
	}
}

// currentValue maps a resource to its latest raw reading, falling back
// to the history row when no snapshot has been seen. Missing inputs
// contribute zero; they cost confidence, never an error.
func (e *Engine) currentValue(resource models.ResourceType, hist []models.HistoricalPoint) float64 {
	e.mu.RLock()
	snap := e.lastSnapshot
	e.mu.RUnlock()

	if snap != nil {
		switch resource {
		case models.ResourceOxygen:
			return snap.OxygenDemand()
		case models.ResourceBeds:
			return float64(snap.Beds.Available)
		case models.ResourceStaff:
			return snap.Staff.WorkloadPercent
		case models.ResourceEmergency:
			return float64(snap.Emergency.ActiveCases)
		}
	}

	if len(hist) == 0 {
		return 0
	}

	last := hist[len(hist)-1]
	switch resource {
	case models.ResourceOxygen:
		return last.OxygenDemand
	case models.ResourceBeds:
		// Bed readings are counts, not percentages, on both paths.
		return last.BedsAvailable
	case models.ResourceStaff:
		return last.StaffWorkload
	case models.ResourceEmergency:
		return last.EmergencyCases
	default:
		return 0
	}
}
