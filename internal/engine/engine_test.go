package engine_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/alerting"
	"github.com/havenhealth/ops-engine/internal/engine"
	"github.com/havenhealth/ops-engine/internal/forecast"
	"github.com/havenhealth/ops-engine/internal/metrics"
	"github.com/havenhealth/ops-engine/pkg/clock"
	"github.com/havenhealth/ops-engine/pkg/models"
	"github.com/havenhealth/ops-engine/pkg/random"
)

var engineStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*engine.Engine, *alerting.Manager, *clock.Fake) {
	t.Helper()

	fake := clock.NewFake(engineStart)
	alerts := alerting.NewManager(alerting.Config{}, fake, random.NewSeeded(7), nil)
	t.Cleanup(alerts.Dispose)

	eng := engine.New(engine.Config{}, alerts, nil, fake, random.NewSeeded(7))
	return eng, alerts, fake
}

func healthySnapshot(ts time.Time) *models.Snapshot {
	return &models.Snapshot{
		Timestamp: ts,
		Stations: []models.OxygenStationReading{
			{StationID: "st-1", Name: "ICU Wing A", Level: 88},
			{StationID: "st-2", Name: "ICU Wing B", Level: 84},
		},
		Beds:      models.BedCounts{Total: 120, Occupied: 80, Available: 35, Cleaning: 5},
		Staff:     models.StaffReading{OnDuty: 42, WorkloadPercent: 62},
		Emergency: models.EmergencyReading{ActiveCases: 3, WaitingPatients: 5},
	}
}

func TestEngine_IngestAppendsHistory(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	for i := 0; i < 5; i++ {
		eng.Ingest(healthySnapshot(engineStart.Add(time.Duration(i) * time.Hour)))
	}

	hist := eng.History(0)
	require.Len(t, hist, 5)
	assert.InDelta(t, 86.0, hist[0].OxygenDemand, 1e-9)
	assert.InDelta(t, float64(80)/120*100, hist[0].BedOccupancy, 1e-9)
}

func TestEngine_IngestEvaluatesBreaches(t *testing.T) {
	eng, alerts, _ := newTestEngine(t)

	snap := healthySnapshot(engineStart)
	snap.Beds.Available = 2
	eng.Ingest(snap)

	list := alerts.Alerts()
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryBeds, list[0].Category)
}

func TestEngine_IngestNilIsNoop(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Ingest(nil)
	assert.Empty(t, eng.History(0))
}

func TestEngine_ForecastShape(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	for i := 0; i < 10; i++ {
		eng.Ingest(healthySnapshot(engineStart.Add(time.Duration(i) * time.Hour)))
	}

	tests := []struct {
		resource models.ResourceType
		steps    int
	}{
		{models.ResourceOxygen, forecast.DefaultHorizonHours},
		{models.ResourceBeds, forecast.BedsHorizonHours},
		{models.ResourceStaff, forecast.DefaultHorizonHours},
		{models.ResourceEmergency, forecast.DefaultHorizonHours},
	}

	for _, tt := range tests {
		t.Run(string(tt.resource), func(t *testing.T) {
			prediction, err := eng.Forecast(tt.resource)
			require.NoError(t, err)

			assert.Equal(t, tt.resource, prediction.ResourceType)
			assert.Len(t, prediction.Predictions, tt.steps)
			assert.NotEmpty(t, prediction.Recommendations)
			assert.NotEmpty(t, prediction.RiskLevel)
			assert.GreaterOrEqual(t, prediction.OptimizationScore, 0)
			assert.LessOrEqual(t, prediction.OptimizationScore, 100)
			assert.Equal(t, engineStart, prediction.GeneratedAt)
		})
	}
}

func TestEngine_ForecastCurrentValuePerResource(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Ingest(healthySnapshot(engineStart))

	oxygen, err := eng.Forecast(models.ResourceOxygen)
	require.NoError(t, err)
	assert.InDelta(t, 86.0, oxygen.CurrentValue, 1e-9)

	beds, err := eng.Forecast(models.ResourceBeds)
	require.NoError(t, err)
	assert.Equal(t, 35.0, beds.CurrentValue)

	staff, err := eng.Forecast(models.ResourceStaff)
	require.NoError(t, err)
	assert.Equal(t, 62.0, staff.CurrentValue)

	emergency, err := eng.Forecast(models.ResourceEmergency)
	require.NoError(t, err)
	assert.Equal(t, 3.0, emergency.CurrentValue)
}

func TestEngine_OxygenCarriesRegressionForecasts(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	for i := 0; i < 10; i++ {
		eng.Ingest(healthySnapshot(engineStart.Add(time.Duration(i) * time.Hour)))
	}

	oxygen, err := eng.Forecast(models.ResourceOxygen)
	require.NoError(t, err)
	require.Len(t, oxygen.RegressionForecasts, len(forecast.DefaultHorizons))
	assert.NotNil(t, oxygen.RegressionSlope)

	beds, err := eng.Forecast(models.ResourceBeds)
	require.NoError(t, err)
	assert.Empty(t, beds.RegressionForecasts)
	assert.Nil(t, beds.RegressionSlope)
}

func TestEngine_OxygenRegressionFallbackWithoutHistory(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	oxygen, err := eng.Forecast(models.ResourceOxygen)
	require.NoError(t, err)
	require.Len(t, oxygen.RegressionForecasts, len(forecast.DefaultHorizons))
	assert.Nil(t, oxygen.RegressionSlope)
}

func TestEngine_ForecastInvalidResource(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.Forecast(models.ResourceType("ventilators"))
	assert.ErrorIs(t, err, models.ErrInvalidResourceType)
}

func TestEngine_RunCycleCoversAllResources(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Ingest(healthySnapshot(engineStart))

	set := eng.RunCycle()
	require.Len(t, set, len(models.AllResourceTypes()))

	latest := eng.Latest()
	require.Len(t, latest, len(set))
	for _, resource := range models.AllResourceTypes() {
		assert.Contains(t, latest, resource)
	}
}

func TestEngine_LatestReturnsCopy(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Ingest(healthySnapshot(engineStart))
	eng.RunCycle()

	latest := eng.Latest()
	prediction := latest[models.ResourceOxygen]
	prediction.Predictions[0].Value = -999
	latest[models.ResourceOxygen] = prediction

	fresh := eng.Latest()
	assert.NotEqual(t, -999.0, fresh[models.ResourceOxygen].Predictions[0].Value)
}

func TestEngine_StartCyclesOnForecastInterval(t *testing.T) {
	eng, _, fake := newTestEngine(t)
	eng.Ingest(healthySnapshot(engineStart))

	cycles := make(chan struct{}, 8)
	unsubscribe := eng.Subscribe(func(models.PredictionSet) {
		cycles <- struct{}{}
	})
	defer unsubscribe()

	<-cycles // immediate subscription callback

	eng.Start()
	defer eng.Stop()

	waitCycle(t, cycles) // first cycle runs on start

	fake.Advance(60 * time.Second)
	waitCycle(t, cycles)

	fake.Advance(59 * time.Second)
	select {
	case <-cycles:
		t.Fatal("cycle ran before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}
}

func waitCycle(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a forecast cycle")
	}
}

func TestEngine_RunCycleExportsMetrics(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Ingest(healthySnapshot(engineStart))
	eng.RunCycle()

	rec := httptest.NewRecorder()
	metrics.Get().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "opsengine_resource_value{resource=\"beds\"} 35\n")
	assert.Contains(t, body, "opsengine_risk_level{resource=\"oxygen\"}")
	assert.Contains(t, body, "opsengine_optimization_score{resource=\"staff\"}")
	assert.Contains(t, body, "opsengine_forecast_cycles_total")
	assert.NotContains(t, body, "opsengine_forecast_cycles_total 0\n")
}

func TestEngine_SubscribeImmediateAndOnCycle(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Ingest(healthySnapshot(engineStart))

	var calls []models.PredictionSet
	unsubscribe := eng.Subscribe(func(set models.PredictionSet) {
		calls = append(calls, set)
	})

	// Immediate callback with the (still empty) current set.
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0])

	eng.RunCycle()
	require.Len(t, calls, 2)
	assert.Len(t, calls[1], len(models.AllResourceTypes()))

	unsubscribe()
	unsubscribe() // second call is a no-op

	eng.RunCycle()
	assert.Len(t, calls, 2)
}
