package alerting_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/alerting"
	"github.com/havenhealth/ops-engine/internal/metrics"
	"github.com/havenhealth/ops-engine/pkg/clock"
	"github.com/havenhealth/ops-engine/pkg/models"
	"github.com/havenhealth/ops-engine/pkg/random"
)

var managerStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, rnd random.Source) (*alerting.Manager, *clock.Fake) {
	t.Helper()

	fake := clock.NewFake(managerStart)
	m := alerting.NewManager(alerting.Config{
		Capacity:          50,
		AutoResolveDelay:  5 * time.Minute,
		ExecutionDelay:    2 * time.Second,
		SweepInterval:     time.Minute,
		OptimizationFloor: 70,
	}, fake, rnd, nil)
	t.Cleanup(m.Dispose)
	return m, fake
}

func testAlert(title string) models.Alert {
	return models.Alert{
		Type:     models.AlertWarning,
		Category: models.CategoryStaff,
		Title:    title,
		Priority: 5,
	}
}

func TestManager_RaiseDeduplicatesByKey(t *testing.T) {
	m, _ := newTestManager(t, nil)

	assert.True(t, m.Raise("staff-overload", testAlert("first")))
	assert.False(t, m.Raise("staff-overload", testAlert("second")))

	alerts := m.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "first", alerts[0].Title)
}

func TestManager_AlertIDEncodesBreachKey(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.Raise("beds-critical", testAlert("shortage"))

	alerts := m.Alerts()
	require.Len(t, alerts, 1)
	assert.True(t, strings.HasPrefix(alerts[0].ID, "beds-critical-"))
	assert.Len(t, alerts[0].ID, len("beds-critical-")+8)
}

func TestManager_ResolvedKeyCanBeRaisedAgain(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.Raise("staff-overload", testAlert("first"))
	id := m.Alerts()[0].ID
	require.NoError(t, m.Resolve(id))

	assert.True(t, m.Raise("staff-overload", testAlert("second")))
	assert.Len(t, m.Alerts(), 2)
}

func TestManager_CapacityEvictsOldest(t *testing.T) {
	m, _ := newTestManager(t, nil)

	for i := 0; i < 60; i++ {
		key := models.BreachKey("breach-" + string(rune('a'+i%26)) + string(rune('a'+i/26)))
		m.Raise(key, testAlert("alert-"+key.String()))
	}

	alerts := m.Alerts()
	require.Len(t, alerts, 50)

	// Newest first: the last raised alert heads the list, and the ten
	// oldest are gone.
	assert.Equal(t, "alert-breach-hc", alerts[0].Title)
	for _, a := range alerts {
		assert.NotEqual(t, "alert-breach-aa", a.Title)
	}
}

func TestManager_EvictedKeyIsFreeAgain(t *testing.T) {
	fake := clock.NewFake(managerStart)
	m := alerting.NewManager(alerting.Config{Capacity: 2}, fake, nil, nil)
	defer m.Dispose()

	m.Raise("k1", testAlert("one"))
	m.Raise("k2", testAlert("two"))
	m.Raise("k3", testAlert("three"))

	// k1 was evicted, so its key no longer blocks a new alert.
	assert.True(t, m.Raise("k1", testAlert("one again")))
}

func TestManager_ResolveIsIdempotentAndTerminal(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.Raise("staff-overload", testAlert("overload"))
	id := m.Alerts()[0].ID

	require.NoError(t, m.Resolve(id))

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
	assert.True(t, got.Acknowledged)

	// Second resolve changes nothing.
	var notifications int
	unsubscribe := m.Subscribe(func([]models.Alert) { notifications++ })
	defer unsubscribe()
	require.Equal(t, 1, notifications)

	require.NoError(t, m.Resolve(id))
	assert.Equal(t, 1, notifications)
}

func TestManager_AcknowledgeIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.Raise("staff-overload", testAlert("overload"))
	id := m.Alerts()[0].ID

	require.NoError(t, m.Acknowledge(id))
	require.NoError(t, m.Acknowledge(id))

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)
	assert.False(t, got.Resolved)
}

func TestManager_UnknownAlert(t *testing.T) {
	m, _ := newTestManager(t, nil)

	assert.ErrorIs(t, m.Acknowledge("nope"), alerting.ErrAlertNotFound)
	assert.ErrorIs(t, m.Resolve("nope"), alerting.ErrAlertNotFound)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, alerting.ErrAlertNotFound)
}

func TestManager_AutoResolveFiresAfterDelay(t *testing.T) {
	m, fake := newTestManager(t, nil)

	a := testAlert("predicted risk")
	a.AutoResolve = true
	m.Raise("predictive-oxygen", a)
	id := m.Alerts()[0].ID

	fake.Advance(4 * time.Minute)
	got, err := m.Get(id)
	require.NoError(t, err)
	assert.False(t, got.Resolved)

	fake.Advance(time.Minute)
	got, err = m.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
}

func TestManager_ManualResolveCancelsAutoTimer(t *testing.T) {
	m, fake := newTestManager(t, nil)

	a := testAlert("predicted risk")
	a.AutoResolve = true
	m.Raise("predictive-oxygen", a)
	id := m.Alerts()[0].ID

	require.NoError(t, m.Resolve(id))
	assert.Equal(t, 0, fake.PendingTimers())

	// The timer firing later must not panic or renotify.
	fake.Advance(10 * time.Minute)
}

func TestManager_EvaluateSnapshotBedShortage(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.EvaluateSnapshot(&models.Snapshot{
		Timestamp: managerStart,
		Beds:      models.BedCounts{Total: 120, Occupied: 110, Available: 3, Cleaning: 7},
		Staff:     models.StaffReading{OnDuty: 40, WorkloadPercent: 60},
		Emergency: models.EmergencyReading{ActiveCases: 2},
	})

	alerts := m.Alerts()
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, models.AlertCritical, a.Type)
	assert.Equal(t, models.CategoryBeds, a.Category)
	assert.Equal(t, 8, a.Priority)
	assert.True(t, strings.HasPrefix(a.ID, "beds-critical-"))
	require.Len(t, a.Recommendations, 3)

	var automatable int
	for _, rec := range a.Recommendations {
		if rec.Automation {
			automatable++
		}
	}
	assert.Equal(t, 1, automatable)
}

func TestManager_EvaluateSnapshotMultipleBreaches(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.EvaluateSnapshot(&models.Snapshot{
		Timestamp: managerStart,
		Stations: []models.OxygenStationReading{
			{StationID: "st-1", Name: "ICU Wing A", Level: 25},
			{StationID: "st-2", Name: "ICU Wing B", Level: 80},
		},
		Beds:      models.BedCounts{Total: 120, Occupied: 60, Available: 60},
		Staff:     models.StaffReading{OnDuty: 30, WorkloadPercent: 95},
		Emergency: models.EmergencyReading{ActiveCases: 10},
	})

	alerts := m.Alerts()
	assert.Len(t, alerts, 3)

	categories := make(map[models.AlertCategory]bool)
	for _, a := range alerts {
		categories[a.Category] = true
	}
	assert.True(t, categories[models.CategoryOxygen])
	assert.True(t, categories[models.CategoryStaff])
	assert.True(t, categories[models.CategoryEmergency])
}

func TestManager_EvaluateSnapshotRepeatDoesNotFlood(t *testing.T) {
	m, _ := newTestManager(t, nil)

	snap := &models.Snapshot{
		Timestamp: managerStart,
		Beds:      models.BedCounts{Total: 120, Available: 2},
	}

	m.EvaluateSnapshot(snap)
	m.EvaluateSnapshot(snap)
	m.EvaluateSnapshot(snap)

	assert.Len(t, m.Alerts(), 1)
}

func TestManager_EvaluatePredictions(t *testing.T) {
	m, _ := newTestManager(t, nil)

	set := models.PredictionSet{
		models.ResourceOxygen: {
			ResourceType:      models.ResourceOxygen,
			RiskLevel:         models.RiskCritical,
			OptimizationScore: 40,
			Recommendations:   []string{"Activate backup oxygen supply immediately"},
		},
		models.ResourceBeds: {
			ResourceType:      models.ResourceBeds,
			RiskLevel:         models.RiskLow,
			OptimizationScore: 80,
		},
	}

	m.EvaluatePredictions(set)

	alerts := m.Alerts()
	require.Len(t, alerts, 2)

	categories := make(map[models.AlertCategory]bool)
	for _, a := range alerts {
		categories[a.Category] = true
		assert.True(t, a.AutoResolve)
	}
	// Critical oxygen risk plus overall score (40+80)/2 = 60 < 70.
	assert.True(t, categories[models.CategoryPredictive])
	assert.True(t, categories[models.CategoryOptimization])
}

func TestManager_EvaluatePredictionsHealthySet(t *testing.T) {
	m, _ := newTestManager(t, nil)

	set := models.PredictionSet{
		models.ResourceOxygen: {ResourceType: models.ResourceOxygen, RiskLevel: models.RiskLow, OptimizationScore: 90},
		models.ResourceBeds:   {ResourceType: models.ResourceBeds, RiskLevel: models.RiskMedium, OptimizationScore: 85},
	}

	m.EvaluatePredictions(set)
	assert.Empty(t, m.Alerts())
}

func TestManager_SweepRaisesOnInterval(t *testing.T) {
	m, fake := newTestManager(t, nil)

	set := models.PredictionSet{
		models.ResourceOxygen: {
			ResourceType:      models.ResourceOxygen,
			RiskLevel:         models.RiskCritical,
			OptimizationScore: 90,
		},
	}
	m.StartSweep(func() models.PredictionSet { return set })

	raised := make(chan int, 8)
	unsubscribe := m.Subscribe(func(alerts []models.Alert) {
		raised <- len(alerts)
	})
	defer unsubscribe()

	assert.Equal(t, 0, <-raised) // immediate callback, nothing raised yet

	fake.Advance(time.Minute)

	select {
	case n := <-raised:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the sweep to raise an alert")
	}

	list := m.Alerts()
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryPredictive, list[0].Category)
}

func TestManager_LifecycleExportsMetrics(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.Raise("staff-overload", testAlert("overloaded"))
	id := m.Alerts()[0].ID
	require.NoError(t, m.Resolve(id))

	rec := httptest.NewRecorder()
	metrics.Get().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "opsengine_alerts_created_total{category=\"staff\"}")
	assert.Contains(t, body, "opsengine_alerts_resolved_total{category=\"staff\"}")
	assert.Contains(t, body, "opsengine_active_alerts 0\n")
}

func TestManager_ExecuteRecommendationSuccess(t *testing.T) {
	// Draw 0.1 -> 10 < 88, the execution succeeds.
	m, fake := newTestManager(t, random.NewFixed(0.1))

	m.EvaluateSnapshot(&models.Snapshot{
		Timestamp: managerStart,
		Beds:      models.BedCounts{Total: 120, Available: 2, Cleaning: 5},
	})
	alerts := m.Alerts()
	require.Len(t, alerts, 1)
	id := alerts[0].ID

	require.NoError(t, m.ExecuteRecommendation(id, "expedite-cleaning"))

	// Outcome lands only after the execution delay.
	got, err := m.Get(id)
	require.NoError(t, err)
	assert.False(t, got.Resolved)

	fake.Advance(2 * time.Second)

	got, err = m.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Resolved)

	rec := httptest.NewRecorder()
	metrics.Get().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "opsengine_recommendation_executions_total{outcome=\"success\"}")
}

func TestManager_ExecuteRecommendationFailureKeepsAlertActive(t *testing.T) {
	// Draw 0.99 -> 99 >= 88, the execution fails.
	m, fake := newTestManager(t, random.NewFixed(0.99))

	m.EvaluateSnapshot(&models.Snapshot{
		Timestamp: managerStart,
		Beds:      models.BedCounts{Total: 120, Available: 2, Cleaning: 5},
	})
	id := m.Alerts()[0].ID

	require.NoError(t, m.ExecuteRecommendation(id, "expedite-cleaning"))
	fake.Advance(2 * time.Second)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.False(t, got.Resolved)
}

func TestManager_ExecuteRecommendationNotAutomatable(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.EvaluateSnapshot(&models.Snapshot{
		Timestamp: managerStart,
		Beds:      models.BedCounts{Total: 120, Available: 2},
	})
	id := m.Alerts()[0].ID

	// discharge-rounds exists but is not automatable.
	assert.ErrorIs(t, m.ExecuteRecommendation(id, "discharge-rounds"), alerting.ErrNotExecutable)
	assert.ErrorIs(t, m.ExecuteRecommendation(id, "no-such-rec"), alerting.ErrNotExecutable)
	assert.ErrorIs(t, m.ExecuteRecommendation("no-such-alert", "expedite-cleaning"), alerting.ErrAlertNotFound)
}

func TestManager_SubscribeImmediateAndOnMutation(t *testing.T) {
	m, _ := newTestManager(t, nil)
	m.Raise("k1", testAlert("existing"))

	var calls [][]models.Alert
	unsubscribe := m.Subscribe(func(alerts []models.Alert) {
		calls = append(calls, alerts)
	})

	// Immediate callback with the current list.
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	assert.Equal(t, "existing", calls[0][0].Title)

	m.Raise("k2", testAlert("new"))
	require.Len(t, calls, 2)
	assert.Len(t, calls[1], 2)

	unsubscribe()
	unsubscribe() // second call is a no-op

	m.Raise("k3", testAlert("after unsubscribe"))
	assert.Len(t, calls, 2)
}

func TestManager_SubscriberReceivesCopies(t *testing.T) {
	m, _ := newTestManager(t, nil)
	m.Raise("k1", testAlert("original"))

	var received []models.Alert
	unsubscribe := m.Subscribe(func(alerts []models.Alert) { received = alerts })
	defer unsubscribe()

	require.Len(t, received, 1)
	received[0].Title = "tampered"

	assert.Equal(t, "original", m.Alerts()[0].Title)
}

func TestManager_DisposeRejectsNewAlerts(t *testing.T) {
	fake := clock.NewFake(managerStart)
	m := alerting.NewManager(alerting.Config{}, fake, nil, nil)

	m.Dispose()
	assert.False(t, m.Raise("k1", testAlert("late")))
	assert.Empty(t, m.Alerts())

	// Dispose is itself idempotent.
	m.Dispose()
}
