// Package alerting owns the alert collection and its lifecycle:
// creation with per-breach-key deduplication, capacity eviction,
// idempotent resolution, timed auto-resolution, and probabilistic
// execution of automatable recommendations.
package alerting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/havenhealth/ops-engine/internal/events"
	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/internal/metrics"
	"github.com/havenhealth/ops-engine/pkg/clock"
	"github.com/havenhealth/ops-engine/pkg/models"
	"github.com/havenhealth/ops-engine/pkg/random"
)

var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrNotExecutable = errors.New("recommendation is not executable")
)

type Config struct {
	Capacity          int
	AutoResolveDelay  time.Duration
	ExecutionDelay    time.Duration
	SweepInterval     time.Duration
	OptimizationFloor int
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 50
	}
	if c.AutoResolveDelay <= 0 {
		c.AutoResolveDelay = 5 * time.Minute
	}
	if c.ExecutionDelay <= 0 {
		c.ExecutionDelay = 2 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 60 * time.Second
	}
	if c.OptimizationFloor <= 0 {
		c.OptimizationFloor = optimizationFloorDef
	}
	return c
}

// Manager exclusively owns the alert collection. Alerts are kept
// newest-first; when the capacity is exceeded the oldest entries are
// dropped silently. Subscribers only ever receive deep copies.
type Manager struct {
	cfg   Config
	clock clock.Clock
	rand  random.Source
	pub   *events.Publisher

	mu         sync.Mutex
	alerts     []*models.Alert
	keyIndex   map[models.BreachKey]string // active breach key -> alert ID
	alertKeys  map[string]models.BreachKey // alert ID -> breach key
	autoTimers map[string]clock.Timer
	subs       map[int]func([]models.Alert)
	nextSubID  int
	disposed   bool

	sweepCancel context.CancelFunc
	sweepWG     sync.WaitGroup
}

func NewManager(cfg Config, clk clock.Clock, rnd random.Source, pub *events.Publisher) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	if rnd == nil {
		rnd = random.New()
	}
	return &Manager{
		cfg:        cfg.withDefaults(),
		clock:      clk,
		rand:       rnd,
		pub:        pub,
		keyIndex:   make(map[models.BreachKey]string),
		alertKeys:  make(map[string]models.BreachKey),
		autoTimers: make(map[string]clock.Timer),
		subs:       make(map[int]func([]models.Alert)),
	}
}

// Raise creates an alert for a breach key unless an active
// (non-resolved) alert already exists for that key. This is the core
// anti-flood invariant: at most one active alert per logical breach
// key. Reports whether a new alert was created.
func (m *Manager) Raise(key models.BreachKey, alert models.Alert) bool {
	m.mu.Lock()

	if m.disposed {
		m.mu.Unlock()
		return false
	}

	if _, active := m.keyIndex[key]; active {
		m.mu.Unlock()
		return false
	}

	if alert.ID == "" {
		alert.ID = string(key) + "-" + models.NewUUID()[:8]
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = m.clock.Now()
	}

	stored := alert.Clone()
	m.alerts = append([]*models.Alert{&stored}, m.alerts...)
	m.keyIndex[key] = stored.ID
	m.alertKeys[stored.ID] = key
	m.evictLocked()

	if stored.AutoResolve {
		id := stored.ID
		m.autoTimers[id] = m.clock.AfterFunc(m.cfg.AutoResolveDelay, func() {
			// Resolve is idempotent, so a timer firing after a manual
			// resolution is harmless.
			_ = m.Resolve(id)
		})
	}

	snapshot, listeners := m.snapshotLocked()
	created := stored.Clone()
	active := m.activeCountLocked()
	m.mu.Unlock()

	logger.WithAlert(created.ID).Infof("Alert created: %s (key=%s, priority=%d)", created.Title, key, created.Priority)
	metrics.Get().IncAlertsCreated(string(created.Category))
	metrics.Get().SetActiveAlerts(active)
	m.pub.AlertCreated(created)
	notify(listeners, snapshot)
	return true
}

// evictLocked drops the oldest alerts beyond capacity. Evicted alerts
// vanish without notification; their breach keys become free again.
func (m *Manager) evictLocked() {
	if len(m.alerts) <= m.cfg.Capacity {
		return
	}

	evicted := m.alerts[m.cfg.Capacity:]
	m.alerts = m.alerts[:m.cfg.Capacity]

	for _, a := range evicted {
		if key, ok := m.alertKeys[a.ID]; ok {
			if m.keyIndex[key] == a.ID {
				delete(m.keyIndex, key)
			}
			delete(m.alertKeys, a.ID)
		}
		if t, ok := m.autoTimers[a.ID]; ok {
			t.Stop()
			delete(m.autoTimers, a.ID)
		}
	}
}

// Acknowledge flips the acknowledged flag. Acknowledging twice, or
// acknowledging a resolved alert, is a no-op.
func (m *Manager) Acknowledge(id string) error {
	m.mu.Lock()

	alert := m.findLocked(id)
	if alert == nil {
		m.mu.Unlock()
		return ErrAlertNotFound
	}

	if alert.Acknowledged || alert.Resolved {
		m.mu.Unlock()
		return nil
	}

	alert.Acknowledged = true
	updated := alert.Clone()
	snapshot, listeners := m.snapshotLocked()
	m.mu.Unlock()

	logger.WithAlert(id).Info("Alert acknowledged")
	m.pub.AlertAcknowledged(updated)
	notify(listeners, snapshot)
	return nil
}

// Resolve marks an alert resolved. Resolved is terminal and
// idempotent: resolving an already-resolved alert changes nothing and
// emits no notifications.
func (m *Manager) Resolve(id string) error {
	m.mu.Lock()

	alert := m.findLocked(id)
	if alert == nil {
		m.mu.Unlock()
		return ErrAlertNotFound
	}

	if alert.Resolved {
		m.mu.Unlock()
		return nil
	}

	alert.Resolved = true
	alert.Acknowledged = true

	if key, ok := m.alertKeys[id]; ok {
		if m.keyIndex[key] == id {
			delete(m.keyIndex, key)
		}
		delete(m.alertKeys, id)
	}
	if t, ok := m.autoTimers[id]; ok {
		t.Stop()
		delete(m.autoTimers, id)
	}

	updated := alert.Clone()
	snapshot, listeners := m.snapshotLocked()
	active := m.activeCountLocked()
	m.mu.Unlock()

	logger.WithAlert(id).Info("Alert resolved")
	metrics.Get().IncAlertsResolved(string(updated.Category))
	metrics.Get().SetActiveAlerts(active)
	m.pub.AlertResolved(updated)
	notify(listeners, snapshot)
	return nil
}

// ExecuteRecommendation schedules an automatable recommendation. After
// the fixed execution delay the parent alert resolves with probability
// successRate/100; on failure the alert stays active and no retry is
// scheduled. The outcome is only observable through the alert
// subscription.
func (m *Manager) ExecuteRecommendation(alertID, recommendationID string) error {
	m.mu.Lock()

	alert := m.findLocked(alertID)
	if alert == nil {
		m.mu.Unlock()
		return ErrAlertNotFound
	}

	var rec *models.Recommendation
	for i := range alert.Recommendations {
		if alert.Recommendations[i].ID == recommendationID {
			rec = &alert.Recommendations[i]
			break
		}
	}
	if rec == nil || !rec.Automation {
		m.mu.Unlock()
		return ErrNotExecutable
	}

	successRate := rec.SuccessRate
	m.mu.Unlock()

	logger.WithAlert(alertID).Infof("Executing recommendation %s (success rate %d%%)", recommendationID, successRate)

	m.clock.AfterFunc(m.cfg.ExecutionDelay, func() {
		success := m.rand.Float64()*100 < float64(successRate)
		outcome := "failure"
		if success {
			outcome = "success"
		}
		metrics.Get().IncExecutions(outcome)
		m.pub.RecommendationExecuted(alertID, recommendationID, success)
		if success {
			_ = m.Resolve(alertID)
		} else {
			logger.WithAlert(alertID).Warnf("Recommendation %s failed, alert remains active", recommendationID)
		}
	})

	return nil
}

// EvaluateSnapshot derives breaches from a raw telemetry snapshot and
// raises the corresponding alerts, subject to dedup.
func (m *Manager) EvaluateSnapshot(snap *models.Snapshot) {
	for _, station := range snap.Stations {
		if station.Level < oxygenLevelCritical {
			m.Raise(oxygenKey(station.StationID), oxygenStationAlert(station))
		}
	}

	if snap.Beds.Available < bedsAvailableMin {
		m.Raise(bedsCriticalKey, bedsCriticalAlert(snap.Beds))
	}

	if snap.Staff.WorkloadPercent > staffWorkloadMax {
		m.Raise(staffOverloadKey, staffOverloadAlert(snap.Staff))
	}

	if snap.Emergency.ActiveCases > emergencySurgeCases {
		m.Raise(emergencySurgeKey, emergencySurgeAlert(snap.Emergency))
	}
}

// EvaluatePredictions raises predictive breaches: any resource at
// critical risk, and an overall optimization score below the floor.
func (m *Manager) EvaluatePredictions(set models.PredictionSet) {
	if len(set) == 0 {
		return
	}

	var scoreTotal int
	for _, prediction := range set {
		scoreTotal += prediction.OptimizationScore
		if prediction.RiskLevel == models.RiskCritical {
			m.Raise(predictiveKey(prediction.ResourceType), predictiveRiskAlert(prediction))
		}
	}

	overall := scoreTotal / len(set)
	if overall < m.cfg.OptimizationFloor {
		m.Raise(optimizationLowKey, optimizationLowAlert(overall, m.cfg.OptimizationFloor))
	}
}

// StartSweep re-derives predictive breaches from the latest prediction
// set on a fixed cadence until Dispose is called.
func (m *Manager) StartSweep(latest func() models.PredictionSet) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.disposed || m.sweepCancel != nil {
		m.mu.Unlock()
		cancel()
		return
	}
	m.sweepCancel = cancel
	m.mu.Unlock()

	ticker := m.clock.NewTicker(m.cfg.SweepInterval)

	m.sweepWG.Add(1)
	go func() {
		defer m.sweepWG.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				m.EvaluatePredictions(latest())
			}
		}
	}()

	logger.Infof("Predictive alert sweep started (interval %s)", m.cfg.SweepInterval)
}

// Alerts returns a deep copy of the collection, newest first.
func (m *Manager) Alerts() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyAlertsLocked()
}

// Get returns a copy of one alert.
func (m *Manager) Get(id string) (models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert := m.findLocked(id)
	if alert == nil {
		return models.Alert{}, ErrAlertNotFound
	}
	return alert.Clone(), nil
}

// Subscribe registers a callback that is invoked immediately with the
// current alert list and again after every mutation. The returned
// function unsubscribes; calling it twice is a no-op.
func (m *Manager) Subscribe(fn func([]models.Alert)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	snapshot := m.copyAlertsLocked()
	m.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Dispose cancels the sweep and all outstanding timers. The manager
// accepts no new alerts afterwards.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true

	for id, t := range m.autoTimers {
		t.Stop()
		delete(m.autoTimers, id)
	}

	cancel := m.sweepCancel
	m.sweepCancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.sweepWG.Wait()

	logger.Info("Alert manager disposed")
}

func (m *Manager) findLocked(id string) *models.Alert {
	for _, a := range m.alerts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (m *Manager) activeCountLocked() int {
	var n int
	for _, a := range m.alerts {
		if !a.Resolved {
			n++
		}
	}
	return n
}

func (m *Manager) copyAlertsLocked() []models.Alert {
	out := make([]models.Alert, len(m.alerts))
	for i, a := range m.alerts {
		out[i] = a.Clone()
	}
	return out
}

// snapshotLocked captures the alert list and subscriber set so the
// callbacks can run outside the lock: subscribers always observe a
// fully-updated snapshot, never a partial mutation.
func (m *Manager) snapshotLocked() ([]models.Alert, []func([]models.Alert)) {
	snapshot := m.copyAlertsLocked()
	listeners := make([]func([]models.Alert), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	return snapshot, listeners
}

func notify(listeners []func([]models.Alert), snapshot []models.Alert) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
