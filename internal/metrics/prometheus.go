package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/havenhealth/ops-engine/internal/logger"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	snapshotsTotal      int64
	collectionErrors    int64
	forecastCyclesTotal int64
	alertsCreatedTotal  map[string]int64 // category -> count
	alertsResolvedTotal map[string]int64 // category -> count
	executionsTotal     map[string]int64 // outcome -> count

	// Gauges
	riskLevel         map[string]int     // resource -> severity
	optimizationScore map[string]int     // resource -> score
	currentValue      map[string]float64 // resource -> last observed value
	activeAlerts      int
	breakerState      map[string]int // 0=closed, 1=open, 2=half-open

	// Histograms (simplified - just track last values)
	collectionLatency time.Duration
	forecastLatency   time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			alertsCreatedTotal:  make(map[string]int64),
			alertsResolvedTotal: make(map[string]int64),
			executionsTotal:     make(map[string]int64),
			riskLevel:           make(map[string]int),
			optimizationScore:   make(map[string]int),
			currentValue:        make(map[string]float64),
			breakerState:        make(map[string]int),
		}
	})
	return instance
}

func (m *Metrics) IncSnapshots() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotsTotal++
}

func (m *Metrics) IncCollectionErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionErrors++
}

func (m *Metrics) IncForecastCycles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastCyclesTotal++
}

func (m *Metrics) IncAlertsCreated(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertsCreatedTotal[category]++
}

func (m *Metrics) IncAlertsResolved(category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertsResolvedTotal[category]++
}

func (m *Metrics) IncExecutions(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executionsTotal[outcome]++
}

func (m *Metrics) SetRiskLevel(resource string, severity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riskLevel[resource] = severity
}

func (m *Metrics) SetOptimizationScore(resource string, score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimizationScore[resource] = score
}

func (m *Metrics) SetCurrentValue(resource string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentValue[resource] = value
}

func (m *Metrics) SetActiveAlerts(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeAlerts = count
}

func (m *Metrics) SetBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakerState[name] = state
}

func (m *Metrics) SetCollectionLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionLatency = d
}

func (m *Metrics) SetForecastLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastLatency = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		writeMetric(w, "opsengine_snapshots_total", nil, float64(m.snapshotsTotal))
		writeMetric(w, "opsengine_collection_errors_total", nil, float64(m.collectionErrors))
		writeMetric(w, "opsengine_forecast_cycles_total", nil, float64(m.forecastCyclesTotal))

		for category, count := range m.alertsCreatedTotal {
			writeMetric(w, "opsengine_alerts_created_total", map[string]string{"category": category}, float64(count))
		}

		for category, count := range m.alertsResolvedTotal {
			writeMetric(w, "opsengine_alerts_resolved_total", map[string]string{"category": category}, float64(count))
		}

		for outcome, count := range m.executionsTotal {
			writeMetric(w, "opsengine_recommendation_executions_total", map[string]string{"outcome": outcome}, float64(count))
		}

		for resource, severity := range m.riskLevel {
			writeMetric(w, "opsengine_risk_level", map[string]string{"resource": resource}, float64(severity))
		}

		for resource, score := range m.optimizationScore {
			writeMetric(w, "opsengine_optimization_score", map[string]string{"resource": resource}, float64(score))
		}

		for resource, value := range m.currentValue {
			writeMetric(w, "opsengine_resource_value", map[string]string{"resource": resource}, value)
		}

		writeMetric(w, "opsengine_active_alerts", nil, float64(m.activeAlerts))

		for name, state := range m.breakerState {
			writeMetric(w, "opsengine_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}

		writeMetric(w, "opsengine_collection_latency_ms", nil, float64(m.collectionLatency.Milliseconds()))
		writeMetric(w, "opsengine_forecast_latency_ms", nil, float64(m.forecastLatency.Milliseconds()))
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}
