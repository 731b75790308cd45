package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type HospitalSimConfig struct {
	Stations      int
	TotalBeds     int
	BaseOxygen    float64
	BaseOccupancy float64
	BaseWorkload  float64
	BaseCases     float64
	Variance      float64
}

type HospitalSim struct {
	stations      []stationSim
	totalBeds     int
	baseOxygen    float64
	baseOccupancy float64
	baseWorkload  float64
	baseCases     float64
	variance      float64
	pattern       Pattern
	surge         *Surge
	oxygenDrain   *OxygenDrain
	// How much oxygen draw follows overall activity (0.0 to 1.0).
	activityCoupling float64
	mu               sync.RWMutex
}

type stationSim struct {
	ID   string
	Name string
}

// Surge drives emergency cases and occupancy toward a target over a
// ramp-up window, holds them there for the duration, then releases.
type Surge struct {
	TargetCases    float64
	StartTime      time.Time
	Duration       time.Duration
	RampUp         time.Duration
	OriginalCases  float64
	OccupancyBoost float64
}

// OxygenDrain lowers station levels toward a target, simulating a
// supply problem rather than a demand spike.
type OxygenDrain struct {
	TargetLevel   float64
	StartTime     time.Time
	Duration      time.Duration
	RampUp        time.Duration
	OriginalLevel float64
}

var defaultStationNames = []string{
	"ICU Wing A", "ICU Wing B", "Emergency Ward", "Surgical Unit", "Recovery Ward",
}

func NewHospitalSim(cfg HospitalSimConfig) *HospitalSim {
	if cfg.Stations <= 0 {
		cfg.Stations = 3
	}
	if cfg.TotalBeds <= 0 {
		cfg.TotalBeds = 120
	}
	if cfg.BaseOxygen <= 0 {
		cfg.BaseOxygen = 85.0
	}
	if cfg.BaseOccupancy <= 0 {
		cfg.BaseOccupancy = 70.0
	}
	if cfg.BaseWorkload <= 0 {
		cfg.BaseWorkload = 65.0
	}
	if cfg.BaseCases <= 0 {
		cfg.BaseCases = 4.0
	}
	if cfg.Variance <= 0 {
		cfg.Variance = 5.0
	}

	sim := &HospitalSim{
		totalBeds:        cfg.TotalBeds,
		baseOxygen:       cfg.BaseOxygen,
		baseOccupancy:    cfg.BaseOccupancy,
		baseWorkload:     cfg.BaseWorkload,
		baseCases:        cfg.BaseCases,
		variance:         cfg.Variance,
		pattern:          PatternSteady,
		activityCoupling: 0.4,
		stations:         make([]stationSim, 0, cfg.Stations),
	}

	for i := 0; i < cfg.Stations; i++ {
		sim.stations = append(sim.stations, stationSim{
			ID:   models.NewUUID(),
			Name: defaultStationNames[i%len(defaultStationNames)],
		})
	}

	return sim
}

// Snapshot produces one telemetry reading reflecting the active
// pattern, surge, and drain state.
func (h *HospitalSim) Snapshot() *models.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	activity := h.pattern.Apply(h.baseOccupancy)
	cases := h.currentCases(activity)
	oxygenLevel := h.currentOxygen(activity)

	stations := make([]models.OxygenStationReading, 0, len(h.stations))
	for _, st := range h.stations {
		level := h.randomValue(oxygenLevel, h.variance/2)
		status := "operational"
		if level < 30 {
			status = "critical"
		} else if level < 50 {
			status = "degraded"
		}
		stations = append(stations, models.OxygenStationReading{
			StationID: st.ID,
			Name:      st.Name,
			Level:     level,
			FlowRate:  h.randomValue(12.0, 2.0),
			Pressure:  h.randomValue(50.0, 3.0),
			Status:    status,
		})
	}

	occupancy := activity
	if h.surge != nil {
		occupancy += h.surge.OccupancyBoost * h.surgeProgress()
	}
	if occupancy > 100 {
		occupancy = 100
	}

	occupied := int(float64(h.totalBeds) * occupancy / 100.0)
	if occupied > h.totalBeds {
		occupied = h.totalBeds
	}
	cleaning := rand.Intn(4)
	available := h.totalBeds - occupied - cleaning
	if available < 0 {
		available = 0
	}

	// Workload follows occupancy shifts at the coupling ratio.
	workload := h.baseWorkload + (occupancy-h.baseOccupancy)*h.activityCoupling
	workload = h.randomValue(workload, h.variance/2)

	return &models.Snapshot{
		Timestamp: time.Now(),
		Stations:  stations,
		Beds: models.BedCounts{
			Total:     h.totalBeds,
			Occupied:  occupied,
			Available: available,
			Cleaning:  cleaning,
		},
		Staff: models.StaffReading{
			OnDuty:          20 + int(workload/10),
			WorkloadPercent: workload,
		},
		Emergency: models.EmergencyReading{
			ActiveCases:     int(math.Round(cases)),
			WaitingPatients: rand.Intn(int(cases)+2) / 2,
		},
	}
}

func (h *HospitalSim) currentCases(activity float64) float64 {
	cases := h.baseCases * (activity / h.baseOccupancy)

	if h.surge != nil {
		elapsed := time.Since(h.surge.StartTime)
		if elapsed > h.surge.Duration {
			h.surge = nil
		} else if elapsed < h.surge.RampUp {
			progress := float64(elapsed) / float64(h.surge.RampUp)
			cases = h.surge.OriginalCases + (h.surge.TargetCases-h.surge.OriginalCases)*progress
		} else {
			cases = h.surge.TargetCases
		}
	}

	if cases < 0 {
		cases = 0
	}
	return cases
}

func (h *HospitalSim) currentOxygen(activity float64) float64 {
	// Higher activity draws reserves down at the coupling ratio.
	level := h.baseOxygen - (activity-h.baseOccupancy)*h.activityCoupling

	if h.oxygenDrain != nil {
		elapsed := time.Since(h.oxygenDrain.StartTime)
		if elapsed > h.oxygenDrain.Duration {
			h.oxygenDrain = nil
		} else if elapsed < h.oxygenDrain.RampUp {
			progress := float64(elapsed) / float64(h.oxygenDrain.RampUp)
			level = h.oxygenDrain.OriginalLevel + (h.oxygenDrain.TargetLevel-h.oxygenDrain.OriginalLevel)*progress
		} else {
			level = h.oxygenDrain.TargetLevel
		}
	}

	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return level
}

func (h *HospitalSim) surgeProgress() float64 {
	if h.surge == nil {
		return 0
	}
	elapsed := time.Since(h.surge.StartTime)
	if elapsed >= h.surge.RampUp {
		return 1
	}
	return float64(elapsed) / float64(h.surge.RampUp)
}

func (h *HospitalSim) randomValue(base, variance float64) float64 {
	value := base + (rand.Float64()*2-1)*variance
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return math.Round(value*100) / 100
}

func (h *HospitalSim) SetBaseOxygen(level float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.baseOxygen = level
}

func (h *HospitalSim) SetBaseOccupancy(percent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.baseOccupancy = percent
}

func (h *HospitalSim) SetBaseWorkload(percent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.baseWorkload = percent
}

func (h *HospitalSim) SetBaseCases(cases float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.baseCases = cases
}

func (h *HospitalSim) SetVariance(variance float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.variance = variance
}

func (h *HospitalSim) SetPattern(pattern Pattern) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pattern = pattern
}

func (h *HospitalSim) GetPattern() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pattern.Name()
}

func (h *HospitalSim) InjectSurge(targetCases, occupancyBoost float64, duration, rampUp time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.surge = &Surge{
		TargetCases:    targetCases,
		StartTime:      time.Now(),
		Duration:       duration,
		RampUp:         rampUp,
		OriginalCases:  h.baseCases,
		OccupancyBoost: occupancyBoost,
	}
}

func (h *HospitalSim) InjectOxygenDrain(targetLevel float64, duration, rampUp time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.oxygenDrain = &OxygenDrain{
		TargetLevel:   targetLevel,
		StartTime:     time.Now(),
		Duration:      duration,
		RampUp:        rampUp,
		OriginalLevel: h.baseOxygen,
	}
}

func (h *HospitalSim) SetActivityCoupling(coupling float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if coupling < 0 {
		coupling = 0
	}
	if coupling > 1 {
		coupling = 1
	}
	h.activityCoupling = coupling
}

func (h *HospitalSim) StationCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stations)
}

func (h *HospitalSim) Status() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	surgeInfo := map[string]interface{}{"active": false}
	if h.surge != nil {
		elapsed := time.Since(h.surge.StartTime)
		remaining := h.surge.Duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		surgeInfo = map[string]interface{}{
			"active":       true,
			"target_cases": h.surge.TargetCases,
			"remaining":    remaining.String(),
		}
	}

	drainInfo := map[string]interface{}{"active": false}
	if h.oxygenDrain != nil {
		elapsed := time.Since(h.oxygenDrain.StartTime)
		remaining := h.oxygenDrain.Duration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		drainInfo = map[string]interface{}{
			"active":       true,
			"target_level": h.oxygenDrain.TargetLevel,
			"remaining":    remaining.String(),
		}
	}

	return map[string]interface{}{
		"stations":          len(h.stations),
		"total_beds":        h.totalBeds,
		"base_oxygen":       h.baseOxygen,
		"base_occupancy":    h.baseOccupancy,
		"base_workload":     h.baseWorkload,
		"base_cases":        h.baseCases,
		"variance":          h.variance,
		"pattern":           h.pattern.Name(),
		"surge":             surgeInfo,
		"oxygen_drain":      drainInfo,
		"activity_coupling": h.activityCoupling,
	}
}
