package models

import (
	"math"
	"time"
)

// OxygenStationReading is one oxygen station's raw readings within a
// telemetry snapshot.
type OxygenStationReading struct {
	StationID string  `json:"station_id"`
	Name      string  `json:"name,omitempty"`
	Level     float64 `json:"level"`
	FlowRate  float64 `json:"flow_rate"`
	Pressure  float64 `json:"pressure_psi"`
	Status    string  `json:"status,omitempty"`
}

type BedCounts struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
	Cleaning  int `json:"cleaning"`
}

type StaffReading struct {
	OnDuty          int     `json:"on_duty"`
	WorkloadPercent float64 `json:"workload_percent"`
}

type EmergencyReading struct {
	ActiveCases     int `json:"active_cases"`
	WaitingPatients int `json:"waiting_patients"`
}

// Snapshot is one timestamped bundle of operational readings from the
// telemetry source. Immutable once received.
type Snapshot struct {
	Timestamp time.Time              `json:"timestamp"`
	Stations  []OxygenStationReading `json:"stations"`
	Beds      BedCounts              `json:"beds"`
	Staff     StaffReading           `json:"staff"`
	Emergency EmergencyReading       `json:"emergency"`
}

// OxygenDemand returns the mean station oxygen level. The name follows
// the operational dashboard convention: the value tracks reserve, but
// threshold checks treat it as consumption pressure, so lower is worse.
func (s *Snapshot) OxygenDemand() float64 {
	if len(s.Stations) == 0 {
		return 0
	}
	var total float64
	for _, st := range s.Stations {
		total += st.Level
	}
	return total / float64(len(s.Stations))
}

// BedOccupancyPercent returns occupied beds as a percentage of total.
func (s *Snapshot) BedOccupancyPercent() float64 {
	if s.Beds.Total == 0 {
		return 0
	}
	return float64(s.Beds.Occupied) / float64(s.Beds.Total) * 100
}

// HistoricalPoint is the derived, resource-agnostic row appended to the
// historical series store.
type HistoricalPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	OxygenDemand   float64   `json:"oxygen_demand"`
	BedOccupancy   float64   `json:"bed_occupancy"`
	BedsAvailable  float64   `json:"beds_available"`
	StaffWorkload  float64   `json:"staff_workload"`
	EmergencyCases float64   `json:"emergency_cases"`
	DayOfWeek      int       `json:"day_of_week"`
	Hour           int       `json:"hour"`
	Seasonality    float64   `json:"seasonality"`
}

// NewHistoricalPoint derives a series row from a raw snapshot.
func NewHistoricalPoint(snap *Snapshot) HistoricalPoint {
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return HistoricalPoint{
		Timestamp:      ts,
		OxygenDemand:   snap.OxygenDemand(),
		BedOccupancy:   snap.BedOccupancyPercent(),
		BedsAvailable:  float64(snap.Beds.Available),
		StaffWorkload:  snap.Staff.WorkloadPercent,
		EmergencyCases: float64(snap.Emergency.ActiveCases),
		DayOfWeek:      int(ts.Weekday()),
		Hour:           ts.Hour(),
		Seasonality:    SeasonalityFactor(ts.Hour()),
	}
}

// SeasonalityFactor is the sinusoidal time-of-day factor shared by the
// feature predictor and the derived history rows.
func SeasonalityFactor(hour int) float64 {
	return math.Sin(2 * math.Pi * float64(hour) / 24)
}
