package telemetry

import (
	"context"
	"math/rand"
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type MockSource struct {
	baseOxygen    float64
	baseOccupancy float64
	baseWorkload  float64
	baseCases     int
	stationCount  int
	variance      float64
	shouldFail    bool
	failureError  error
}

type MockSourceConfig struct {
	BaseOxygen    float64
	BaseOccupancy float64
	BaseWorkload  float64
	BaseCases     int
	StationCount  int
	Variance      float64
}

func NewMockSource(cfg MockSourceConfig) *MockSource {
	baseOxygen := cfg.BaseOxygen
	if baseOxygen == 0 {
		baseOxygen = 85.0
	}

	baseOccupancy := cfg.BaseOccupancy
	if baseOccupancy == 0 {
		baseOccupancy = 70.0
	}

	baseWorkload := cfg.BaseWorkload
	if baseWorkload == 0 {
		baseWorkload = 65.0
	}

	baseCases := cfg.BaseCases
	if baseCases == 0 {
		baseCases = 4
	}

	stationCount := cfg.StationCount
	if stationCount == 0 {
		stationCount = 3
	}

	variance := cfg.Variance
	if variance == 0 {
		variance = 5.0
	}

	return &MockSource{
		baseOxygen:    baseOxygen,
		baseOccupancy: baseOccupancy,
		baseWorkload:  baseWorkload,
		baseCases:     baseCases,
		stationCount:  stationCount,
		variance:      variance,
	}
}

func (s *MockSource) SetBaseOxygen(level float64) {
	s.baseOxygen = level
}

func (s *MockSource) SetBaseOccupancy(percent float64) {
	s.baseOccupancy = percent
}

func (s *MockSource) SetBaseCases(cases int) {
	s.baseCases = cases
}

func (s *MockSource) SetShouldFail(shouldFail bool, err error) {
	s.shouldFail = shouldFail
	s.failureError = err
}

func (s *MockSource) Collect(ctx context.Context) (*models.Snapshot, error) {
	if s.shouldFail {
		if s.failureError != nil {
			return nil, s.failureError
		}
		return nil, ErrCollectionFailed
	}

	stations := make([]models.OxygenStationReading, s.stationCount)
	for i := 0; i < s.stationCount; i++ {
		stations[i] = models.OxygenStationReading{
			StationID: models.NewUUID(),
			Name:      stationName(i),
			Level:     clampPercent(s.randomValue(s.baseOxygen, s.variance)),
			FlowRate:  s.randomValue(12.0, 2.0),
			Pressure:  s.randomValue(50.0, 3.0),
			Status:    "operational",
		}
	}

	totalBeds := 120
	occupied := int(float64(totalBeds) * clampPercent(s.randomValue(s.baseOccupancy, s.variance)) / 100.0)
	cleaning := rand.Intn(4)
	available := totalBeds - occupied - cleaning
	if available < 0 {
		available = 0
	}

	return &models.Snapshot{
		Timestamp: time.Now(),
		Stations:  stations,
		Beds: models.BedCounts{
			Total:     totalBeds,
			Occupied:  occupied,
			Available: available,
			Cleaning:  cleaning,
		},
		Staff: models.StaffReading{
			OnDuty:          24 + rand.Intn(8),
			WorkloadPercent: clampPercent(s.randomValue(s.baseWorkload, s.variance)),
		},
		Emergency: models.EmergencyReading{
			ActiveCases:     maxInt(0, s.baseCases+rand.Intn(3)-1),
			WaitingPatients: rand.Intn(6),
		},
	}, nil
}

func (s *MockSource) HealthCheck(ctx context.Context) error {
	if s.shouldFail {
		return ErrCollectionFailed
	}
	return nil
}

func (s *MockSource) Close() error {
	return nil
}

func (s *MockSource) randomValue(base, variance float64) float64 {
	return base + (rand.Float64()*2-1)*variance
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func stationName(i int) string {
	names := []string{"ICU Wing A", "ICU Wing B", "Emergency Ward", "Surgical Unit", "Recovery Ward"}
	if i < len(names) {
		return names[i]
	}
	return names[i%len(names)]
}
