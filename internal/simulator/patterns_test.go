package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"steady", "steady"},
		{"daily", "daily"},
		{"weekly", "weekly"},
		{"random", "random"},
		{"night_drop", "night_drop"},
		{"gradual_rise", "gradual_rise"},
		{"unknown", "steady"},
		{"", "steady"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePattern(tt.input).Name())
		})
	}
}

func TestSteadyPattern_IsIdentity(t *testing.T) {
	assert.Equal(t, 70.0, PatternSteady.Apply(70))
}

func TestPatterns_StayInRange(t *testing.T) {
	patterns := []Pattern{
		PatternSteady,
		PatternDaily,
		PatternWeekly,
		PatternRandom,
		PatternNightDrop,
		&GradualRisePattern{startTime: time.Now().Add(-time.Hour)},
		&SineWavePattern{},
	}

	for _, p := range patterns {
		for _, base := range []float64{10, 50, 90, 100} {
			v := p.Apply(base)
			assert.LessOrEqual(t, v, 100.0, "%s at base %.0f", p.Name(), base)
			assert.GreaterOrEqual(t, v, 0.0, "%s at base %.0f", p.Name(), base)
		}
	}
}

func TestGradualRisePattern_CapsAtFiftyPercent(t *testing.T) {
	p := &GradualRisePattern{startTime: time.Now().Add(-2 * time.Hour)}
	assert.InDelta(t, 60.0, p.Apply(40), 0.5)
}

func TestHospitalSim_SnapshotShape(t *testing.T) {
	sim := NewHospitalSim(HospitalSimConfig{Stations: 3, TotalBeds: 120})

	snap := sim.Snapshot()
	require.NotNil(t, snap)

	assert.Len(t, snap.Stations, 3)
	assert.Equal(t, 120, snap.Beds.Total)
	assert.Equal(t, snap.Beds.Total, snap.Beds.Occupied+snap.Beds.Available+snap.Beds.Cleaning)
	assert.GreaterOrEqual(t, snap.Staff.WorkloadPercent, 0.0)
	assert.GreaterOrEqual(t, snap.Emergency.ActiveCases, 0)
}

func TestHospitalSim_OxygenDrainPullsLevelsDown(t *testing.T) {
	sim := NewHospitalSim(HospitalSimConfig{Stations: 3, TotalBeds: 120})
	sim.SetVariance(0.1)

	sim.InjectOxygenDrain(20, time.Hour, time.Nanosecond)
	time.Sleep(2 * time.Millisecond) // past the ramp

	snap := sim.Snapshot()
	for _, st := range snap.Stations {
		assert.Less(t, st.Level, 40.0)
	}
}

func TestHospitalSim_SurgeRaisesCases(t *testing.T) {
	sim := NewHospitalSim(HospitalSimConfig{Stations: 3, TotalBeds: 120})
	sim.SetVariance(0.1)
	sim.SetBaseCases(2)

	sim.InjectSurge(14, 10, time.Hour, time.Nanosecond)
	time.Sleep(2 * time.Millisecond)

	snap := sim.Snapshot()
	assert.GreaterOrEqual(t, snap.Emergency.ActiveCases, 10)
}
