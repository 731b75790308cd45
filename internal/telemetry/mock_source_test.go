package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/telemetry"
)

func TestMockSource_CollectShape(t *testing.T) {
	src := telemetry.NewMockSource(telemetry.MockSourceConfig{StationCount: 4})
	defer src.Close()

	snap, err := src.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Stations, 4)
	for _, st := range snap.Stations {
		assert.NotEmpty(t, st.StationID)
		assert.NotEmpty(t, st.Name)
		assert.GreaterOrEqual(t, st.Level, 0.0)
		assert.LessOrEqual(t, st.Level, 100.0)
	}

	assert.Equal(t, 120, snap.Beds.Total)
	assert.GreaterOrEqual(t, snap.Beds.Available, 0)
	assert.GreaterOrEqual(t, snap.Staff.WorkloadPercent, 0.0)
	assert.LessOrEqual(t, snap.Staff.WorkloadPercent, 100.0)
	assert.GreaterOrEqual(t, snap.Emergency.ActiveCases, 0)
	assert.WithinDuration(t, time.Now(), snap.Timestamp, time.Second)
}

func TestMockSource_BaseValuesDriveReadings(t *testing.T) {
	src := telemetry.NewMockSource(telemetry.MockSourceConfig{
		BaseOxygen: 40,
		Variance:   1,
	})

	snap, err := src.Collect(context.Background())
	require.NoError(t, err)

	for _, st := range snap.Stations {
		assert.InDelta(t, 40.0, st.Level, 1.01)
	}
}

func TestMockSource_Failure(t *testing.T) {
	src := telemetry.NewMockSource(telemetry.MockSourceConfig{})

	custom := errors.New("endpoint down")
	src.SetShouldFail(true, custom)

	_, err := src.Collect(context.Background())
	assert.ErrorIs(t, err, custom)
	assert.Error(t, src.HealthCheck(context.Background()))

	src.SetShouldFail(true, nil)
	_, err = src.Collect(context.Background())
	assert.ErrorIs(t, err, telemetry.ErrCollectionFailed)

	src.SetShouldFail(false, nil)
	_, err = src.Collect(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, src.HealthCheck(context.Background()))
}
