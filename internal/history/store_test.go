package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/history"
	"github.com/havenhealth/ops-engine/pkg/models"
)

func pointAt(hour int) models.HistoricalPoint {
	return models.HistoricalPoint{
		Timestamp:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hour) * time.Hour),
		OxygenDemand: float64(hour),
	}
}

func TestStore_AppendAndTail(t *testing.T) {
	s := history.NewStore(10)

	for i := 0; i < 5; i++ {
		s.Append(pointAt(i))
	}

	assert.Equal(t, 5, s.Len())

	tail := s.Tail(3)
	require.Len(t, tail, 3)

	// Oldest to newest.
	assert.Equal(t, 2.0, tail[0].OxygenDemand)
	assert.Equal(t, 3.0, tail[1].OxygenDemand)
	assert.Equal(t, 4.0, tail[2].OxygenDemand)
}

func TestStore_EvictsOldestBeyondCapacity(t *testing.T) {
	s := history.NewStore(10)

	for i := 0; i < 25; i++ {
		s.Append(pointAt(i))
	}

	assert.Equal(t, 10, s.Len())

	tail := s.Tail(0)
	require.Len(t, tail, 10)
	assert.Equal(t, 15.0, tail[0].OxygenDemand)
	assert.Equal(t, 24.0, tail[len(tail)-1].OxygenDemand)
}

func TestStore_TailReturnsCopy(t *testing.T) {
	s := history.NewStore(10)
	s.Append(pointAt(1))

	tail := s.Tail(0)
	require.Len(t, tail, 1)
	tail[0].OxygenDemand = 999

	fresh := s.Tail(0)
	assert.Equal(t, 1.0, fresh[0].OxygenDemand)
}

func TestStore_TailOversizedRequest(t *testing.T) {
	s := history.NewStore(10)
	s.Append(pointAt(1))
	s.Append(pointAt(2))

	tail := s.Tail(100)
	assert.Len(t, tail, 2)
}

func TestStore_Last(t *testing.T) {
	s := history.NewStore(10)

	_, ok := s.Last()
	assert.False(t, ok)

	s.Append(pointAt(1))
	s.Append(pointAt(2))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 2.0, last.OxygenDemand)
}

func TestNewStore_DefaultCapacity(t *testing.T) {
	s := history.NewStore(0)

	for i := 0; i < history.DefaultRetention+5; i++ {
		s.Append(pointAt(i))
	}

	assert.Equal(t, history.DefaultRetention, s.Len())
}
