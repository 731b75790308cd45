// Package history holds the bounded, time-ordered buffer of derived
// telemetry rows that feeds the forecasters.
package history

import (
	"sync"

	"github.com/havenhealth/ops-engine/pkg/models"
)

// DefaultRetention is 30 days of hourly points.
const DefaultRetention = 30 * 24

// Store is a FIFO buffer of HistoricalPoints. When the retention cap
// is exceeded the oldest rows are dropped. No resampling is performed;
// gaps in arrival are simply absent rows.
type Store struct {
	mu       sync.RWMutex
	points   []models.HistoricalPoint
	capacity int
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultRetention
	}
	return &Store{
		points:   make([]models.HistoricalPoint, 0, capacity),
		capacity: capacity,
	}
}

// Append adds one point, trimming from the head when the retention
// window is exceeded.
func (s *Store) Append(p models.HistoricalPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points, p)
	if len(s.points) > s.capacity {
		s.points = s.points[len(s.points)-s.capacity:]
	}
}

// Tail returns the most recent n points ordered oldest to newest. The
// returned slice is a copy; callers can never mutate the live buffer.
func (s *Store) Tail(n int) []models.HistoricalPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.points) {
		n = len(s.points)
	}

	out := make([]models.HistoricalPoint, n)
	copy(out, s.points[len(s.points)-n:])
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Last returns the most recent point, if any.
func (s *Store) Last() (models.HistoricalPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.points) == 0 {
		return models.HistoricalPoint{}, false
	}
	return s.points[len(s.points)-1], true
}
