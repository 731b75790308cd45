package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/resilience"
	"github.com/havenhealth/ops-engine/internal/telemetry"
	"github.com/havenhealth/ops-engine/pkg/models"
)

// flakySource fails a fixed number of Collect calls before recovering.
type flakySource struct {
	mu        sync.Mutex
	failures  int
	collected int
}

func (f *flakySource) Collect(ctx context.Context) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.collected++
	if f.failures > 0 {
		f.failures--
		return nil, telemetry.ErrCollectionFailed
	}
	return &models.Snapshot{Timestamp: time.Now()}, nil
}

func (f *flakySource) HealthCheck(ctx context.Context) error { return nil }
func (f *flakySource) Close() error                          { return nil }

func (f *flakySource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collected
}

func newResilient(src telemetry.Source, maxFailures int) *telemetry.ResilientSource {
	return telemetry.NewResilientSource(telemetry.ResilientSourceConfig{
		Source:        src,
		MaxFailures:   maxFailures,
		Cooldown:      time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})
}

func TestResilientSource_RetriesUntilSuccess(t *testing.T) {
	inner := &flakySource{failures: 2}
	src := newResilient(inner, 5)

	snap, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Equal(t, 3, inner.calls())
	assert.Equal(t, resilience.StateClosed, src.BreakerState())
}

func TestResilientSource_ExhaustedRetriesCountAsOneBreakerFailure(t *testing.T) {
	inner := &flakySource{failures: 100}
	src := newResilient(inner, 2)

	_, err := src.Collect(context.Background())
	assert.ErrorIs(t, err, telemetry.ErrCollectionFailed)
	assert.Equal(t, resilience.StateClosed, src.BreakerState())

	_, err = src.Collect(context.Background())
	assert.Error(t, err)
	assert.Equal(t, resilience.StateOpen, src.BreakerState())

	// Circuit open: the inner source is no longer called.
	before := inner.calls()
	_, err = src.Collect(context.Background())
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, inner.calls())
}

func TestResilientSource_ResetBreaker(t *testing.T) {
	inner := &flakySource{failures: 100}
	src := newResilient(inner, 1)

	_, _ = src.Collect(context.Background())
	require.Equal(t, resilience.StateOpen, src.BreakerState())

	src.ResetBreaker()
	assert.Equal(t, resilience.StateClosed, src.BreakerState())
}

func TestResilientSource_ContextCancellation(t *testing.T) {
	inner := &flakySource{failures: 100}
	src := telemetry.NewResilientSource(telemetry.ResilientSourceConfig{
		Source:        inner,
		MaxFailures:   10,
		Cooldown:      time.Minute,
		RetryAttempts: 5,
		RetryDelay:    time.Hour, // cancellation must cut the backoff short
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := src.Collect(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Collect did not honor context cancellation")
	}
}

func TestResilientSource_Delegation(t *testing.T) {
	healthErr := errors.New("unhealthy")
	inner := telemetry.NewMockSource(telemetry.MockSourceConfig{})
	inner.SetShouldFail(true, healthErr)

	src := newResilient(inner, 5)
	assert.Error(t, src.HealthCheck(context.Background()))
	assert.NoError(t, src.Close())
}
