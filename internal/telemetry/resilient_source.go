package telemetry

import (
	"context"
	"time"

	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/internal/resilience"
	"github.com/havenhealth/ops-engine/pkg/models"
)

// ResilientSource wraps another Source with retries and a circuit
// breaker so a flaky telemetry endpoint degrades collection instead of
// stalling the engine.
type ResilientSource struct {
	source        Source
	breaker       *resilience.Breaker
	retryAttempts int
	retryDelay    time.Duration
}

type ResilientSourceConfig struct {
	Source        Source
	MaxFailures   int
	Cooldown      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientSource(cfg ResilientSourceConfig) *ResilientSource {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:          "telemetry",
		MaxFailures:   cfg.MaxFailures,
		Cooldown:      cfg.Cooldown,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientSource{
		source:        cfg.Source,
		breaker:       breaker,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
}

func (s *ResilientSource) Collect(ctx context.Context) (*models.Snapshot, error) {
	var snapshot *models.Snapshot
	var lastErr error

	err := s.breaker.Do(func() error {
		for attempt := 1; attempt <= s.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			snapshot, err = s.source.Collect(ctx)
			if err == nil {
				return nil
			}

			lastErr = err
			logger.Warnf("Snapshot collection attempt %d/%d failed: %v", attempt, s.retryAttempts, err)

			if attempt < s.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.retryDelay):
				}
			}
		}
		return lastErr
	})

	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *ResilientSource) HealthCheck(ctx context.Context) error {
	return s.source.HealthCheck(ctx)
}

func (s *ResilientSource) Close() error {
	return s.source.Close()
}

func (s *ResilientSource) BreakerState() resilience.State {
	return s.breaker.State()
}

func (s *ResilientSource) ResetBreaker() {
	s.breaker.Reset()
}
