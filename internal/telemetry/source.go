// Package telemetry defines the inbound snapshot contract and its
// implementations. The engine only consumes the snapshot's shape; the
// cadence is owned by the source.
package telemetry

import (
	"context"
	"errors"

	"github.com/havenhealth/ops-engine/pkg/models"
)

var (
	ErrCollectionFailed = errors.New("snapshot collection failed")
	ErrTimeout          = errors.New("collection timeout")
	ErrInvalidResponse  = errors.New("invalid response from telemetry source")
)

// Source delivers operational snapshots.
type Source interface {
	// Collect fetches the current snapshot.
	Collect(ctx context.Context) (*models.Snapshot, error)

	// HealthCheck verifies the source is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the source.
	Close() error
}
