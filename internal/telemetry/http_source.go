package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/havenhealth/ops-engine/internal/logger"
	"github.com/havenhealth/ops-engine/pkg/models"
)

type HTTPSource struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

type HTTPSourceConfig struct {
	Endpoint string
	Timeout  time.Duration
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPSource{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
		timeout:  timeout,
	}
}

// snapshotResponse matches the payload served by the telemetry
// simulator and the hospital integration endpoint.
type snapshotResponse struct {
	Timestamp string                        `json:"timestamp"`
	Stations  []models.OxygenStationReading `json:"stations"`
	Beds      models.BedCounts              `json:"beds"`
	Staff     models.StaffReading           `json:"staff"`
	Emergency models.EmergencyReading       `json:"emergency"`
}

func (s *HTTPSource) Collect(ctx context.Context) (*models.Snapshot, error) {
	url := s.endpoint + "/snapshot"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrCollectionFailed, err)
	}

	req.Header.Set("Accept", "application/json")

	logger.Debugf("Collecting snapshot from %s", url)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrCollectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrCollectionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrCollectionFailed, err)
	}

	var snapResp snapshotResponse
	if err := json.Unmarshal(body, &snapResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	snapshot := s.convertResponse(&snapResp)

	logger.Debugf("Collected snapshot with %d oxygen stations", len(snapshot.Stations))

	return snapshot, nil
}

func (s *HTTPSource) convertResponse(resp *snapshotResponse) *models.Snapshot {
	timestamp := time.Now()
	if resp.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, resp.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	return &models.Snapshot{
		Timestamp: timestamp,
		Stations:  resp.Stations,
		Beds:      resp.Beds,
		Staff:     resp.Staff,
		Emergency: resp.Emergency,
	}
}

func (s *HTTPSource) HealthCheck(ctx context.Context) error {
	url := s.endpoint + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
