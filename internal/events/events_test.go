package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/ops-engine/internal/events"
	"github.com/havenhealth/ops-engine/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	alertCh := bus.Subscribe(models.EventTypeAlertCreated)

	bus.Publish(models.NewEvent(models.EventTypeSnapshotReceived, "", "snapshot"))
	bus.Publish(models.NewEvent(models.EventTypeAlertCreated, "beds", "shortage"))

	event := receive(t, alertCh)
	assert.Equal(t, models.EventTypeAlertCreated, event.Type)
	assert.Equal(t, "beds", event.Resource)

	select {
	case extra := <-alertCh:
		t.Fatalf("unexpected extra event: %s", extra.Type)
	default:
	}
}

func TestEventBus_SubscribeAllReceivesEverything(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	all := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypeSnapshotReceived, "", "snapshot"))
	bus.Publish(models.NewEvent(models.EventTypePredictionUpdated, "oxygen", "updated"))
	bus.Publish(models.NewEvent(models.EventTypeError, "staff", "boom"))

	assert.Equal(t, models.EventTypeSnapshotReceived, receive(t, all).Type)
	assert.Equal(t, models.EventTypePredictionUpdated, receive(t, all).Type)
	assert.Equal(t, models.EventTypeError, receive(t, all).Type)
}

func TestEventBus_FullChannelDropsInsteadOfBlocking(t *testing.T) {
	bus := events.NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeAlertCreated)

	done := make(chan struct{})
	go func() {
		bus.Publish(models.NewEvent(models.EventTypeAlertCreated, "", "first"))
		bus.Publish(models.NewEvent(models.EventTypeAlertCreated, "", "second"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full channel")
	}

	event := receive(t, ch)
	assert.Equal(t, "first", event.Message)
}

func TestEventBus_CloseStopsDelivery(t *testing.T) {
	bus := events.NewEventBus(10)

	all := bus.SubscribeAll()
	bus.Close()

	// Channel is closed; publishing after close is a no-op.
	bus.Publish(models.NewEvent(models.EventTypeAlertCreated, "", "late"))

	_, open := <-all
	assert.False(t, open)

	// Double close is safe.
	bus.Close()
}

func TestPublisher_SeverityMapping(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	pub := events.NewPublisher(bus)

	pub.PredictionUpdated(models.ResourceOxygen, models.ResourcePrediction{
		ResourceType: models.ResourceOxygen,
		RiskLevel:    models.RiskCritical,
	})
	assert.Equal(t, models.SeverityCritical, receive(t, ch).Severity)

	pub.AlertCreated(models.Alert{Type: models.AlertWarning, Title: "overload"})
	assert.Equal(t, models.SeverityWarning, receive(t, ch).Severity)

	pub.RecommendationExecuted("a-1", "r-1", true)
	assert.Equal(t, models.SeverityInfo, receive(t, ch).Severity)
}

func TestPublisher_WithTraceID(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	pub := events.NewPublisher(bus).WithTraceID("trace-123")

	pub.AlertResolved(models.Alert{Title: "done"})

	event := receive(t, ch)
	require.Equal(t, models.EventTypeAlertResolved, event.Type)
	assert.Equal(t, "trace-123", event.TraceID)
}

func TestPublisher_NilBusIsSafe(t *testing.T) {
	var pub *events.Publisher
	pub.AlertCreated(models.Alert{Title: "ignored"})

	pub = events.NewPublisher(nil)
	pub.SnapshotReceived(&models.Snapshot{})
}
