package event

import (
	"context"
	"errors"
	"testing"

	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "order", "1")}
}

type recordingHandler struct {
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	h.handled = append(h.handled, event)
	return h.err
}

func TestInMemoryEventBus_PublishSubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.closed")))

	require.Len(t, handler.handled, 1)
	assert.Equal(t, "order.created", handler.handled[0].EventType())
}

func TestInMemoryEventBus_ExplicitEventTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(handler, "order.closed")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Empty(t, handler.handled)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.closed")))
	assert.Len(t, handler.handled, 1)
}

func TestInMemoryEventBus_HandlerFailureDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := &recordingHandler{types: []string{"order.created"}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Len(t, healthy.handled, 1)
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	panicking := &recordingHandler{types: []string{"order.created"}, panics: true}
	healthy := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("order.created"))
	})
	assert.Len(t, healthy.handled, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Empty(t, handler.handled)
}
