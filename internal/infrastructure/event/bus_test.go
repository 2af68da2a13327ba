package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []string
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event.EventType())
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "purchase_order", uuid.New(), uuid.New())
	return &evt
}

func TestInMemoryEventBus(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to handlers of the matching type", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		approved := &recordingHandler{}
		rejected := &recordingHandler{}
		bus.Subscribe(approved, "purchase_order.approved")
		bus.Subscribe(rejected, "purchase_order.rejected")

		require.NoError(t, bus.Publish(ctx, testEvent("purchase_order.approved")))

		assert.Equal(t, []string{"purchase_order.approved"}, approved.received)
		assert.Empty(t, rejected.received)
	})

	t.Run("uses the handler's own event types when none are given", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := &recordingHandler{types: []string{"payment.paid"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, testEvent("payment.paid"), testEvent("payment.rejected")))

		assert.Equal(t, []string{"payment.paid"}, handler.received)
	})

	t.Run("empty event types subscribe to everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, testEvent("budget_item.created"), testEvent("payment.paid")))

		assert.Equal(t, []string{"budget_item.created", "payment.paid"}, handler.received)
	})

	t.Run("handler errors do not stop delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		failing := &recordingHandler{err: errors.New("boom")}
		healthy := &recordingHandler{}
		bus.Subscribe(failing, "payment.paid")
		bus.Subscribe(healthy, "payment.paid")

		require.NoError(t, bus.Publish(ctx, testEvent("payment.paid")))

		assert.Len(t, failing.received, 1)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("handler panics are contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		panicking := &recordingHandler{panics: true}
		healthy := &recordingHandler{}
		bus.Subscribe(panicking, "payment.paid")
		bus.Subscribe(healthy, "payment.paid")

		require.NotPanics(t, func() {
			require.NoError(t, bus.Publish(ctx, testEvent("payment.paid")))
		})
		assert.Len(t, healthy.received, 1)
	})

	t.Run("unsubscribe removes the handler everywhere", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		typed := &recordingHandler{}
		wildcard := &recordingHandler{}
		bus.Subscribe(typed, "payment.paid")
		bus.Subscribe(wildcard)

		bus.Unsubscribe(typed)
		bus.Unsubscribe(wildcard)

		require.NoError(t, bus.Publish(ctx, testEvent("payment.paid")))
		assert.Empty(t, typed.received)
		assert.Empty(t, wildcard.received)
	})
}

func TestActivityLogger(t *testing.T) {
	logger := NewActivityLogger(nil)

	assert.Empty(t, logger.EventTypes())

	evt := testEvent("vendor_invoice.approved")
	assert.NoError(t, logger.Handle(context.Background(), evt))
}
