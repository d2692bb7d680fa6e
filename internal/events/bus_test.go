package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	var got []Event
	bus.Subscribe(TypeProductCreated, func(_ context.Context, e Event) {
		got = append(got, e)
	})

	bus.Publish(context.Background(), Event{
		Type:       TypeProductCreated,
		Collection: "products",
		EntityID:   "11",
	})

	require.Len(t, got, 1)
	require.Equal(t, "11", got[0].EntityID)
	require.NotEmpty(t, got[0].ID)
	require.False(t, got[0].Timestamp.IsZero())
}

func TestBusIgnoresOtherTypes(t *testing.T) {
	bus := NewBus()
	called := false
	bus.Subscribe(TypeOrderCreated, func(context.Context, Event) { called = true })

	bus.Publish(context.Background(), Event{Type: TypeProductDeleted})
	require.False(t, called)
}

func TestBusDispatchesInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		bus.Subscribe(TypeProductUpdated, func(context.Context, Event) {
			order = append(order, name)
		})
	}

	bus.Publish(context.Background(), Event{Type: TypeProductUpdated})
	require.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(TypeOrderUpdated, func(context.Context, Event) { calls++ })

	bus.Publish(context.Background(), Event{Type: TypeOrderUpdated})
	unsubscribe()
	bus.Publish(context.Background(), Event{Type: TypeOrderUpdated})

	require.Equal(t, 1, calls)
}

type failingSink struct{ calls int }

func (s *failingSink) Forward(context.Context, Event) error {
	s.calls++
	return errors.New("broker down")
}

func TestBusSinkFailureDoesNotBlockSubscribers(t *testing.T) {
	bus := NewBus()
	sink := &failingSink{}
	bus.AddSink(sink)

	delivered := false
	bus.Subscribe(TypeUserUpdated, func(context.Context, Event) { delivered = true })

	bus.Publish(context.Background(), Event{Type: TypeUserUpdated})
	require.True(t, delivered)
	require.Equal(t, 1, sink.calls)
}
