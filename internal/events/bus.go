package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tair/storefront/pkg/logger"
)

// Handler consumes an event. Handlers run synchronously on the publishing
// goroutine, in subscription order.
type Handler func(ctx context.Context, event Event)

// Sink forwards events out of process (e.g. to Kafka). Sink failures are
// logged and do not fail the publish: in-process subscribers are the
// authoritative consumers.
type Sink interface {
	Forward(ctx context.Context, event Event) error
}

// Bus is the change-notification channel owned by the application. It is
// injected into every command handler; there is no ambient global bus.
type Bus struct {
	mu    sync.RWMutex
	subs  map[string]map[int]Handler
	next  int
	sinks []Sink
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// AddSink attaches an out-of-process sink.
func (b *Bus) AddSink(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Subscribe registers a handler for one event type and returns its
// unsubscribe function.
func (b *Bus) Subscribe(eventType string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[eventType][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[eventType], id)
	}
}

// Publish fills in event metadata and dispatches to subscribers and sinks.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	ids := make([]int, 0, len(b.subs[event.Type]))
	for id := range b.subs[event.Type] {
		ids = append(ids, id)
	}
	// Subscription ids are issued monotonically, so dispatching in id order
	// is subscription order.
	sort.Ints(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[event.Type][id])
	}
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, event)
	}
	for _, s := range sinks {
		if err := s.Forward(ctx, event); err != nil {
			logger.Error(ctx).
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				Msg("Failed to forward event to sink")
		}
	}
}
