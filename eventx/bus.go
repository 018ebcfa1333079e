package eventx

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/Abraxas-365/watools/logx"
)

// EventHandler is a function that processes events
type EventHandler func(Event) error

// TypedEventHandler provides type-safe event handling
type TypedEventHandler[T any] func(TypedEvent[T]) error

// Publisher delivers events somewhere. Publish must be safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error { return f(ctx, event) }

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// MemoryBus dispatches events synchronously to in-process subscribers.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	closed   bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]EventHandler)}
}

// Subscribe registers handler for eventType. "*" receives every event.
func (b *MemoryBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// HandlerCount returns the number of handlers for an event type
func (b *MemoryBus) HandlerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Publish runs every matching handler and joins their errors.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrorRegistry.New(ErrBusClosed).WithDetail("event_type", event.Type())
	}
	handlers := append(append([]EventHandler(nil), b.handlers[event.Type()]...), b.handlers["*"]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h(event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return ErrorRegistry.New(ErrPublishFailed).
			WithCause(errors.Join(errs...)).
			WithDetail("event_id", event.ID()).
			WithDetail("event_type", event.Type())
	}
	return nil
}

func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// SubscribeTyped registers a typed event handler
func SubscribeTyped[T any](bus *MemoryBus, eventType string, handler TypedEventHandler[T]) {
	bus.Subscribe(eventType, func(e Event) error {
		if typedEvent, ok := e.(TypedEvent[T]); ok {
			return handler(typedEvent)
		}
		return ErrorRegistry.New(ErrInvalidEventType).
			WithDetail("expected_type", reflect.TypeOf((*T)(nil)).Elem().String()).
			WithDetail("actual_type", reflect.TypeOf(e.Payload()).String())
	})
}

// FanOut publishes to every publisher and joins their errors.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BestEffort logs publish failures instead of returning them, for callers
// whose own result must not depend on event delivery.
func BestEffort(p Publisher) Publisher {
	return PublisherFunc(func(ctx context.Context, event Event) error {
		if err := p.Publish(ctx, event); err != nil {
			logx.Warn("Failed to publish %s event %s: %v", event.Type(), event.ID(), err)
		}
		return nil
	})
}
