// Package events provides a lightweight publish/subscribe bus for
// workflow notifications.
package events

import (
	"fmt"
	"sync"
)

// Handler processes a published event
type Handler func(Event)

type subscription struct {
	id      string
	handler Handler
}

// Bus dispatches events to subscribers by type
type Bus struct {
	mu          sync.RWMutex
	handlers    map[Type][]subscription
	allHandlers []subscription
	nextID      uint64
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers:    make(map[Type][]subscription),
		allHandlers: make([]subscription, 0),
	}
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID usable with Unsubscribe.
func (b *Bus) Subscribe(t Type, h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.newID()
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})
	return id
}

// SubscribeAll registers a handler for every event type
func (b *Bus) SubscribeAll(h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.newID()
	b.allHandlers = append(b.allHandlers, subscription{id: id, handler: h})
	return id
}

// Unsubscribe removes a subscription by ID. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, subs := range b.handlers {
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
	for i, s := range b.allHandlers {
		if s.id == id {
			b.allHandlers = append(b.allHandlers[:i], b.allHandlers[i+1:]...)
			return
		}
	}
}

// HasSubscribers reports whether any handler would receive events of type t
func (b *Bus) HasSubscribers(t Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t]) > 0 || len(b.allHandlers) > 0
}

// Publish delivers the event synchronously to all matching handlers
func (b *Bus) Publish(e Eventer) {
	event := e.ToEvent()

	b.mu.RLock()
	subs := make([]subscription, 0, len(b.handlers[event.Type])+len(b.allHandlers))
	subs = append(subs, b.handlers[event.Type]...)
	subs = append(subs, b.allHandlers...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// PublishAsync delivers the event in a separate goroutine.
// Safe to call while holding locks in the publisher.
func (b *Bus) PublishAsync(e Eventer) {
	go b.Publish(e)
}

// newID generates a subscription ID (must hold lock)
func (b *Bus) newID() string {
	b.nextID++
	return fmt.Sprintf("sub-%d", b.nextID)
}
