package events

import (
	"fmt"
	"sync"
)

// Bus is the UI services' notification mechanism. Publish calls every
// listener for the event's type synchronously, in subscription order, so
// listeners observe state changes in the order they happened.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]listener
	nextID    uint64
}

type listener struct {
	id      uint64
	handler func(interface{})
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]listener),
	}
}

// Subscribe registers a listener for an event type and returns a function
// that removes it
func (b *Bus) Subscribe(eventType string, handler func(interface{})) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[eventType] = append(b.listeners[eventType], listener{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.listeners[eventType]
		for i, l := range ls {
			if l.id == id {
				b.listeners[eventType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Publish sends an event to all listeners
func (b *Bus) Publish(event interface{}) {
	b.mu.RLock()
	ls := make([]listener, len(b.listeners[TypeOf(event)]))
	copy(ls, b.listeners[TypeOf(event)])
	b.mu.RUnlock()

	for _, l := range ls {
		l.handler(event)
	}
}

// TypeOf returns the key listeners subscribe under for event
func TypeOf(event interface{}) string {
	return fmt.Sprintf("%T", event)
}
