// Package events provides a small publish/subscribe bus. Each store owns its
// own Bus so UI layers can react to changes without polling.
package events

import (
	"log/slog"
	"slices"
	"sync"
)

// Name identifies an event kind
type Name string

const (
	CaptureSaved   Name = "capture_saved"
	CaptureDeleted Name = "capture_deleted"
	SyncStarted    Name = "sync_started"
	SyncProgress   Name = "sync_progress"
	SyncCompleted  Name = "sync_completed"
	SyncError      Name = "sync_error"
	Online         Name = "online"
	Offline        Name = "offline"

	// QueueSyncComplete fires after an action queue drain with at least one success
	QueueSyncComplete Name = "offline_sync_complete"
)

// Event is delivered to every listener
type Event struct {
	Data map[string]any
	Name Name
}

// Listener receives events synchronously on the publisher's goroutine
type Listener func(Event)

// Bus fans out events to registered listeners
type Bus struct {
	logger    *slog.Logger
	listeners map[uint64]Listener
	mu        sync.RWMutex
	nextID    uint64
}

// NewBus creates an empty bus. A nil logger falls back to slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger:    logger,
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers fn and returns a function that removes it
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Publish delivers the event to listeners in subscription order.
// A panicking listener is logged and does not affect the others.
func (b *Bus) Publish(name Name, data map[string]any) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, b.listeners[id])
	}
	b.mu.RUnlock()

	event := Event{Name: name, Data: data}
	for _, fn := range listeners {
		b.deliver(fn, event)
	}
}

func (b *Bus) deliver(fn Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Listener panicked", "event", event.Name, "panic", r)
		}
	}()
	fn(event)
}

// Len returns the number of registered listeners
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
