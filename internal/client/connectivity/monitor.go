// Package connectivity tracks whether the remote service is reachable.
package connectivity

import (
	"log/slog"
	"sync"

	"github.com/iudanet/cropaid/internal/client/events"
)

// State текущее состояние сети
type State int

const (
	Offline State = iota
	Online
)

// String returns "online" or "offline"
func (s State) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// Monitor holds the process-wide connectivity state and emits an event only
// when the state actually changes.
type Monitor struct {
	bus    *events.Bus
	logger *slog.Logger
	mu     sync.RWMutex
	online bool
}

// NewMonitor creates a monitor with the given initial state
func NewMonitor(online bool, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		bus:    events.NewBus(logger),
		logger: logger,
		online: online,
	}
}

// IsOnline reports the current state
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// State returns the current state
func (m *Monitor) State() State {
	if m.IsOnline() {
		return Online
	}
	return Offline
}

// Set records a platform signal. Listeners are notified only on a
// transition; repeated signals with the same value are ignored.
// It reports whether the state changed.
func (m *Monitor) Set(online bool) bool {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return false
	}
	m.online = online
	m.mu.Unlock()

	name := events.Offline
	if online {
		name = events.Online
	}
	m.logger.Info("Connectivity changed", "state", name)
	m.bus.Publish(name, nil)
	return true
}

// Subscribe registers fn for transition events and returns an unsubscribe func
func (m *Monitor) Subscribe(fn func(State)) func() {
	return m.bus.Subscribe(func(e events.Event) {
		if e.Name == events.Online {
			fn(Online)
			return
		}
		fn(Offline)
	})
}
