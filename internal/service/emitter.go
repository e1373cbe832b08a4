package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from whatever renders them
// ─────────────────────────────────────────────────────────────

// Events emitted by ExplorerService. Payloads are noted per event.
const (
	EventSourceActivated   = "source:activated"   // domain.Configuration
	EventSourceLoading     = "source:loading"     // LoadEvent
	EventSourceLoaded      = "source:loaded"      // LoadEvent
	EventSourceUnavailable = "source:unavailable" // LoadEvent
	EventConfigChanged     = "config:changed"     // domain.Configuration
	EventViewChanged       = "view:changed"       // int, visible row count
)

// LoadEvent describes one fetch of the active source.
type LoadEvent struct {
	URL        string `json:"url"`
	Generation uint64 `json:"generation"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
}

// EventEmitter receives state changes. A render surface or the refresh
// scheduler implements it; services depend on this interface only.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Emitters fans one event out to several emitters in order.
type Emitters []EventEmitter

func (es Emitters) Emit(ctx context.Context, event string, data any) {
	for _, e := range es {
		if e != nil {
			e.Emit(ctx, event, data)
		}
	}
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
// It is safe for use from fetch goroutines.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Last returns the most recent payload for event.
func (m *MockEmitter) Last(event string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].Event == event {
			return m.Events[i].Data, true
		}
	}
	return nil, false
}
