package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from the transport
// ─────────────────────────────────────────────────────────────

// Event names emitted by the builder session.
const (
	EventCanvasChanged   = "canvas:changed"
	EventProjectSaved    = "project:saved"
	EventProjectDeleted  = "project:deleted"
	EventSessionState    = "session:state"
	EventSaveFailed      = "project:save-failed"
	EventCatalogChanged  = "catalog:changed"
	EventProjectsChanged = "projects:changed"
)

// EventEmitter pushes notifications to whoever renders the builder.
// The HTTP layer streams them to browsers; the MCP server discards them.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
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

// ─────────────────────────────────────────────────────────────
// Broadcaster — fan-out to live subscribers
// ─────────────────────────────────────────────────────────────

// Broadcaster delivers each event to every subscriber. Slow subscribers
// lose events rather than block the session.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan EmittedEvent
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan EmittedEvent)}
}

func (b *Broadcaster) Emit(_ context.Context, event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- EmittedEvent{Event: event, Data: data}:
		default:
		}
	}
}

// Subscribe returns a buffered event channel and a function that
// unsubscribes and closes it.
func (b *Broadcaster) Subscribe(buffer int) (<-chan EmittedEvent, func()) {
	ch := make(chan EmittedEvent, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports the live subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
