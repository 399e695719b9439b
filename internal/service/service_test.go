package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/service"
)

// ─────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────

// memState is an in-memory StateStore that counts writes.
type memState struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func newMemState() *memState {
	return &memState{values: make(map[string]string)}
}

func (m *memState) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memState) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

func (m *memState) Close() error { return nil }

func (m *memState) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func newProjectStore(state *memState) *service.ProjectStore {
	return service.NewProjectStore(state, zap.NewNop())
}

// ─────────────────────────────────────────────────────────────
// JobGuard tests
// ─────────────────────────────────────────────────────────────

func TestJobGuard_Begin(t *testing.T) {
	var g service.JobGuard

	release1, ok := g.Begin("job-1")
	if !ok {
		t.Fatal("expected first Begin to succeed")
	}
	if _, ok := g.Begin("job-1"); ok {
		t.Fatal("expected second Begin for same job to fail")
	}
	if _, running := g.Since("job-1"); !running {
		t.Fatal("expected job-1 to report a start time")
	}
	release2, ok := g.Begin("job-2")
	if !ok {
		t.Fatal("expected Begin for different job to succeed")
	}
	release1()
	release1() // second call is a no-op
	release2()

	if _, running := g.Since("job-1"); running {
		t.Fatal("expected job-1 to be released")
	}
	release, ok := g.Begin("job-1")
	if !ok {
		t.Fatal("expected Begin to succeed after release")
	}
	release()
}

func TestJobGuard_Wait(t *testing.T) {
	var g service.JobGuard

	release, ok := g.Begin("job-a")
	if !ok {
		t.Fatal("expected Begin to succeed")
	}

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := g.Wait(short); err == nil {
		t.Fatal("expected Wait to time out while the job runs")
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	ctx, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	if err := g.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

// ─────────────────────────────────────────────────────────────
// Emitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	m.Emit(context.Background(), "a", 1)
	m.Emit(context.Background(), "b", 2)
	m.Emit(context.Background(), "a", 3)

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if m.Count("a") != 2 {
		t.Errorf("expected 2 'a' events, got %d", m.Count("a"))
	}
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := service.NewBroadcaster()
	ch1, cancel1 := b.Subscribe(4)
	ch2, cancel2 := b.Subscribe(4)
	defer cancel2()

	b.Emit(context.Background(), service.EventCanvasChanged, nil)
	if (<-ch1).Event != service.EventCanvasChanged || (<-ch2).Event != service.EventCanvasChanged {
		t.Fatal("expected both subscribers to receive the event")
	}

	cancel1()
	cancel1()
	if b.Subscribers() != 1 {
		t.Errorf("subscribers = %d, want 1", b.Subscribers())
	}
	if _, open := <-ch1; open {
		t.Error("expected cancelled channel to be closed")
	}
}

func TestBroadcaster_DropsWhenFull(t *testing.T) {
	b := service.NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Emit(context.Background(), "one", nil)
	b.Emit(context.Background(), "two", nil)

	if got := (<-ch).Event; got != "one" {
		t.Errorf("got %q, want one", got)
	}
	select {
	case e := <-ch:
		t.Errorf("unexpected event %q", e.Event)
	default:
	}
}
