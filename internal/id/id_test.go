package id

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestNewComponentID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := NewComponentID()
		if seen[v] {
			t.Fatalf("duplicate id %s after %d iterations", v, i)
		}
		if !IsComponentID(v) {
			t.Fatalf("generated id %q is not a component id", v)
		}
		seen[v] = true
	}
}

func TestGenerator_ConcurrentMonotonic(t *testing.T) {
	g := NewGenerator()
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]bool)
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v := g.WithPrefix("x")
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 800 {
		t.Errorf("expected 800 distinct ids, got %d", len(seen))
	}
}

func TestNewProjectID(t *testing.T) {
	if _, err := uuid.Parse(NewProjectID()); err != nil {
		t.Errorf("project id is not a uuid: %v", err)
	}
}

func TestIsComponentID(t *testing.T) {
	if IsComponentID("cmp_nope") {
		t.Error("expected invalid ulid to be rejected")
	}
	if IsComponentID("1712345678901") {
		t.Error("expected unprefixed id to be rejected")
	}
}
