package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

func TestProjectStore_AbsentKeyIsEmpty(t *testing.T) {
	store := newProjectStore(newMemState())
	projects, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected empty list, got %d", len(projects))
	}
}

func TestProjectStore_MalformedIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":"x"}`, "null"} {
		state := newMemState()
		state.values[service.ProjectsKey] = raw
		store := newProjectStore(state)

		projects, err := store.List(context.Background())
		if err != nil {
			t.Fatalf("List(%q): %v", raw, err)
		}
		if len(projects) != 0 {
			t.Errorf("List(%q) returned %d projects", raw, len(projects))
		}
	}
}

func TestProjectStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	state := newMemState()
	store := newProjectStore(state)

	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })

	first, err := store.Save(ctx, domain.Project{ID: "p1", Name: "A"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !first.CreatedAt.Equal(clock) || !first.UpdatedAt.Equal(clock) {
		t.Errorf("timestamps = %v / %v", first.CreatedAt, first.UpdatedAt)
	}

	clock = clock.Add(time.Minute)
	second, err := store.Save(ctx, domain.Project{
		ID:         "p1",
		Name:       "A2",
		Components: []domain.Component{{ID: "c1", Type: domain.KindText}},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("createdAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updatedAt not advanced: %v", second.UpdatedAt)
	}

	projects, _ := store.List(ctx)
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].Name != "A2" || len(projects[0].Components) != 1 {
		t.Errorf("stored project = %+v", projects[0])
	}
	if state.Writes() != 2 {
		t.Errorf("writes = %d, want 2", state.Writes())
	}
}

func TestProjectStore_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newProjectStore(newMemState())
	store.Save(ctx, domain.Project{ID: "a", Name: "A"})
	store.Save(ctx, domain.Project{ID: "b", Name: "B"})

	if _, err := store.Get(ctx, "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get missing: err = %v", err)
	}

	removed, err := store.Delete(ctx, "a")
	if err != nil || !removed {
		t.Fatalf("Delete: removed=%v err=%v", removed, err)
	}
	removed, err = store.Delete(ctx, "a")
	if err != nil || removed {
		t.Fatalf("second Delete: removed=%v err=%v", removed, err)
	}

	projects, _ := store.List(ctx)
	if len(projects) != 1 || projects[0].ID != "b" {
		t.Errorf("remaining = %+v", projects)
	}
}
