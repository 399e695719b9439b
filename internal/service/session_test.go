package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/catalog"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

type sessionFixture struct {
	session  *service.Session
	state    *memState
	projects *service.ProjectStore
	events   *service.MockEmitter
}

func newSession(t *testing.T, delay time.Duration) sessionFixture {
	t.Helper()
	state := newMemState()
	projects := newProjectStore(state)
	events := &service.MockEmitter{}
	s := service.NewSession(service.SessionDeps{
		Library:       catalog.MustDefault(),
		Projects:      projects,
		Emitter:       events,
		Logger:        zap.NewNop(),
		AutosaveDelay: delay,
	})
	t.Cleanup(s.Close)
	return sessionFixture{session: s, state: state, projects: projects, events: events}
}

func TestSession_AddThenDeleteSelected(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	heading, _ := f.session.Add(ctx, domain.KindHeading)
	button, _ := f.session.Add(ctx, domain.KindButton)
	f.session.Select(heading)

	if !f.session.Remove(ctx, heading) {
		t.Fatal("remove failed")
	}
	comps := f.session.Components()
	if len(comps) != 1 || comps[0].ID != button {
		t.Fatalf("canvas = %+v, want [button]", comps)
	}
	if info := f.session.Info(); info.SelectedID != "" {
		t.Errorf("selection = %q, want cleared", info.SelectedID)
	}
}

func TestSession_UnsavedDoesNotWrite(t *testing.T) {
	f := newSession(t, 5*time.Millisecond)
	ctx := context.Background()

	f.session.Add(ctx, domain.KindText)
	time.Sleep(40 * time.Millisecond)

	if f.state.Writes() != 0 {
		t.Errorf("writes = %d, want 0 while unsaved", f.state.Writes())
	}
	if f.session.Info().State != domain.SessionUnsaved {
		t.Errorf("state = %s", f.session.Info().State)
	}
	if f.events.Count(service.EventCanvasChanged) != 1 {
		t.Errorf("canvas events = %d", f.events.Count(service.EventCanvasChanged))
	}
}

func TestSession_AutosaveAfterQuietPeriod(t *testing.T) {
	f := newSession(t, 30*time.Millisecond)
	ctx := context.Background()

	p, err := f.session.NewProject(ctx, "A")
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	if f.session.Info().State != domain.SessionActive {
		t.Fatal("expected Active after create")
	}
	f.session.Add(ctx, domain.KindHeading)

	eventually(t, func() bool {
		stored, err := f.projects.Get(ctx, p.ID)
		return err == nil && len(stored.Components) == 1
	}, "autosave did not persist the component")

	stored, _ := f.projects.Get(ctx, p.ID)
	if stored.UpdatedAt.Before(stored.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", stored.UpdatedAt, stored.CreatedAt)
	}
	if f.events.Count(service.EventProjectSaved) != 1 {
		t.Errorf("saved events = %d", f.events.Count(service.EventProjectSaved))
	}
}

func TestSession_RapidChangesWriteOnce(t *testing.T) {
	f := newSession(t, 50*time.Millisecond)
	ctx := context.Background()

	if _, err := f.session.NewProject(ctx, "Burst"); err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	base := f.state.Writes()

	id, _ := f.session.Add(ctx, domain.KindText)
	for i := 0; i < 20; i++ {
		f.session.UpdateStyle(ctx, id, domain.StylePadding, "1px")
	}

	eventually(t, func() bool { return f.state.Writes() == base+1 }, "expected exactly one autosave")
	time.Sleep(100 * time.Millisecond)
	if got := f.state.Writes() - base; got != 1 {
		t.Errorf("autosave writes = %d, want 1", got)
	}
}

func TestSession_OpenReplacesCanvas(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	f.projects.Save(ctx, domain.Project{
		ID:   "stored",
		Name: "Stored",
		Components: []domain.Component{
			{ID: "x1", Type: domain.KindImage, Content: "https://example.com/a.png"},
		},
	})
	f.session.Add(ctx, domain.KindText)

	if _, err := f.session.Open(ctx, "stored"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	comps := f.session.Components()
	if len(comps) != 1 || comps[0].ID != "x1" {
		t.Fatalf("canvas = %+v", comps)
	}
	info := f.session.Info()
	if info.State != domain.SessionActive || info.ProjectID != "stored" {
		t.Errorf("info = %+v", info)
	}

	if _, err := f.session.Open(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Open missing: err = %v", err)
	}
}

func TestSession_DeleteActiveRevertsToUnsaved(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	p, _ := f.session.NewProject(ctx, "Doomed")
	f.session.Add(ctx, domain.KindButton)

	if err := f.session.Delete(ctx, p.ID, false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if err := f.session.Delete(ctx, p.ID, true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	info := f.session.Info()
	if info.State != domain.SessionUnsaved || info.Components != 0 || info.SavePending {
		t.Errorf("info = %+v", info)
	}
	if _, err := f.projects.Get(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("project still stored: %v", err)
	}
	if err := f.session.Delete(ctx, p.ID, true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestSession_FailedDeleteKeepsPendingEdits(t *testing.T) {
	f := newSession(t, 200*time.Millisecond)
	ctx := context.Background()

	p, err := f.session.NewProject(ctx, "Shared")
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	// another writer removed it from the shared store
	if _, err := f.projects.Delete(ctx, p.ID); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	f.session.Add(ctx, domain.KindHeading)

	if err := f.session.Delete(ctx, p.ID, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: err = %v, want not found", err)
	}
	info := f.session.Info()
	if info.State != domain.SessionActive || info.Components != 1 || !info.SavePending {
		t.Fatalf("info = %+v, want active with a pending save", info)
	}

	eventually(t, func() bool {
		stored, err := f.projects.Get(ctx, p.ID)
		return err == nil && len(stored.Components) == 1
	}, "pending edit was not written after the failed delete")
}

func TestSession_DeleteOtherKeepsActive(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	f.projects.Save(ctx, domain.Project{ID: "other", Name: "Other"})
	p, _ := f.session.NewProject(ctx, "Mine")

	if err := f.session.Delete(ctx, "other", true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if info := f.session.Info(); info.ProjectID != p.ID {
		t.Errorf("active project = %q, want %q", info.ProjectID, p.ID)
	}
}

func TestSession_SaveFlushesImmediately(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	if _, err := f.session.Save(ctx); !errors.Is(err, service.ErrNoActiveProject) {
		t.Fatalf("Save while unsaved: err = %v", err)
	}

	p, _ := f.session.NewProject(ctx, "Now")
	f.session.Add(ctx, domain.KindDivider)
	if !f.session.Info().SavePending {
		t.Fatal("expected a pending autosave")
	}

	saved, err := f.session.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(saved.Components) != 1 {
		t.Errorf("saved components = %d", len(saved.Components))
	}
	if f.session.Info().SavePending {
		t.Error("autosave should no longer be pending")
	}
	stored, _ := f.projects.Get(ctx, p.ID)
	if len(stored.Components) != 1 {
		t.Errorf("stored components = %d", len(stored.Components))
	}
}

func TestSession_RenameWhileUnsavedCreates(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	if _, err := f.session.Rename(ctx, "  "); !errors.Is(err, service.ErrNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
	info, err := f.session.Rename(ctx, "Landing")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if info.State != domain.SessionActive || info.ProjectName != "Landing" {
		t.Errorf("info = %+v", info)
	}

	before := f.events.Count(service.EventSessionState)
	info, _ = f.session.Rename(ctx, "Landing v2")
	if !info.SavePending {
		t.Error("rename of active project should schedule a save")
	}
	if got := f.events.Count(service.EventSessionState); got != before+1 {
		t.Errorf("session state events = %d, want %d", got, before+1)
	}
}

func TestSession_InsertTemplate(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	ids, err := f.session.InsertTemplate(ctx, "hero")
	if err != nil {
		t.Fatalf("InsertTemplate: %v", err)
	}
	if len(ids) != 3 || len(f.session.Components()) != 3 {
		t.Errorf("ids = %v", ids)
	}
	if _, err := f.session.InsertTemplate(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown template: err = %v", err)
	}
}

func TestSession_ApplyControlUsesSelection(t *testing.T) {
	f := newSession(t, time.Hour)
	ctx := context.Background()

	id, _ := f.session.Add(ctx, domain.KindDivider)
	if err := f.session.ApplyControl(ctx, "", "content", "x"); !errors.Is(err, domain.ErrNotEditable) {
		t.Fatalf("expected not editable, got %v", err)
	}
	if err := f.session.ApplyControl(ctx, "", "padding", "40px"); err != nil {
		t.Fatalf("ApplyControl: %v", err)
	}
	comp, _ := f.session.Component(id)
	if comp.Styles[domain.StylePadding] != "40px" {
		t.Errorf("padding = %q", comp.Styles[domain.StylePadding])
	}

	_, controls, ok := f.session.Inspect()
	if !ok || len(controls) != 2 {
		t.Errorf("controls = %+v", controls)
	}
}
