package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/catalog"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/id"
	"sitebuilder/internal/inspector"
	"sitebuilder/internal/monitoring"
)

// ─────────────────────────────────────────────────────────────
// Session — the working canvas and its project lifecycle
// ─────────────────────────────────────────────────────────────
//
// A Session is Unsaved until a project is created or opened; from then on
// every canvas change schedules a debounced write of the whole project.
// Deleting the active project returns the session to Unsaved.

var (
	ErrNoActiveProject = errors.New("no active project")
	ErrNameRequired    = errors.New("project name is required")
)

const defaultSaveTimeout = 10 * time.Second

type Session struct {
	mu       sync.Mutex
	canvas   *canvas.Canvas
	library  *catalog.Library
	projects *ProjectStore
	autosave *Debouncer
	emitter  EventEmitter
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	// nil while Unsaved; Components is not kept current here
	current *domain.Project
}

// SessionDeps holds everything a Session needs. Metrics and IDFunc are optional.
type SessionDeps struct {
	Library       *catalog.Library
	Projects      *ProjectStore
	Emitter       EventEmitter
	Logger        *zap.Logger
	Metrics       *monitoring.Metrics
	AutosaveDelay time.Duration
	IDFunc        func() string
}

func NewSession(deps SessionDeps) *Session {
	var opts []canvas.Option
	if deps.IDFunc != nil {
		opts = append(opts, canvas.WithIDFunc(deps.IDFunc))
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = NopEmitter{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		canvas:   canvas.New(deps.Library, opts...),
		library:  deps.Library,
		projects: deps.Projects,
		autosave: NewDebouncer(deps.AutosaveDelay),
		emitter:  emitter,
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

func (s *Session) Library() *catalog.Library {
	return s.library
}

// ── Canvas operations ──────────────────────────────────────

func (s *Session) Add(ctx context.Context, kind domain.Kind) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	compID, ok := s.canvas.Add(kind)
	if ok {
		s.changedLocked(ctx, "add")
	}
	return compID, ok
}

func (s *Session) Update(ctx context.Context, compID string, patch domain.ComponentPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.canvas.Update(compID, patch)
	if ok {
		s.changedLocked(ctx, "update")
	}
	return ok
}

func (s *Session) UpdateStyle(ctx context.Context, compID string, key domain.StyleKey, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.canvas.UpdateStyle(compID, key, value)
	if ok {
		s.changedLocked(ctx, "update_style")
	}
	return ok
}

func (s *Session) Remove(ctx context.Context, compID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.canvas.Remove(compID)
	if ok {
		s.changedLocked(ctx, "remove")
	}
	return ok
}

// Reorder drops sourceID onto targetID.
func (s *Session) Reorder(ctx context.Context, sourceID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.canvas.Reorder(sourceID, targetID)
	if ok {
		s.changedLocked(ctx, "reorder")
	}
	return ok
}

func (s *Session) Move(ctx context.Context, from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.canvas.Move(from, to)
	if ok && from != to {
		s.changedLocked(ctx, "move")
	}
	return ok
}

// InsertTemplate appends the members of the named block template.
func (s *Session) InsertTemplate(ctx context.Context, templateID string) ([]string, error) {
	tmpl, ok := s.library.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("template %s: %w", templateID, domain.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.canvas.InstantiateTemplate(tmpl)
	if len(ids) > 0 {
		s.changedLocked(ctx, "insert_template")
	}
	return ids, nil
}

// ApplyControl writes one inspector field, refusing attributes the kind
// does not offer.
func (s *Session) ApplyControl(ctx context.Context, compID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if compID == "" {
		compID = s.canvas.SelectedID()
	}
	if err := inspector.Apply(s.canvas, compID, key, value); err != nil {
		return err
	}
	s.changedLocked(ctx, "inspector")
	return nil
}

// ── Selection (not persisted) ──────────────────────────────

func (s *Session) Select(compID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Select(compID)
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.ClearSelection()
}

func (s *Session) DragOver(compID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.DragOver(compID)
}

func (s *Session) ClearDragOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.ClearDragOver()
}

// Inspect returns the selected component and its editor controls.
func (s *Session) Inspect() (domain.Component, []inspector.Control, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.canvas.Selected()
	if !ok {
		return domain.Component{}, nil, false
	}
	return comp, inspector.Controls(comp), true
}

// ── Queries ────────────────────────────────────────────────

func (s *Session) Components() []domain.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Components()
}

func (s *Session) Component(compID string) (domain.Component, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Get(compID)
}

func (s *Session) Info() domain.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() domain.SessionInfo {
	info := domain.SessionInfo{
		State:       domain.SessionUnsaved,
		SelectedID:  s.canvas.SelectedID(),
		DragOverID:  s.canvas.DragOverID(),
		Components:  s.canvas.Len(),
		SavePending: s.autosave.Pending(),
	}
	if s.current != nil {
		info.State = domain.SessionActive
		info.ProjectID = s.current.ID
		info.ProjectName = s.current.Name
	}
	return info
}

// ── Project lifecycle ──────────────────────────────────────

func (s *Session) ListProjects(ctx context.Context) ([]domain.ProjectSummary, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProjectSummary, len(projects))
	for i, p := range projects {
		out[i] = p.Summary()
	}
	return out, nil
}

// Project returns a saved project without touching the canvas.
func (s *Session) Project(ctx context.Context, projectID string) (domain.Project, error) {
	return s.projects.Get(ctx, projectID)
}

// NewProject saves the current canvas as a new project and makes it active.
func (s *Session) NewProject(ctx context.Context, name string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newProjectLocked(ctx, name)
}

func (s *Session) newProjectLocked(ctx context.Context, name string) (domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, ErrNameRequired
	}
	s.autosave.Flush()

	saved, err := s.projects.Save(ctx, domain.Project{
		ID:         id.NewProjectID(),
		Name:       name,
		Components: s.canvas.Components(),
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.setCurrentLocked(saved)
	s.logger.Info("project created", zap.String("project_id", saved.ID), zap.String("name", saved.Name))
	s.emitter.Emit(ctx, EventSessionState, s.infoLocked())
	return saved, nil
}

// Open replaces the working canvas with a stored project.
func (s *Session) Open(ctx context.Context, projectID string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosave.Flush()
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, fmt.Errorf("open project: %w", err)
	}
	s.canvas.Replace(p.Components)
	s.setCurrentLocked(p)
	s.metrics.ObserveMutation("open", s.canvas.Len())
	s.logger.Info("project opened", zap.String("project_id", p.ID), zap.Int("components", len(p.Components)))
	s.emitter.Emit(ctx, EventSessionState, s.infoLocked())
	return p, nil
}

// Delete removes a stored project. confirm must be true. Deleting the
// active project clears the canvas and returns the session to Unsaved.
func (s *Session) Delete(ctx context.Context, projectID string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("delete project %s: %w", projectID, domain.ErrConfirmationRequired)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.current != nil && s.current.ID == projectID
	pending := false
	if active {
		pending = s.autosave.Pending()
		s.autosave.Cancel()
	}
	// A failed delete leaves the session Active; its edits still need writing.
	restore := func() {
		if active && pending {
			s.scheduleLocked()
		}
	}
	removed, err := s.projects.Delete(ctx, projectID)
	if err != nil {
		restore()
		return fmt.Errorf("delete project: %w", err)
	}
	if !removed {
		restore()
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	if active {
		s.current = nil
		s.canvas.Clear()
		s.emitter.Emit(ctx, EventSessionState, s.infoLocked())
	}
	s.logger.Info("project deleted", zap.String("project_id", projectID), zap.Bool("was_active", active))
	s.emitter.Emit(ctx, EventProjectDeleted, map[string]string{"projectId": projectID})
	return nil
}

// Rename renames the active project, or creates one when Unsaved.
func (s *Session) Rename(ctx context.Context, name string) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		if _, err := s.newProjectLocked(ctx, name); err != nil {
			return domain.SessionInfo{}, err
		}
		return s.infoLocked(), nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.SessionInfo{}, ErrNameRequired
	}
	s.current.Name = name
	s.scheduleLocked()
	info := s.infoLocked()
	s.emitter.Emit(ctx, EventSessionState, info)
	return info, nil
}

// Save writes the active project now instead of waiting for the debounce.
func (s *Session) Save(ctx context.Context) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Project{}, ErrNoActiveProject
	}
	s.autosave.Cancel()
	return s.persist(ctx, s.snapshotLocked())
}

// Close flushes any pending autosave.
func (s *Session) Close() {
	s.autosave.Flush()
}

// ── Internals ──────────────────────────────────────────────

func (s *Session) setCurrentLocked(p domain.Project) {
	p.Components = nil
	s.current = &p
}

func (s *Session) snapshotLocked() domain.Project {
	p := *s.current
	p.Components = s.canvas.Components()
	return p
}

func (s *Session) changedLocked(ctx context.Context, op string) {
	s.metrics.ObserveMutation(op, s.canvas.Len())
	s.emitter.Emit(ctx, EventCanvasChanged, map[string]any{"op": op, "components": s.canvas.Len()})
	if s.current != nil {
		s.scheduleLocked()
	}
}

// scheduleLocked captures the canvas now; the debounced write stores
// whatever the last change before the quiet period looked like.
func (s *Session) scheduleLocked() {
	snap := s.snapshotLocked()
	s.autosave.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultSaveTimeout)
		defer cancel()
		s.persist(ctx, snap)
	})
}

// persist must not take s.mu: it runs on the debounce goroutine while
// callers holding s.mu may be waiting on Cancel or Flush.
func (s *Session) persist(ctx context.Context, p domain.Project) (domain.Project, error) {
	saved, err := s.projects.Save(ctx, p)
	s.metrics.ObserveAutosave(err)
	if err != nil {
		s.logger.Error("project save failed", zap.String("project_id", p.ID), zap.Error(err))
		s.emitter.Emit(ctx, EventSaveFailed, map[string]string{"projectId": p.ID, "error": err.Error()})
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	s.logger.Debug("project saved",
		zap.String("project_id", saved.ID),
		zap.Int("components", len(saved.Components)),
		zap.Time("updated_at", saved.UpdatedAt),
	)
	s.emitter.Emit(ctx, EventProjectSaved, saved.Summary())
	return saved, nil
}
