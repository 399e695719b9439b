package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Project Store — named canvas snapshots under one state key
// ─────────────────────────────────────────────────────────────

// ProjectsKey is the state key holding the serialized project list.
const ProjectsKey = "site-builder-projects"

// ProjectStore persists every project as one JSON array. Each mutation
// rewrites the whole value.
type ProjectStore struct {
	state  domain.StateStore
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex // serializes read-modify-write cycles
}

func NewProjectStore(state domain.StateStore, logger *zap.Logger) *ProjectStore {
	return &ProjectStore{state: state, logger: logger, now: time.Now}
}

// SetClock overrides the time source.
func (s *ProjectStore) SetClock(now func() time.Time) {
	s.now = now
}

// List returns every stored project in save order.
func (s *ProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(ctx)
}

func (s *ProjectStore) Get(ctx context.Context, id string) (domain.Project, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
}

// Save inserts or replaces the project by id and stamps UpdatedAt.
// CreatedAt is kept from the stored record, or set now for a new one.
func (s *ProjectStore) Save(ctx context.Context, p domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.readAll(ctx)
	if err != nil {
		return domain.Project{}, err
	}

	now := s.now()
	p.UpdatedAt = now
	if p.Components == nil {
		p.Components = []domain.Component{}
	}

	i := slices.IndexFunc(projects, func(existing domain.Project) bool { return existing.ID == p.ID })
	if i >= 0 {
		if !projects[i].CreatedAt.IsZero() {
			p.CreatedAt = projects[i].CreatedAt
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		projects[i] = p
	} else {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		projects = append(projects, p)
	}

	if err := s.writeAll(ctx, projects); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// Delete removes the project. It reports whether a record was removed.
func (s *ProjectStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.readAll(ctx)
	if err != nil {
		return false, err
	}
	before := len(projects)
	projects = slices.DeleteFunc(projects, func(p domain.Project) bool { return p.ID == id })
	if len(projects) == before {
		return false, nil
	}
	if err := s.writeAll(ctx, projects); err != nil {
		return false, err
	}
	return true, nil
}

// Import replaces the whole list, e.g. when restoring a backup.
func (s *ProjectStore) Import(ctx context.Context, projects []domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(ctx, projects)
}

// readAll treats an absent or malformed value as an empty list.
func (s *ProjectStore) readAll(ctx context.Context) ([]domain.Project, error) {
	raw, found, err := s.state.Get(ctx, ProjectsKey)
	if err != nil {
		return nil, fmt.Errorf("read projects: %w", err)
	}
	if !found || raw == "" {
		return []domain.Project{}, nil
	}
	var projects []domain.Project
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		s.logger.Warn("stored projects are malformed; treating as empty",
			zap.String("key", ProjectsKey), zap.Error(err))
		return []domain.Project{}, nil
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (s *ProjectStore) writeAll(ctx context.Context, projects []domain.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("marshal projects: %w", err)
	}
	if err := s.state.Put(ctx, ProjectsKey, string(data)); err != nil {
		return fmt.Errorf("write projects: %w", err)
	}
	return nil
}
