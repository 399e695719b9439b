package domain

import (
	"context"
	"time"
)

// Project is a named snapshot of a canvas.
type Project struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// ProjectSummary is the listing view of a project.
type ProjectSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ComponentCount int       `json:"componentCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:             p.ID,
		Name:           p.Name,
		ComponentCount: len(p.Components),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// StateStore is the local persisted-state slot: string values under string keys.
// Get reports found=false for an absent key.
type StateStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Close() error
}
