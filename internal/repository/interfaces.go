package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
)

type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
	ListProjects(ctx context.Context) ([]string, error)
	Update(ctx context.Context, p *domain.Phase) error
	Delete(ctx context.Context, id string) error
	// DeleteProject removes every phase of the project; groups, items and
	// tasks follow through ON DELETE CASCADE.
	DeleteProject(ctx context.Context, projectID string) error
}

type GroupRepo interface {
	Create(ctx context.Context, g *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Group, error)
	Update(ctx context.Context, g *domain.Group) error
	Delete(ctx context.Context, id string) error
}

type ItemRepo interface {
	Create(ctx context.Context, i *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Item, error)
	Update(ctx context.Context, i *domain.Item) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByItem(ctx context.Context, itemID string) ([]*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// SyncState records where a project's local snapshot last came from.
type SyncState struct {
	ProjectID string
	Source    string
	SyncedAt  time.Time
}

type SyncStateRepo interface {
	Get(ctx context.Context, projectID string) (*SyncState, error)
	Upsert(ctx context.Context, s *SyncState) error
	Delete(ctx context.Context, projectID string) error
}
