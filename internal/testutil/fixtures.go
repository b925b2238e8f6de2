package testutil

import (
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/google/uuid"
)

// Phase options
type PhaseOption func(*domain.Phase)

func WithPhaseParent(id string) PhaseOption {
	return func(p *domain.Phase) {
		p.ParentID = &id
	}
}

func WithPhaseProgress(pct int) PhaseOption {
	return func(p *domain.Phase) {
		p.Progress = pct
	}
}

func WithPhaseStatus(s domain.Status) PhaseOption {
	return func(p *domain.Phase) {
		p.Status = s
	}
}

func WithPhaseOrder(i int) PhaseOption {
	return func(p *domain.Phase) {
		p.OrderIndex = i
	}
}

func WithPhaseEnd(d time.Time) PhaseOption {
	return func(p *domain.Phase) {
		p.PlannedEndDate = &d
	}
}

func NewTestPhase(projectID, name string, opts ...PhaseOption) *domain.Phase {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Phase{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Status:    domain.StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Group options
type GroupOption func(*domain.Group)

func WithGroupWeight(w float64) GroupOption {
	return func(g *domain.Group) {
		g.Weight = w
	}
}

func WithGroupStatus(s domain.Status) GroupOption {
	return func(g *domain.Group) {
		g.Status = s
	}
}

func WithGroupOrder(i int) GroupOption {
	return func(g *domain.Group) {
		g.OrderIndex = i
	}
}

func WithGroupCode(code string) GroupOption {
	return func(g *domain.Group) {
		g.Code = code
	}
}

func NewTestGroup(phase *domain.Phase, name string, opts ...GroupOption) *domain.Group {
	now := time.Now().UTC().Truncate(time.Second)
	g := &domain.Group{
		ID:        uuid.New().String(),
		PhaseID:   phase.ID,
		Name:      name,
		Status:    domain.StatusNotStarted,
		Weight:    100,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Item options
type ItemOption func(*domain.Item)

func WithItemWeight(w float64) ItemOption {
	return func(it *domain.Item) {
		it.Weight = w
	}
}

func WithItemStatus(s domain.Status) ItemOption {
	return func(it *domain.Item) {
		it.Status = s
	}
}

func WithItemAssignee(id, name string) ItemOption {
	return func(it *domain.Item) {
		it.AssigneeID = &id
		it.AssigneeName = &name
	}
}

func WithItemEnd(d time.Time) ItemOption {
	return func(it *domain.Item) {
		it.PlannedEndDate = &d
	}
}

func WithItemOrder(i int) ItemOption {
	return func(it *domain.Item) {
		it.OrderIndex = i
	}
}

func NewTestItem(group *domain.Group, name string, opts ...ItemOption) *domain.Item {
	now := time.Now().UTC().Truncate(time.Second)
	it := &domain.Item{
		ID:        uuid.New().String(),
		GroupID:   group.ID,
		PhaseID:   group.PhaseID,
		Name:      name,
		Status:    domain.StatusNotStarted,
		Weight:    100,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskProgress(pct int) TaskOption {
	return func(t *domain.Task) {
		t.Progress = pct
	}
}

func WithTaskWeight(w float64) TaskOption {
	return func(t *domain.Task) {
		t.Weight = w
	}
}

func WithTaskStatus(s domain.Status) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTaskAssignee(id, name string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeID = &id
		t.AssigneeName = &name
	}
}

func WithTaskEnd(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.PlannedEndDate = &d
	}
}

func WithTaskOrder(i int) TaskOption {
	return func(t *domain.Task) {
		t.OrderIndex = i
	}
}

func WithTaskCode(code string) TaskOption {
	return func(t *domain.Task) {
		t.Code = code
	}
}

func NewTestTask(item *domain.Item, name string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC().Truncate(time.Second)
	t := &domain.Task{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		GroupID:   item.GroupID,
		PhaseID:   item.PhaseID,
		Name:      name,
		Status:    domain.StatusNotStarted,
		Weight:    100,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
