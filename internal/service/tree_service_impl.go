package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/alexanderramin/wbs/internal/rollup"
	"github.com/alexanderramin/wbs/internal/treestate"
)

type treeService struct {
	phases   repository.PhaseRepo
	groups   repository.GroupRepo
	items    repository.ItemRepo
	tasks    repository.TaskRepo
	syncs    repository.SyncStateRepo
	observer UseCaseObserver
}

func NewTreeService(
	phases repository.PhaseRepo,
	groups repository.GroupRepo,
	items repository.ItemRepo,
	tasks repository.TaskRepo,
	syncs repository.SyncStateRepo,
	observers ...UseCaseObserver,
) TreeService {
	return &treeService{
		phases:   phases,
		groups:   groups,
		items:    items,
		tasks:    tasks,
		syncs:    syncs,
		observer: combineObservers(observers),
	}
}

func (s *treeService) Tree(ctx context.Context, req TreeRequest) (result *TreeResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": req.ProjectID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "tree",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	snap, err := s.load(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	tree := rollup.Build(snap)
	result = &TreeResult{
		ProjectID: req.ProjectID,
		Progress:  rollup.PortfolioProgress(tree),
		Phases:    tree,
		Orphans:   snap.Orphans(),
	}

	filter := req.Filter
	if filter.Now.IsZero() {
		filter.Now = nowOr(req.Now)
	}
	if !filter.IsZero() {
		result.Phases = treestate.Apply(tree, filter)
		result.Filtered = true
	}

	fields["phase_count"] = len(snap.Phases)
	fields["task_count"] = len(snap.Tasks)
	fields["progress"] = result.Progress
	fields["filtered"] = result.Filtered
	if len(result.Orphans) > 0 {
		fields["orphan_count"] = len(result.Orphans)
	}
	return result, nil
}

func (s *treeService) Summary(ctx context.Context, req SummaryRequest) (result *SummaryResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": req.ProjectID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "summary",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	snap, err := s.load(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	sync, err := s.syncState(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	summary := rollup.Summarize(rollup.Build(snap), nowOr(req.Now))
	fields["progress"] = summary.Progress
	fields["overdue_tasks"] = summary.OverdueTasks
	return &SummaryResult{
		ProjectID: req.ProjectID,
		Summary:   summary,
		Sync:      sync,
	}, nil
}

func (s *treeService) Projects(ctx context.Context) (out []ProjectProgress, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "projects",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	ids, err := s.phases.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	out = make([]ProjectProgress, 0, len(ids))
	for _, id := range ids {
		snap, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		sync, err := s.syncState(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ProjectProgress{
			ProjectID:  id,
			Progress:   rollup.PortfolioProgress(rollup.Build(snap)),
			PhaseCount: len(snap.Phases),
			Sync:       sync,
		})
	}
	fields["project_count"] = len(out)
	return out, nil
}

func (s *treeService) Export(ctx context.Context, projectID string) (*importer.SnapshotFile, error) {
	snap, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return importer.FromSnapshot(snap), nil
}

// load reads every stored record of the project. A project without phases
// is reported as not found.
func (s *treeService) load(ctx context.Context, projectID string) (rollup.Snapshot, error) {
	snap := rollup.Snapshot{ProjectID: projectID}

	phases, err := s.phases.ListByProject(ctx, projectID)
	if err != nil {
		return snap, fmt.Errorf("listing phases: %w", err)
	}
	if len(phases) == 0 {
		return snap, fmt.Errorf("project %s: %w", projectID, repository.ErrNotFound)
	}
	snap.Phases = phases

	if snap.Groups, err = s.groups.ListByProject(ctx, projectID); err != nil {
		return snap, fmt.Errorf("listing groups: %w", err)
	}
	if snap.Items, err = s.items.ListByProject(ctx, projectID); err != nil {
		return snap, fmt.Errorf("listing items: %w", err)
	}
	if snap.Tasks, err = s.tasks.ListByProject(ctx, projectID); err != nil {
		return snap, fmt.Errorf("listing tasks: %w", err)
	}
	return snap, nil
}

// syncState returns nil when the project has never been imported through
// a tracked source.
func (s *treeService) syncState(ctx context.Context, projectID string) (*repository.SyncState, error) {
	st, err := s.syncs.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	}
	return st, nil
}

func nowOr(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}
