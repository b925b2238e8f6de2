package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/wbs/internal/db"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/repository"
)

// Sources recorded in sync state.
const (
	SourceFile = "file"
	SourceAPI  = "api"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		uow:      uow,
		observer: combineObservers(observers),
	}
}

func (s *importService) ImportFile(ctx context.Context, path string, projectID string) (*ImportResult, error) {
	file, err := importer.LoadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot file: %w", err)
	}
	if projectID != "" {
		file.ProjectID = projectID
		for i := range file.Phases {
			file.Phases[i].ProjectID = projectID
		}
	}
	return s.ImportSnapshot(ctx, file, SourceFile)
}

func (s *importService) ImportSnapshot(ctx context.Context, file *importer.SnapshotFile, source string) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"source": source}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-snapshot",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if file == nil {
		return nil, fmt.Errorf("import snapshot: no data")
	}
	fields["project_id"] = file.ProjectID

	if errs := importer.ValidateSnapshot(file); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	snap, err := importer.Convert(file, startedAt)
	if err != nil {
		return nil, fmt.Errorf("converting snapshot: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		groups := repository.NewSQLiteGroupRepo(tx)
		items := repository.NewSQLiteItemRepo(tx)
		tasks := repository.NewSQLiteTaskRepo(tx)
		syncs := repository.NewSQLiteSyncStateRepo(tx)

		if err := phases.DeleteProject(ctx, snap.ProjectID); err != nil {
			return fmt.Errorf("clearing project %s: %w", snap.ProjectID, err)
		}
		for _, p := range parentsFirst(snap.Phases) {
			if err := phases.Create(ctx, p); err != nil {
				return fmt.Errorf("creating phase %q: %w", p.Name, err)
			}
		}
		for _, g := range snap.Groups {
			if err := groups.Create(ctx, g); err != nil {
				return fmt.Errorf("creating group %q: %w", g.Name, err)
			}
		}
		for _, it := range snap.Items {
			if err := items.Create(ctx, it); err != nil {
				return fmt.Errorf("creating item %q: %w", it.Name, err)
			}
		}
		for _, t := range snap.Tasks {
			if err := tasks.Create(ctx, t); err != nil {
				return fmt.Errorf("creating task %q: %w", t.Name, err)
			}
		}
		return syncs.Upsert(ctx, &repository.SyncState{
			ProjectID: snap.ProjectID,
			Source:    source,
			SyncedAt:  startedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	result = &ImportResult{
		ProjectID:  snap.ProjectID,
		Source:     source,
		PhaseCount: len(snap.Phases),
		GroupCount: len(snap.Groups),
		ItemCount:  len(snap.Items),
		TaskCount:  len(snap.Tasks),
	}
	fields["phase_count"] = result.PhaseCount
	fields["task_count"] = result.TaskCount
	return result, nil
}

// parentsFirst orders phases so every parent is inserted before its
// children. Phases whose parent never appears keep their relative order at
// the end.
func parentsFirst(phases []*domain.Phase) []*domain.Phase {
	out := make([]*domain.Phase, 0, len(phases))
	placed := make(map[string]bool, len(phases))
	pending := phases
	for len(pending) > 0 {
		var next []*domain.Phase
		for _, p := range pending {
			if p.ParentID == nil || placed[*p.ParentID] {
				out = append(out, p)
				placed[p.ID] = true
				continue
			}
			next = append(next, p)
		}
		if len(next) == len(pending) {
			return append(out, next...)
		}
		pending = next
	}
	return out
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
