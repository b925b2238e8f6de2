package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/wbs/internal/backend"
	"github.com/alexanderramin/wbs/internal/db"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/repository"
)

type syncService struct {
	client   backend.Client
	importer ImportService
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewSyncService(
	client backend.Client,
	importSvc ImportService,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) SyncService {
	return &syncService{
		client:   client,
		importer: importSvc,
		uow:      uow,
		observer: combineObservers(observers),
	}
}

func (s *syncService) Pull(ctx context.Context, projectID string) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "pull",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if s.client == nil {
		return nil, backend.ErrNotConfigured
	}
	file, err := s.client.FetchSnapshot(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching project %s: %w", projectID, err)
	}
	if file.ProjectID != projectID {
		return nil, fmt.Errorf("fetching project %s: backend answered for project %q", projectID, file.ProjectID)
	}

	result, err = s.importer.ImportSnapshot(ctx, file, SourceAPI)
	if err != nil {
		return nil, err
	}
	fields["task_count"] = result.TaskCount
	return result, nil
}

// invalidator is implemented by clients that keep fetched snapshots.
type invalidator interface {
	Invalidate(projectID string)
}

func (s *syncService) Refresh(ctx context.Context, projectID string) (*ImportResult, error) {
	if inv, ok := s.client.(invalidator); ok {
		inv.Invalidate(projectID)
	}
	return s.Pull(ctx, projectID)
}

func (s *syncService) PushTask(ctx context.Context, taskID string, patch backend.TaskPatch) (task *domain.Task, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"task_id": taskID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "push-task",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if s.client == nil {
		return nil, backend.ErrNotConfigured
	}

	rec, err := s.client.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return nil, fmt.Errorf("pushing task %s: %w", taskID, err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return fmt.Errorf("mirroring accepted update: %w", err)
		}
		if err := applyAccepted(t, patch, rec, startedAt); err != nil {
			return fmt.Errorf("mirroring accepted update: %w", err)
		}
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func validatePatch(patch backend.TaskPatch) error {
	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		return fmt.Errorf("progress %d out of range 0..100", *patch.Progress)
	}
	if patch.Status != nil {
		if _, err := domain.ParseStatus(*patch.Status); err != nil {
			return err
		}
	}
	return nil
}

// applyAccepted copies the server's view of the task onto t. Fields the
// server left out of its answer fall back to the values that were sent.
func applyAccepted(t *domain.Task, patch backend.TaskPatch, rec *importer.TaskRecord, now time.Time) error {
	progress, status := patch.Progress, patch.Status
	assigneeID, assigneeName := patch.AssigneeID, patch.AssigneeName
	if rec != nil {
		if rec.Progress != nil {
			v := importer.RoundProgress(rec.Progress)
			progress = &v
		}
		if rec.Status != "" {
			status = &rec.Status
		}
		if rec.AssigneeID != nil {
			assigneeID = rec.AssigneeID
		}
		if rec.AssigneeName != nil {
			assigneeName = rec.AssigneeName
		}
	}

	if progress != nil {
		if err := t.SetProgress(*progress, now); err != nil {
			return err
		}
	}
	if status != nil {
		st, err := domain.ParseStatus(*status)
		if err != nil {
			return err
		}
		if err := t.SetStatus(st, now); err != nil {
			return err
		}
	}
	if assigneeID != nil {
		t.AssigneeID = assigneeID
	}
	if assigneeName != nil {
		t.AssigneeName = assigneeName
	}
	t.UpdatedAt = now
	return nil
}
