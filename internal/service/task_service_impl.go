package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/db"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTaskService(tasks repository.TaskRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TaskService {
	return &taskService{
		tasks:    tasks,
		uow:      uow,
		observer: combineObservers(observers),
	}
}

func (s *taskService) Create(ctx context.Context, req CreateTaskRequest) (task *domain.Task, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"item_id": req.ItemID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-task",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("task name is required")
	}
	weight := domain.DerefOr(req.Weight, importer.DefaultWeight)
	if weight < 0 || weight > 100 {
		return nil, fmt.Errorf("weight %g out of range 0..100", weight)
	}
	status := req.Status
	if status == "" {
		status = domain.StatusNotStarted
	}

	task = &domain.Task{
		ID:             uuid.New().String(),
		ItemID:         req.ItemID,
		Name:           name,
		Description:    req.Description,
		Code:           req.Code,
		Weight:         weight,
		PlannedEndDate: req.PlannedEndDate,
		Assignment:     domain.Assignment{AssigneeID: req.AssigneeID, AssigneeName: req.AssigneeName},
		Effort:         domain.Effort{EstimatedHours: req.EstimatedHours},
		CreatedAt:      startedAt,
	}
	if err := task.SetStatus(status, startedAt); err != nil {
		return nil, err
	}
	if err := task.SetProgress(req.Progress, startedAt); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		item, err := repository.NewSQLiteItemRepo(tx).GetByID(ctx, req.ItemID)
		if err != nil {
			return fmt.Errorf("resolving item: %w", err)
		}
		task.GroupID = item.GroupID
		task.PhaseID = item.PhaseID

		tasks := repository.NewSQLiteTaskRepo(tx)
		siblings, err := tasks.ListByItem(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		task.OrderIndex = len(siblings)
		return tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	fields["task_id"] = task.ID
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) UpdateProgress(ctx context.Context, id string, progress int) (*domain.Task, error) {
	return s.mutate(ctx, "update-task-progress", id, func(t *domain.Task, now time.Time) error {
		return t.SetProgress(progress, now)
	})
}

func (s *taskService) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, error) {
	return s.mutate(ctx, "update-task-status", id, func(t *domain.Task, now time.Time) error {
		return t.SetStatus(status, now)
	})
}

func (s *taskService) Edit(ctx context.Context, id string, edit TaskEdit) (*domain.Task, error) {
	return s.mutate(ctx, "edit-task", id, func(t *domain.Task, now time.Time) error {
		return applyTaskEdit(t, edit, now)
	})
}

func (s *taskService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "delete-task",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"task_id": id},
		})
	}()
	return s.tasks.Delete(ctx, id)
}

// mutate loads the task, applies fn and writes it back in one transaction.
// Nothing is written when fn fails.
func (s *taskService) mutate(ctx context.Context, name, id string, fn func(*domain.Task, time.Time) error) (task *domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"task_id": id},
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(t, startedAt); err != nil {
			return fmt.Errorf("task %s: %w", id, err)
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

func applyTaskEdit(t *domain.Task, edit TaskEdit, now time.Time) error {
	if edit.Name != nil {
		name := strings.TrimSpace(*edit.Name)
		if name == "" {
			return fmt.Errorf("task name is required")
		}
		t.Name = name
	}
	if edit.Status != nil {
		if err := t.SetStatus(*edit.Status, now); err != nil {
			return err
		}
	}
	if edit.Progress != nil {
		if err := t.SetProgress(*edit.Progress, now); err != nil {
			return err
		}
	}
	if edit.AssigneeName != nil {
		if name := strings.TrimSpace(*edit.AssigneeName); name != "" {
			t.AssigneeName = &name
		} else {
			t.AssigneeName = nil
		}
	}
	t.UpdatedAt = now
	return nil
}
