package service

import (
	"context"
	"time"

	"github.com/alexanderramin/wbs/internal/backend"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/alexanderramin/wbs/internal/rollup"
	"github.com/alexanderramin/wbs/internal/treestate"
)

// ImportResult holds the outcome of replacing a project's local snapshot.
type ImportResult struct {
	ProjectID  string
	Source     string
	PhaseCount int
	GroupCount int
	ItemCount  int
	TaskCount  int
}

type ImportService interface {
	// ImportFile loads a snapshot JSON file. A non-empty projectID overrides
	// the one recorded in the file.
	ImportFile(ctx context.Context, path string, projectID string) (*ImportResult, error)
	// ImportSnapshot validates file and replaces the project's stored
	// records with it in a single transaction.
	ImportSnapshot(ctx context.Context, file *importer.SnapshotFile, source string) (*ImportResult, error)
}

type TreeRequest struct {
	ProjectID string
	Filter    treestate.Filter
	Now       *time.Time
}

type TreeResult struct {
	ProjectID string
	Progress  int
	Phases    []rollup.PhaseWithWbs
	Orphans   []rollup.Orphan
	// Filtered is set when Phases has been narrowed by the request filter.
	Filtered bool
}

type SummaryRequest struct {
	ProjectID string
	Now       *time.Time
}

type SummaryResult struct {
	ProjectID string
	Summary   rollup.Summary
	Sync      *repository.SyncState
}

// ProjectProgress is one line of the portfolio view.
type ProjectProgress struct {
	ProjectID  string
	Progress   int
	PhaseCount int
	Sync       *repository.SyncState
}

type TreeService interface {
	Tree(ctx context.Context, req TreeRequest) (*TreeResult, error)
	Summary(ctx context.Context, req SummaryRequest) (*SummaryResult, error)
	Projects(ctx context.Context) ([]ProjectProgress, error)
	Export(ctx context.Context, projectID string) (*importer.SnapshotFile, error)
}

type CreateTaskRequest struct {
	ItemID         string
	Name           string
	Description    string
	Code           string
	Status         domain.Status
	Progress       int
	Weight         *float64
	AssigneeID     *string
	AssigneeName   *string
	PlannedEndDate *time.Time
	EstimatedHours *float64
}

// TaskEdit carries the fields of an interactive edit. Nil fields are kept.
type TaskEdit struct {
	Name         *string
	Status       *domain.Status
	Progress     *int
	AssigneeName *string
}

type TaskService interface {
	Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	UpdateProgress(ctx context.Context, id string, progress int) (*domain.Task, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, error)
	Edit(ctx context.Context, id string, edit TaskEdit) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type SyncService interface {
	// Pull fetches the project from the backend and replaces the local copy.
	Pull(ctx context.Context, projectID string) (*ImportResult, error)
	// Refresh is Pull without any cached copy of the project.
	Refresh(ctx context.Context, projectID string) (*ImportResult, error)
	// PushTask sends patch to the backend and mirrors it locally only once
	// the backend has accepted it.
	PushTask(ctx context.Context, taskID string, patch backend.TaskPatch) (*domain.Task, error)
}
