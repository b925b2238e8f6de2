package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/wbs/internal/db"
	"github.com/alexanderramin/wbs/internal/domain"
)

const taskColumns = `t.id, t.item_id, t.group_id, t.phase_id, t.name, t.description, t.code,
		t.status, t.progress, t.weight,
		t.assignee_id, t.assignee_name, t.estimated_hours, t.actual_hours,
		t.planned_start_date, t.planned_end_date, t.actual_start_date, t.actual_end_date,
		t.order_index, t.backlog_task_id, t.created_at, t.updated_at`

type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(db db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: db}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO wbs_tasks (id, item_id, group_id, phase_id, name, description, code,
		status, progress, weight, assignee_id, assignee_name, estimated_hours, actual_hours,
		planned_start_date, planned_end_date, actual_start_date, actual_end_date,
		order_index, backlog_task_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ItemID,
		t.GroupID,
		t.PhaseID,
		t.Name,
		t.Description,
		t.Code,
		string(t.Status),
		t.Progress,
		t.Weight,
		stringPtrValue(t.AssigneeID),
		stringPtrValue(t.AssigneeName),
		floatPtrValue(t.EstimatedHours),
		floatPtrValue(t.ActualHours),
		nullableDate(t.PlannedStartDate),
		nullableDate(t.PlannedEndDate),
		nullableDate(t.ActualStartDate),
		nullableDate(t.ActualEndDate),
		t.OrderIndex,
		stringPtrValue(t.BacklogTaskID),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM wbs_tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

func (r *SQLiteTaskRepo) ListByItem(ctx context.Context, itemID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM wbs_tasks t WHERE t.item_id = ? ORDER BY t.order_index, t.id`
	return r.list(ctx, query, itemID)
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM wbs_tasks t
		JOIN wbs_items i ON t.item_id = i.id
		JOIN wbs_groups g ON i.group_id = g.id
		JOIN phases p ON g.phase_id = p.id
		WHERE p.project_id = ?
		ORDER BY t.order_index, t.id`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteTaskRepo) list(ctx context.Context, query string, arg string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE wbs_tasks SET item_id = ?, group_id = ?, phase_id = ?, name = ?,
		description = ?, code = ?, status = ?, progress = ?, weight = ?,
		assignee_id = ?, assignee_name = ?, estimated_hours = ?, actual_hours = ?,
		planned_start_date = ?, planned_end_date = ?, actual_start_date = ?, actual_end_date = ?,
		order_index = ?, backlog_task_id = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.ItemID,
		t.GroupID,
		t.PhaseID,
		t.Name,
		t.Description,
		t.Code,
		string(t.Status),
		t.Progress,
		t.Weight,
		stringPtrValue(t.AssigneeID),
		stringPtrValue(t.AssigneeName),
		floatPtrValue(t.EstimatedHours),
		floatPtrValue(t.ActualHours),
		nullableDate(t.PlannedStartDate),
		nullableDate(t.PlannedEndDate),
		nullableDate(t.ActualStartDate),
		nullableDate(t.ActualEndDate),
		t.OrderIndex,
		stringPtrValue(t.BacklogTaskID),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	return execAffectingOne(res, err, "updating task "+t.ID)
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wbs_tasks WHERE id = ?`, id)
	return execAffectingOne(res, err, "deleting task "+id)
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var t domain.Task
	var assigneeID, assigneeName, backlogID sql.NullString
	var estimated, actual sql.NullFloat64
	var plannedStart, plannedEnd, actualStart, actualEnd sql.NullString
	var statusStr, createdStr, updatedStr string

	err := s.Scan(
		&t.ID, &t.ItemID, &t.GroupID, &t.PhaseID, &t.Name, &t.Description, &t.Code,
		&statusStr, &t.Progress, &t.Weight,
		&assigneeID, &assigneeName, &estimated, &actual,
		&plannedStart, &plannedEnd, &actualStart, &actualEnd,
		&t.OrderIndex, &backlogID, &createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	if t.Status, err = parseStatus(statusStr); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.Assignment = domain.Assignment{AssigneeID: nullableString(assigneeID), AssigneeName: nullableString(assigneeName)}
	t.Effort = domain.Effort{EstimatedHours: nullableFloat(estimated), ActualHours: nullableFloat(actual)}
	t.PlannedStartDate = parseNullableDate(plannedStart)
	t.PlannedEndDate = parseNullableDate(plannedEnd)
	t.ActualStartDate = parseNullableDate(actualStart)
	t.ActualEndDate = parseNullableDate(actualEnd)
	t.BacklogTaskID = nullableString(backlogID)
	if err := parseTimestamps(createdStr, updatedStr, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	return &t, nil
}
