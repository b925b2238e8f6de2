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

const itemColumns = `i.id, i.group_id, i.phase_id, i.name, i.description, i.code, i.status, i.weight,
		i.assignee_id, i.assignee_name, i.estimated_hours, i.actual_hours,
		i.planned_start_date, i.planned_end_date, i.actual_start_date, i.actual_end_date,
		i.order_index, i.story_ids, i.created_at, i.updated_at`

type SQLiteItemRepo struct {
	db db.DBTX
}

func NewSQLiteItemRepo(db db.DBTX) *SQLiteItemRepo {
	return &SQLiteItemRepo{db: db}
}

func (r *SQLiteItemRepo) Create(ctx context.Context, i *domain.Item) error {
	stories, err := encodeIDs(i.StoryIDs)
	if err != nil {
		return err
	}
	query := `INSERT INTO wbs_items (id, group_id, phase_id, name, description, code, status, weight,
		assignee_id, assignee_name, estimated_hours, actual_hours,
		planned_start_date, planned_end_date, actual_start_date, actual_end_date,
		order_index, story_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		i.ID,
		i.GroupID,
		i.PhaseID,
		i.Name,
		i.Description,
		i.Code,
		string(i.Status),
		i.Weight,
		stringPtrValue(i.AssigneeID),
		stringPtrValue(i.AssigneeName),
		floatPtrValue(i.EstimatedHours),
		floatPtrValue(i.ActualHours),
		nullableDate(i.PlannedStartDate),
		nullableDate(i.PlannedEndDate),
		nullableDate(i.ActualStartDate),
		nullableDate(i.ActualEndDate),
		i.OrderIndex,
		stories,
		i.CreatedAt.Format(time.RFC3339),
		i.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func (r *SQLiteItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM wbs_items i WHERE i.id = ?`, id)
	i, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return i, err
}

func (r *SQLiteItemRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM wbs_items i
		JOIN wbs_groups g ON i.group_id = g.id
		JOIN phases p ON g.phase_id = p.id
		WHERE p.project_id = ?
		ORDER BY i.order_index, i.id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing items by project: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

func (r *SQLiteItemRepo) Update(ctx context.Context, i *domain.Item) error {
	stories, err := encodeIDs(i.StoryIDs)
	if err != nil {
		return err
	}
	query := `UPDATE wbs_items SET group_id = ?, phase_id = ?, name = ?, description = ?, code = ?,
		status = ?, weight = ?, assignee_id = ?, assignee_name = ?,
		estimated_hours = ?, actual_hours = ?,
		planned_start_date = ?, planned_end_date = ?, actual_start_date = ?, actual_end_date = ?,
		order_index = ?, story_ids = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		i.GroupID,
		i.PhaseID,
		i.Name,
		i.Description,
		i.Code,
		string(i.Status),
		i.Weight,
		stringPtrValue(i.AssigneeID),
		stringPtrValue(i.AssigneeName),
		floatPtrValue(i.EstimatedHours),
		floatPtrValue(i.ActualHours),
		nullableDate(i.PlannedStartDate),
		nullableDate(i.PlannedEndDate),
		nullableDate(i.ActualStartDate),
		nullableDate(i.ActualEndDate),
		i.OrderIndex,
		stories,
		i.UpdatedAt.Format(time.RFC3339),
		i.ID,
	)
	return execAffectingOne(res, err, "updating item "+i.ID)
}

func (r *SQLiteItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wbs_items WHERE id = ?`, id)
	return execAffectingOne(res, err, "deleting item "+id)
}

func scanItem(s rowScanner) (*domain.Item, error) {
	var i domain.Item
	var assigneeID, assigneeName sql.NullString
	var estimated, actual sql.NullFloat64
	var plannedStart, plannedEnd, actualStart, actualEnd sql.NullString
	var statusStr, storiesRaw, createdStr, updatedStr string

	err := s.Scan(
		&i.ID, &i.GroupID, &i.PhaseID, &i.Name, &i.Description, &i.Code, &statusStr, &i.Weight,
		&assigneeID, &assigneeName, &estimated, &actual,
		&plannedStart, &plannedEnd, &actualStart, &actualEnd,
		&i.OrderIndex, &storiesRaw, &createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	if i.Status, err = parseStatus(statusStr); err != nil {
		return nil, fmt.Errorf("item %s: %w", i.ID, err)
	}
	if i.StoryIDs, err = decodeIDs(storiesRaw); err != nil {
		return nil, fmt.Errorf("item %s: %w", i.ID, err)
	}
	i.Assignment = domain.Assignment{AssigneeID: nullableString(assigneeID), AssigneeName: nullableString(assigneeName)}
	i.Effort = domain.Effort{EstimatedHours: nullableFloat(estimated), ActualHours: nullableFloat(actual)}
	i.PlannedStartDate = parseNullableDate(plannedStart)
	i.PlannedEndDate = parseNullableDate(plannedEnd)
	i.ActualStartDate = parseNullableDate(actualStart)
	i.ActualEndDate = parseNullableDate(actualEnd)
	if err := parseTimestamps(createdStr, updatedStr, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, fmt.Errorf("item %s: %w", i.ID, err)
	}
	return &i, nil
}
