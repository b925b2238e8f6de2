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

const groupColumns = `g.id, g.phase_id, g.name, g.description, g.code, g.status, g.weight,
		g.planned_start_date, g.planned_end_date, g.actual_start_date, g.actual_end_date,
		g.order_index, g.epic_id, g.feature_ids, g.created_at, g.updated_at`

type SQLiteGroupRepo struct {
	db db.DBTX
}

func NewSQLiteGroupRepo(db db.DBTX) *SQLiteGroupRepo {
	return &SQLiteGroupRepo{db: db}
}

func (r *SQLiteGroupRepo) Create(ctx context.Context, g *domain.Group) error {
	features, err := encodeIDs(g.FeatureIDs)
	if err != nil {
		return err
	}
	query := `INSERT INTO wbs_groups (id, phase_id, name, description, code, status, weight,
		planned_start_date, planned_end_date, actual_start_date, actual_end_date,
		order_index, epic_id, feature_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		g.ID,
		g.PhaseID,
		g.Name,
		g.Description,
		g.Code,
		string(g.Status),
		g.Weight,
		nullableDate(g.PlannedStartDate),
		nullableDate(g.PlannedEndDate),
		nullableDate(g.ActualStartDate),
		nullableDate(g.ActualEndDate),
		g.OrderIndex,
		stringPtrValue(g.EpicID),
		features,
		g.CreatedAt.Format(time.RFC3339),
		g.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting group: %w", err)
	}
	return nil
}

func (r *SQLiteGroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM wbs_groups g WHERE g.id = ?`, id)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", id, ErrNotFound)
	}
	return g, err
}

func (r *SQLiteGroupRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Group, error) {
	query := `SELECT ` + groupColumns + `
		FROM wbs_groups g
		JOIN phases p ON g.phase_id = p.id
		WHERE p.project_id = ?
		ORDER BY g.order_index, g.id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing groups by project: %w", err)
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}
	return groups, nil
}

func (r *SQLiteGroupRepo) Update(ctx context.Context, g *domain.Group) error {
	features, err := encodeIDs(g.FeatureIDs)
	if err != nil {
		return err
	}
	query := `UPDATE wbs_groups SET phase_id = ?, name = ?, description = ?, code = ?,
		status = ?, weight = ?, planned_start_date = ?, planned_end_date = ?,
		actual_start_date = ?, actual_end_date = ?, order_index = ?, epic_id = ?,
		feature_ids = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		g.PhaseID,
		g.Name,
		g.Description,
		g.Code,
		string(g.Status),
		g.Weight,
		nullableDate(g.PlannedStartDate),
		nullableDate(g.PlannedEndDate),
		nullableDate(g.ActualStartDate),
		nullableDate(g.ActualEndDate),
		g.OrderIndex,
		stringPtrValue(g.EpicID),
		features,
		g.UpdatedAt.Format(time.RFC3339),
		g.ID,
	)
	return execAffectingOne(res, err, "updating group "+g.ID)
}

func (r *SQLiteGroupRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wbs_groups WHERE id = ?`, id)
	return execAffectingOne(res, err, "deleting group "+id)
}

func scanGroup(s rowScanner) (*domain.Group, error) {
	var g domain.Group
	var plannedStart, plannedEnd, actualStart, actualEnd, epicID sql.NullString
	var statusStr, featuresRaw, createdStr, updatedStr string

	err := s.Scan(
		&g.ID, &g.PhaseID, &g.Name, &g.Description, &g.Code, &statusStr, &g.Weight,
		&plannedStart, &plannedEnd, &actualStart, &actualEnd,
		&g.OrderIndex, &epicID, &featuresRaw, &createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning group: %w", err)
	}

	if g.Status, err = parseStatus(statusStr); err != nil {
		return nil, fmt.Errorf("group %s: %w", g.ID, err)
	}
	if g.FeatureIDs, err = decodeIDs(featuresRaw); err != nil {
		return nil, fmt.Errorf("group %s: %w", g.ID, err)
	}
	g.PlannedStartDate = parseNullableDate(plannedStart)
	g.PlannedEndDate = parseNullableDate(plannedEnd)
	g.ActualStartDate = parseNullableDate(actualStart)
	g.ActualEndDate = parseNullableDate(actualEnd)
	g.EpicID = nullableString(epicID)
	if err := parseTimestamps(createdStr, updatedStr, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, fmt.Errorf("group %s: %w", g.ID, err)
	}
	return &g, nil
}
