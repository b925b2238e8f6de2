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

const phaseColumns = `id, project_id, parent_id, name, description, status, progress,
		planned_start_date, planned_end_date, order_index, created_at, updated_at`

// SQLitePhaseRepo implements PhaseRepo using a SQLite database.
type SQLitePhaseRepo struct {
	db db.DBTX
}

func NewSQLitePhaseRepo(db db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: db}
}

func (r *SQLitePhaseRepo) Create(ctx context.Context, p *domain.Phase) error {
	query := `INSERT INTO phases (` + phaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ProjectID,
		stringPtrValue(p.ParentID),
		p.Name,
		p.Description,
		string(p.Status),
		p.Progress,
		nullableDate(p.PlannedStartDate),
		nullableDate(p.PlannedEndDate),
		p.OrderIndex,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM phases WHERE id = ?`, id)
	p, err := scanPhase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("phase %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *SQLitePhaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE project_id = ? ORDER BY order_index, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing phases by project: %w", err)
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phases: %w", err)
	}
	return phases, nil
}

// ListProjects returns the distinct project ids that have at least one phase.
func (r *SQLitePhaseRepo) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT project_id FROM phases ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return ids, nil
}

func (r *SQLitePhaseRepo) Update(ctx context.Context, p *domain.Phase) error {
	query := `UPDATE phases SET project_id = ?, parent_id = ?, name = ?, description = ?,
		status = ?, progress = ?, planned_start_date = ?, planned_end_date = ?,
		order_index = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.ProjectID,
		stringPtrValue(p.ParentID),
		p.Name,
		p.Description,
		string(p.Status),
		p.Progress,
		nullableDate(p.PlannedStartDate),
		nullableDate(p.PlannedEndDate),
		p.OrderIndex,
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	return execAffectingOne(res, err, "updating phase "+p.ID)
}

func (r *SQLitePhaseRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE id = ?`, id)
	return execAffectingOne(res, err, "deleting phase "+id)
}

func (r *SQLitePhaseRepo) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM phases WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("deleting project phases: %w", err)
	}
	return nil
}

func scanPhase(s rowScanner) (*domain.Phase, error) {
	var p domain.Phase
	var parentID, startStr, endStr sql.NullString
	var statusStr, createdStr, updatedStr string

	err := s.Scan(
		&p.ID, &p.ProjectID, &parentID, &p.Name, &p.Description, &statusStr, &p.Progress,
		&startStr, &endStr, &p.OrderIndex, &createdStr, &updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning phase: %w", err)
	}

	if p.Status, err = parseStatus(statusStr); err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.ID, err)
	}
	p.ParentID = nullableString(parentID)
	p.PlannedStartDate = parseNullableDate(startStr)
	p.PlannedEndDate = parseNullableDate(endStr)
	if err := parseTimestamps(createdStr, updatedStr, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.ID, err)
	}
	return &p, nil
}
