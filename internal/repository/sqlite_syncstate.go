package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/wbs/internal/db"
)

type SQLiteSyncStateRepo struct {
	db db.DBTX
}

func NewSQLiteSyncStateRepo(db db.DBTX) *SQLiteSyncStateRepo {
	return &SQLiteSyncStateRepo{db: db}
}

func (r *SQLiteSyncStateRepo) Get(ctx context.Context, projectID string) (*SyncState, error) {
	var s SyncState
	var syncedStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT project_id, source, synced_at FROM sync_state WHERE project_id = ?`, projectID,
	).Scan(&s.ProjectID, &s.Source, &syncedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sync state %s: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}
	if s.SyncedAt, err = time.Parse(time.RFC3339, syncedStr); err != nil {
		return nil, fmt.Errorf("parsing synced_at: %w", err)
	}
	return &s, nil
}

func (r *SQLiteSyncStateRepo) Upsert(ctx context.Context, s *SyncState) error {
	query := `INSERT INTO sync_state (project_id, source, synced_at) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET source = excluded.source, synced_at = excluded.synced_at`
	if _, err := r.db.ExecContext(ctx, query, s.ProjectID, s.Source, s.SyncedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upserting sync state: %w", err)
	}
	return nil
}

func (r *SQLiteSyncStateRepo) Delete(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_state WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return nil
}
