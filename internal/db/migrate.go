package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the schema. Statements are idempotent so it is safe to run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

const statusCheck = `CHECK(status IN ('NOT_STARTED','IN_PROGRESS','COMPLETED','ON_HOLD','CANCELLED'))`

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS phases (
		id                 TEXT PRIMARY KEY,
		project_id         TEXT NOT NULL,
		parent_id          TEXT REFERENCES phases(id) ON DELETE CASCADE,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'NOT_STARTED' ` + statusCheck + `,
		progress           INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		planned_start_date TEXT,
		planned_end_date   TEXT,
		order_index        INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phases_project ON phases(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_phases_parent ON phases(parent_id)`,

	`CREATE TABLE IF NOT EXISTS wbs_groups (
		id                 TEXT PRIMARY KEY,
		phase_id           TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		code               TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'NOT_STARTED' ` + statusCheck + `,
		weight             REAL NOT NULL DEFAULT 100 CHECK(weight BETWEEN 0 AND 100),
		planned_start_date TEXT,
		planned_end_date   TEXT,
		actual_start_date  TEXT,
		actual_end_date    TEXT,
		order_index        INTEGER NOT NULL DEFAULT 0,
		epic_id            TEXT,
		feature_ids        TEXT NOT NULL DEFAULT '[]',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_wbs_groups_phase ON wbs_groups(phase_id)`,

	`CREATE TABLE IF NOT EXISTS wbs_items (
		id                 TEXT PRIMARY KEY,
		group_id           TEXT NOT NULL REFERENCES wbs_groups(id) ON DELETE CASCADE,
		phase_id           TEXT NOT NULL,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		code               TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'NOT_STARTED' ` + statusCheck + `,
		weight             REAL NOT NULL DEFAULT 100 CHECK(weight BETWEEN 0 AND 100),
		assignee_id        TEXT,
		assignee_name      TEXT,
		estimated_hours    REAL,
		actual_hours       REAL,
		planned_start_date TEXT,
		planned_end_date   TEXT,
		actual_start_date  TEXT,
		actual_end_date    TEXT,
		order_index        INTEGER NOT NULL DEFAULT 0,
		story_ids          TEXT NOT NULL DEFAULT '[]',
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_wbs_items_group ON wbs_items(group_id)`,

	`CREATE TABLE IF NOT EXISTS wbs_tasks (
		id                 TEXT PRIMARY KEY,
		item_id            TEXT NOT NULL REFERENCES wbs_items(id) ON DELETE CASCADE,
		group_id           TEXT NOT NULL,
		phase_id           TEXT NOT NULL,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		code               TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT 'NOT_STARTED' ` + statusCheck + `,
		progress           INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
		weight             REAL NOT NULL DEFAULT 100 CHECK(weight BETWEEN 0 AND 100),
		assignee_id        TEXT,
		assignee_name      TEXT,
		estimated_hours    REAL,
		actual_hours       REAL,
		planned_start_date TEXT,
		planned_end_date   TEXT,
		actual_start_date  TEXT,
		actual_end_date    TEXT,
		order_index        INTEGER NOT NULL DEFAULT 0,
		backlog_task_id    TEXT,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_wbs_tasks_item ON wbs_tasks(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wbs_tasks_status ON wbs_tasks(status)`,

	`CREATE TABLE IF NOT EXISTS sync_state (
		project_id TEXT PRIMARY KEY,
		source     TEXT NOT NULL,
		synced_at  TEXT NOT NULL
	)`,
}
