package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"phases", "wbs_groups", "wbs_items", "wbs_tasks", "sync_state"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_phases_project",
		"idx_phases_parent",
		"idx_wbs_groups_phase",
		"idx_wbs_items_group",
		"idx_wbs_tasks_item",
		"idx_wbs_tasks_status",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestSchema_RejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO phases (id, project_id, name, status, created_at, updated_at)
		VALUES ('p1', 'proj', 'Design', 'DONE', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECK")
}

func TestSchema_RejectsOutOfRangeWeight(t *testing.T) {
	db := openTestDB(t)
	insertPhase(t, db, "p1")

	_, err := db.Exec(`INSERT INTO wbs_groups (id, phase_id, name, weight, created_at, updated_at)
		VALUES ('g1', 'p1', 'Backend', 120, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.Error(t, err)
}

func TestSchema_DeletingPhaseCascades(t *testing.T) {
	db := openTestDB(t)
	insertPhase(t, db, "p1")

	stmts := []string{
		`INSERT INTO wbs_groups (id, phase_id, name, created_at, updated_at)
			VALUES ('g1', 'p1', 'Backend', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		`INSERT INTO wbs_items (id, group_id, phase_id, name, created_at, updated_at)
			VALUES ('i1', 'g1', 'p1', 'API', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
		`INSERT INTO wbs_tasks (id, item_id, group_id, phase_id, name, created_at, updated_at)
			VALUES ('t1', 'i1', 'g1', 'p1', 'Schema', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}

	_, err := db.Exec(`DELETE FROM phases WHERE id = 'p1'`)
	require.NoError(t, err)

	for _, table := range []string{"wbs_groups", "wbs_items", "wbs_tasks"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func insertPhase(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO phases (id, project_id, name, created_at, updated_at)
		VALUES (?, 'proj', 'Design', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`, id)
	require.NoError(t, err)
}

func TestOpenDB_PragmasOnEveryConnection(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "wbs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	first, err := db.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var fk int
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, 1, fk, "connection %d", i)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, "wal", mode, "connection %d", i)
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn(MemoryPath))
	assert.Equal(t, "/tmp/wbs.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn("/tmp/wbs.db"))
}
