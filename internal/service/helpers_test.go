package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/wbs/internal/db"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/alexanderramin/wbs/internal/testutil"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../importer/testdata/release.json"

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type testRepos struct {
	db     *sql.DB
	uow    db.UnitOfWork
	phases repository.PhaseRepo
	groups repository.GroupRepo
	items  repository.ItemRepo
	tasks  repository.TaskRepo
	syncs  repository.SyncStateRepo
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testRepos{
		db:     database,
		uow:    testutil.NewTestUoW(database),
		phases: repository.NewSQLitePhaseRepo(database),
		groups: repository.NewSQLiteGroupRepo(database),
		items:  repository.NewSQLiteItemRepo(database),
		tasks:  repository.NewSQLiteTaskRepo(database),
		syncs:  repository.NewSQLiteSyncStateRepo(database),
	}
}

func (r testRepos) treeService(observers ...UseCaseObserver) TreeService {
	return NewTreeService(r.phases, r.groups, r.items, r.tasks, r.syncs, observers...)
}

func importFixture(t *testing.T, r testRepos) *ImportResult {
	t.Helper()
	result, err := NewImportService(r.uow).ImportFile(context.Background(), fixturePath, "")
	require.NoError(t, err)
	return result
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last(t *testing.T) UseCaseEvent {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.events)
	return o.events[len(o.events)-1]
}

func ptrStr(s string) *string     { return &s }
func ptrInt(i int) *int           { return &i }
func ptrFloat(f float64) *float64 { return &f }
