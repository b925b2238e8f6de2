package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGroup(t *testing.T, ctx context.Context, repos *storeRepos, projectID string) (*domain.Phase, *domain.Group) {
	t.Helper()
	p := testutil.NewTestPhase(projectID, "Build")
	require.NoError(t, repos.phases.Create(ctx, p))
	g := testutil.NewTestGroup(p, "Backend")
	require.NoError(t, repos.groups.Create(ctx, g))
	return p, g
}

type storeRepos struct {
	db     *sql.DB
	phases *SQLitePhaseRepo
	groups *SQLiteGroupRepo
	items  *SQLiteItemRepo
	tasks  *SQLiteTaskRepo
}

func newStoreRepos(t *testing.T) *storeRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &storeRepos{
		db:     database,
		phases: NewSQLitePhaseRepo(database),
		groups: NewSQLiteGroupRepo(database),
		items:  NewSQLiteItemRepo(database),
		tasks:  NewSQLiteTaskRepo(database),
	}
}

func TestItemRepo_RoundTrip(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	_, g := seedGroup(t, ctx, repos, "proj-1")

	end := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	est, act := 16.0, 4.5
	i := testutil.NewTestItem(g, "Public API",
		testutil.WithItemAssignee("u-1", "Kim"),
		testutil.WithItemEnd(end),
		testutil.WithItemWeight(40),
	)
	i.Effort = domain.Effort{EstimatedHours: &est, ActualHours: &act}
	i.StoryIDs = []string{"s-1"}
	require.NoError(t, repos.items.Create(ctx, i))

	got, err := repos.items.GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, i, got)
	assert.Equal(t, "Kim", got.AssigneeLabel())
}

func TestItemRepo_NullAssignmentStaysNil(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	_, g := seedGroup(t, ctx, repos, "proj-1")

	i := testutil.NewTestItem(g, "Unowned")
	require.NoError(t, repos.items.Create(ctx, i))

	got, err := repos.items.GetByID(ctx, i.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssigneeID)
	assert.Nil(t, got.AssigneeName)
	assert.Nil(t, got.EstimatedHours)
	assert.Nil(t, got.PlannedEndDate)
}

func TestItemRepo_ListByProject(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	_, g1 := seedGroup(t, ctx, repos, "proj-1")
	_, g2 := seedGroup(t, ctx, repos, "proj-2")

	require.NoError(t, repos.items.Create(ctx, testutil.NewTestItem(g1, "B", testutil.WithItemOrder(2))))
	require.NoError(t, repos.items.Create(ctx, testutil.NewTestItem(g1, "A", testutil.WithItemOrder(1))))
	require.NoError(t, repos.items.Create(ctx, testutil.NewTestItem(g2, "Other")))

	got, err := repos.items.ListByProject(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
}

func TestItemRepo_GetByID_NotFound(t *testing.T) {
	repos := newStoreRepos(t)

	_, err := repos.items.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
