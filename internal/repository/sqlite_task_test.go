package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/testutil"
	"github.com/alexanderramin/wbs/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, ctx context.Context, repos *storeRepos, projectID string) *domain.Item {
	t.Helper()
	_, g := seedGroup(t, ctx, repos, projectID)
	i := testutil.NewTestItem(g, "Public API")
	require.NoError(t, repos.items.Create(ctx, i))
	return i
}

func TestTaskRepo_RoundTrip(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	item := seedItem(t, ctx, repos, "proj-1")

	backlog := "bl-42"
	tk := testutil.NewTestTask(item, "Write schema",
		testutil.WithTaskProgress(55),
		testutil.WithTaskWeight(30),
		testutil.WithTaskStatus(domain.StatusInProgress),
		testutil.WithTaskAssignee("u-2", "Lee"),
		testutil.WithTaskEnd(time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)),
		testutil.WithTaskCode("1.1.1.1"),
	)
	tk.BacklogTaskID = &backlog
	require.NoError(t, repos.tasks.Create(ctx, tk))

	got, err := repos.tasks.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk, got)
}

func TestTaskRepo_ListByItem_Ordered(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	item := seedItem(t, ctx, repos, "proj-1")
	other := seedItem(t, ctx, repos, "proj-1")

	require.NoError(t, repos.tasks.Create(ctx, testutil.NewTestTask(item, "Second", testutil.WithTaskOrder(2))))
	require.NoError(t, repos.tasks.Create(ctx, testutil.NewTestTask(item, "First", testutil.WithTaskOrder(1))))
	require.NoError(t, repos.tasks.Create(ctx, testutil.NewTestTask(other, "Elsewhere")))

	got, err := repos.tasks.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)

	all, err := repos.tasks.ListByProject(ctx, "proj-1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTaskRepo_ProgressOutOfRangeRejectedByStore(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	item := seedItem(t, ctx, repos, "proj-1")

	tk := testutil.NewTestTask(item, "Bad", testutil.WithTaskProgress(150))
	require.Error(t, repos.tasks.Create(ctx, tk))
}

func TestTaskRepo_UpdateProgress(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	item := seedItem(t, ctx, repos, "proj-1")

	tk := testutil.NewTestTask(item, "Schema")
	require.NoError(t, repos.tasks.Create(ctx, tk))

	require.NoError(t, tk.SetProgress(80, tk.UpdatedAt.Add(time.Minute)))
	require.NoError(t, repos.tasks.Update(ctx, tk))

	got, err := repos.tasks.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Progress)
	assert.Equal(t, tk.UpdatedAt, got.UpdatedAt)
}

func TestTaskRepo_DeleteMissing(t *testing.T) {
	repos := newStoreRepos(t)

	assert.ErrorIs(t, repos.tasks.Delete(context.Background(), "missing"), ErrNotFound)
}

func TestTaskRepo_KeepsTimeOfDayOnDates(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	item := seedItem(t, ctx, repos, "proj-1")

	evening := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	tk := testutil.NewTestTask(item, "Ship charts", testutil.WithTaskEnd(evening))
	require.NoError(t, repos.tasks.Create(ctx, tk))

	got, err := repos.tasks.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PlannedEndDate)
	assert.True(t, evening.Equal(*got.PlannedEndDate), "stored as %s", got.PlannedEndDate)

	morning := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.False(t, timeline.IsOverdue(got.PlannedEndDate, morning))
	assert.Equal(t, 1, *timeline.DaysRemaining(got.PlannedEndDate, morning))
}

func TestTaskRepo_ReadsDateOnlyColumns(t *testing.T) {
	repos := newStoreRepos(t)
	ctx := context.Background()
	item := seedItem(t, ctx, repos, "proj-1")
	tk := testutil.NewTestTask(item, "Legacy row")
	require.NoError(t, repos.tasks.Create(ctx, tk))

	_, err := repos.db.ExecContext(ctx, `UPDATE wbs_tasks SET planned_end_date = '2025-06-20' WHERE id = ?`, tk.ID)
	require.NoError(t, err)

	got, err := repos.tasks.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PlannedEndDate)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), *got.PlannedEndDate)
}
