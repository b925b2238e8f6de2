package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/alexanderramin/wbs/internal/timeline"
	"github.com/alexanderramin/wbs/internal/treestate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_RollsUpStoredSnapshot(t *testing.T) {
	r := setupRepos(t)
	importFixture(t, r)

	now := testNow
	result, err := r.treeService().Tree(context.Background(), TreeRequest{ProjectID: "proj-1", Now: &now})
	require.NoError(t, err)

	assert.False(t, result.Filtered)
	assert.Empty(t, result.Orphans)
	require.Len(t, result.Phases, 2)
	assert.Equal(t, 100, result.Phases[0].EffectiveProgress())

	build := result.Phases[1]
	assert.Equal(t, 60, build.CalculatedProgress)
	assert.Equal(t, 2, build.TotalTasks)
	assert.Equal(t, 80, result.Progress, "equal-weight mean of 100 and 60")
}

func TestTree_FilterKeepsAncestors(t *testing.T) {
	r := setupRepos(t)
	importFixture(t, r)

	now := testNow
	result, err := r.treeService().Tree(context.Background(), TreeRequest{
		ProjectID: "proj-1",
		Now:       &now,
		Filter:    treestate.Filter{Search: "charts"},
	})
	require.NoError(t, err)

	assert.True(t, result.Filtered)
	require.Len(t, result.Phases, 1)
	build := result.Phases[0]
	assert.Equal(t, "Build", build.Name)
	require.Len(t, build.Groups, 1)
	assert.Equal(t, "Frontend", build.Groups[0].Name)
	require.Len(t, build.Groups[0].Items, 1)
	require.Len(t, build.Groups[0].Items[0].Tasks, 1)
	assert.Equal(t, "t-b", build.Groups[0].Items[0].Tasks[0].ID)
	assert.Equal(t, 80, result.Progress, "filtering leaves the computed progress alone")
}

func TestTree_DueFilterUsesRequestTime(t *testing.T) {
	r := setupRepos(t)
	importFixture(t, r)

	now := testNow
	result, err := r.treeService().Tree(context.Background(), TreeRequest{
		ProjectID: "proj-1",
		Now:       &now,
		Filter:    treestate.Filter{Bucket: timeline.BucketOverdue},
	})
	require.NoError(t, err)

	require.Len(t, result.Phases, 1)
	require.Len(t, result.Phases[0].Groups, 1)
	assert.Equal(t, "Backend", result.Phases[0].Groups[0].Name)
}

func TestTree_UnknownProject(t *testing.T) {
	r := setupRepos(t)
	_, err := r.treeService().Tree(context.Background(), TreeRequest{ProjectID: "nope"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSummary_CountsAndSyncState(t *testing.T) {
	r := setupRepos(t)
	importFixture(t, r)

	now := testNow
	result, err := r.treeService().Summary(context.Background(), SummaryRequest{ProjectID: "proj-1", Now: &now})
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, 80, s.Progress)
	assert.Equal(t, 2, s.PhaseCount)
	assert.Equal(t, 2, s.GroupCount)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, 2, s.TaskCount)
	assert.Equal(t, 1, s.TasksByStatus[domain.StatusInProgress])
	assert.Equal(t, 1, s.TasksByStatus[domain.StatusNotStarted])
	assert.Equal(t, 1, s.OverdueItems, "Public API was due 2025-06-10")
	assert.Equal(t, 1, s.UnassignedTasks)

	require.NotNil(t, result.Sync)
	assert.Equal(t, SourceFile, result.Sync.Source)
}

func TestProjects_ListsEveryProject(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	importFixture(t, r)
	_, err := NewImportService(r.uow).ImportSnapshot(ctx, nestedSnapshot(), SourceAPI)
	require.NoError(t, err)

	got, err := r.treeService().Projects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "proj-1", got[0].ProjectID)
	assert.Equal(t, 80, got[0].Progress)
	assert.Equal(t, 2, got[0].PhaseCount)

	assert.Equal(t, "proj-n", got[1].ProjectID)
	assert.Equal(t, 40, got[1].Progress, "root rolls up its only child phase")
	require.NotNil(t, got[1].Sync)
	assert.Equal(t, SourceAPI, got[1].Sync.Source)
}

func TestProjects_Empty(t *testing.T) {
	r := setupRepos(t)
	got, err := r.treeService().Projects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExport_RoundTripsThroughImport(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	importFixture(t, r)
	trees := r.treeService()

	file, err := trees.Export(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", file.ProjectID)
	require.Len(t, file.Tasks, 2)

	other := setupRepos(t)
	_, err = NewImportService(other.uow).ImportSnapshot(ctx, file, SourceFile)
	require.NoError(t, err)

	before, err := trees.Tree(ctx, TreeRequest{ProjectID: "proj-1"})
	require.NoError(t, err)
	after, err := other.treeService().Tree(ctx, TreeRequest{ProjectID: "proj-1"})
	require.NoError(t, err)
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, before.Phases[1].CalculatedProgress, after.Phases[1].CalculatedProgress)
}

func TestTree_ReportsUseCaseEvent(t *testing.T) {
	r := setupRepos(t)
	importFixture(t, r)
	obs := &recordingObserver{}

	_, err := r.treeService(obs).Tree(context.Background(), TreeRequest{ProjectID: "proj-1"})
	require.NoError(t, err)

	event := obs.last(t)
	assert.Equal(t, "tree", event.Name)
	assert.True(t, event.Success)
	assert.Equal(t, 80, event.Fields["progress"])

	_, err = r.treeService(obs).Tree(context.Background(), TreeRequest{ProjectID: "nope"})
	require.Error(t, err)
	assert.False(t, obs.last(t).Success)
}

func TestTree_TimestampedDueDateSurvivesStorage(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	file := &importer.SnapshotFile{
		ProjectID: "proj-t",
		Phases:    []importer.PhaseRecord{{ID: "p1", Name: "Build"}},
		Groups:    []importer.GroupRecord{{ID: "g1", PhaseID: "p1", Name: "Frontend"}},
		Items:     []importer.ItemRecord{{ID: "i1", GroupID: "g1", Name: "Dashboard"}},
		Tasks: []importer.TaskRecord{{
			ID: "t1", ItemID: "i1", Name: "Charts", Status: "IN_PROGRESS",
			PlannedEndDate: ptrStr("2025-06-15T18:00:00Z"),
		}},
	}
	_, err := NewImportService(r.uow).ImportSnapshot(ctx, file, SourceAPI)
	require.NoError(t, err)

	now := testNow
	result, err := r.treeService().Tree(ctx, TreeRequest{ProjectID: "proj-t", Now: &now})
	require.NoError(t, err)
	require.Len(t, result.Phases, 1)
	task := result.Phases[0].Groups[0].Items[0].Tasks[0]
	require.NotNil(t, task.PlannedEndDate)
	assert.False(t, timeline.IsOverdue(task.PlannedEndDate, testNow), "due at 18:00, now is 10:00")
	assert.Equal(t, 1, *timeline.DaysRemaining(task.PlannedEndDate, testNow))

	overdue, err := r.treeService().Tree(ctx, TreeRequest{
		ProjectID: "proj-t",
		Now:       &now,
		Filter:    treestate.Filter{Bucket: timeline.BucketOverdue},
	})
	require.NoError(t, err)
	assert.Empty(t, overdue.Phases)

	exported, err := r.treeService().Export(ctx, "proj-t")
	require.NoError(t, err)
	require.Len(t, exported.Tasks, 1)
	assert.Equal(t, "2025-06-15T18:00:00Z", *exported.Tasks[0].PlannedEndDate)
}
