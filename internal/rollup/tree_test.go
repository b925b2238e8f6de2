package rollup

import (
	"testing"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_BottomUpConsistency(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "Design")
	group := testutil.NewTestGroup(phase, "Screens")
	done := testutil.NewTestItem(group, "Done item", testutil.WithItemOrder(1))
	open := testutil.NewTestItem(group, "Open item", testutil.WithItemOrder(2))

	snap := Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{group},
		Items:  []*domain.Item{done, open},
		Tasks: []*domain.Task{
			testutil.NewTestTask(done, "a", testutil.WithTaskProgress(100)),
			testutil.NewTestTask(done, "b", testutil.WithTaskProgress(100)),
			testutil.NewTestTask(open, "c", testutil.WithTaskProgress(0)),
			testutil.NewTestTask(open, "d", testutil.WithTaskProgress(0)),
		},
	}

	tree := Build(snap)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Groups, 1)
	items := tree[0].Groups[0].Items
	require.Len(t, items, 2)

	assert.Equal(t, 100, items[0].CalculatedProgress)
	assert.Equal(t, 0, items[1].CalculatedProgress)
	assert.Equal(t, 50, tree[0].Groups[0].CalculatedProgress)
	assert.Equal(t, 50, tree[0].CalculatedProgress)
	assert.Equal(t, 50, tree[0].EffectiveProgress())
}

func TestBuild_WeightedPhaseScenario(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "Build")
	groupA := testutil.NewTestGroup(phase, "A", testutil.WithGroupWeight(60), testutil.WithGroupOrder(1))
	groupB := testutil.NewTestGroup(phase, "B", testutil.WithGroupWeight(40), testutil.WithGroupOrder(2))
	itemA := testutil.NewTestItem(groupA, "Item A")
	itemB := testutil.NewTestItem(groupB, "Item B")

	tree := Build(Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{groupB, groupA},
		Items:  []*domain.Item{itemA, itemB},
		Tasks: []*domain.Task{
			testutil.NewTestTask(itemA, "ta", testutil.WithTaskProgress(80)),
			testutil.NewTestTask(itemB, "tb", testutil.WithTaskProgress(30)),
		},
	})

	require.Len(t, tree, 1)
	groups := tree[0].Groups
	require.Len(t, groups, 2)
	assert.Equal(t, "A", groups[0].Name, "groups are ordered by order index")
	assert.Equal(t, 80, groups[0].Items[0].CalculatedProgress)
	assert.Equal(t, 30, groups[1].Items[0].CalculatedProgress)
	assert.Equal(t, 80, groups[0].CalculatedProgress)
	assert.Equal(t, 30, groups[1].CalculatedProgress)
	assert.Equal(t, 60, tree[0].CalculatedProgress)
}

func TestBuild_Counts(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "Phase")
	g1 := testutil.NewTestGroup(phase, "G1", testutil.WithGroupStatus(domain.StatusCompleted))
	g2 := testutil.NewTestGroup(phase, "G2")
	i1 := testutil.NewTestItem(g1, "I1", testutil.WithItemStatus(domain.StatusCompleted))
	i2 := testutil.NewTestItem(g2, "I2")

	tree := Build(Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{g1, g2},
		Items:  []*domain.Item{i1, i2},
		Tasks: []*domain.Task{
			testutil.NewTestTask(i1, "t1", testutil.WithTaskStatus(domain.StatusCompleted), testutil.WithTaskProgress(100)),
			testutil.NewTestTask(i1, "t2", testutil.WithTaskStatus(domain.StatusCompleted), testutil.WithTaskProgress(100)),
			testutil.NewTestTask(i2, "t3", testutil.WithTaskStatus(domain.StatusInProgress), testutil.WithTaskProgress(50)),
		},
	})

	p := tree[0]
	assert.Equal(t, 2, p.TotalGroups)
	assert.Equal(t, 1, p.CompletedGroups)
	assert.Equal(t, 2, p.TotalItems)
	assert.Equal(t, 1, p.CompletedItems)
	assert.Equal(t, 3, p.TotalTasks)
	assert.Equal(t, 2, p.CompletedTasks)

	var first GroupWithItems
	for _, g := range p.Groups {
		if g.ID == g1.ID {
			first = g
		}
	}
	assert.Equal(t, 1, first.TotalItems)
	assert.Equal(t, 2, first.TotalTasks)
	assert.Equal(t, 2, first.Items[0].CompletedTasks)
}

func TestBuild_PhaseWithoutChildrenUsesManualProgress(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "Kickoff", testutil.WithPhaseProgress(35))
	tree := Build(Snapshot{Phases: []*domain.Phase{phase}})

	require.Len(t, tree, 1)
	assert.False(t, tree[0].HasChildren())
	assert.Equal(t, 35, tree[0].EffectiveProgress())
}

func TestBuild_PhaseWithChildrenIgnoresManualProgress(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "Build", testutil.WithPhaseProgress(90))
	group := testutil.NewTestGroup(phase, "G")
	tree := Build(Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{group},
	})

	assert.True(t, tree[0].HasChildren())
	assert.Equal(t, 0, tree[0].EffectiveProgress(), "an empty group contributes 0")
}

func TestBuild_ItemWithoutTasksIsZero(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "P")
	group := testutil.NewTestGroup(phase, "G")
	item := testutil.NewTestItem(group, "I")
	tree := Build(Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{group},
		Items:  []*domain.Item{item},
	})
	assert.Equal(t, 0, tree[0].Groups[0].Items[0].CalculatedProgress)
	assert.Equal(t, 0, tree[0].Groups[0].Items[0].TotalTasks)
}

func TestBuild_ZeroWeightGroupsDegradeToZero(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "P")
	g := testutil.NewTestGroup(phase, "G", testutil.WithGroupWeight(0))
	item := testutil.NewTestItem(g, "I")
	tree := Build(Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{g},
		Items:  []*domain.Item{item},
		Tasks:  []*domain.Task{testutil.NewTestTask(item, "t", testutil.WithTaskProgress(70))},
	})
	assert.Equal(t, 70, tree[0].Groups[0].CalculatedProgress)
	assert.Equal(t, 0, tree[0].CalculatedProgress)
}

func TestBuild_NestedPhases(t *testing.T) {
	parent := testutil.NewTestPhase("proj", "Release 1", testutil.WithPhaseOrder(1))
	childA := testutil.NewTestPhase("proj", "Sprint A", testutil.WithPhaseParent(parent.ID), testutil.WithPhaseProgress(100), testutil.WithPhaseOrder(1))
	childB := testutil.NewTestPhase("proj", "Sprint B", testutil.WithPhaseParent(parent.ID), testutil.WithPhaseProgress(20), testutil.WithPhaseOrder(2))
	other := testutil.NewTestPhase("proj", "Release 2", testutil.WithPhaseOrder(2), testutil.WithPhaseProgress(10))

	tree := Build(Snapshot{Phases: []*domain.Phase{childB, other, childA, parent}})

	require.Len(t, tree, 2)
	assert.Equal(t, "Release 1", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "Sprint A", tree[0].Children[0].Name)
	assert.Equal(t, 60, tree[0].CalculatedProgress)
	assert.Equal(t, 10, tree[1].CalculatedProgress)
	assert.Equal(t, 35, PortfolioProgress(tree))
}

func TestBuild_NestedPhasesAlongsideGroups(t *testing.T) {
	parent := testutil.NewTestPhase("proj", "Parent")
	child := testutil.NewTestPhase("proj", "Child", testutil.WithPhaseParent(parent.ID), testutil.WithPhaseProgress(40))
	g := testutil.NewTestGroup(parent, "G", testutil.WithGroupWeight(300))
	item := testutil.NewTestItem(g, "I")

	tree := Build(Snapshot{
		Phases: []*domain.Phase{parent, child},
		Groups: []*domain.Group{g},
		Items:  []*domain.Item{item},
		Tasks:  []*domain.Task{testutil.NewTestTask(item, "t", testutil.WithTaskProgress(80))},
	})

	// (80*300 + 40*100) / 400 = 70
	assert.Equal(t, 70, tree[0].CalculatedProgress)
}

func TestBuild_DropsOrphans(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "P")
	ghostPhase := testutil.NewTestPhase("proj", "ghost")
	group := testutil.NewTestGroup(phase, "G")
	lostGroup := testutil.NewTestGroup(ghostPhase, "lost")
	item := testutil.NewTestItem(group, "I")
	lostTask := testutil.NewTestTask(testutil.NewTestItem(group, "missing"), "lost task")
	nestedOrphan := testutil.NewTestPhase("proj", "stray", testutil.WithPhaseParent("nope"))

	snap := Snapshot{
		Phases: []*domain.Phase{phase, nestedOrphan},
		Groups: []*domain.Group{group, lostGroup},
		Items:  []*domain.Item{item},
		Tasks:  []*domain.Task{lostTask},
	}
	tree := Build(snap)

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Groups, 1)
	assert.Empty(t, tree[0].Groups[0].Items[0].Tasks)

	orphans := snap.Orphans()
	require.Len(t, orphans, 3)
	kinds := []string{orphans[0].Kind, orphans[1].Kind, orphans[2].Kind}
	assert.Equal(t, []string{"phase", "group", "task"}, kinds)
}

func TestBuild_PhaseCycleIsUnreachable(t *testing.T) {
	a := testutil.NewTestPhase("proj", "A")
	b := testutil.NewTestPhase("proj", "B", testutil.WithPhaseParent(a.ID))
	a.ParentID = &b.ID

	assert.Empty(t, Build(Snapshot{Phases: []*domain.Phase{a, b}}))
}

func TestOrphans_ReportsEverythingBuildLeavesOut(t *testing.T) {
	root := testutil.NewTestPhase("proj", "Root")
	a := testutil.NewTestPhase("proj", "A")
	b := testutil.NewTestPhase("proj", "B", testutil.WithPhaseParent(a.ID))
	a.ParentID = &b.ID
	stray := testutil.NewTestPhase("proj", "Stray", testutil.WithPhaseParent("nope"))
	underStray := testutil.NewTestPhase("proj", "Under stray", testutil.WithPhaseParent(stray.ID))
	cycleGroup := testutil.NewTestGroup(a, "In cycle")
	cycleItem := testutil.NewTestItem(cycleGroup, "Also lost")

	snap := Snapshot{
		Phases: []*domain.Phase{root, a, b, stray, underStray},
		Groups: []*domain.Group{cycleGroup},
		Items:  []*domain.Item{cycleItem},
	}
	tree := Build(snap)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)

	got := make(map[string]Orphan)
	for _, o := range snap.Orphans() {
		got[o.ID] = o
	}
	assert.Len(t, got, 6)
	assert.Equal(t, Orphan{Kind: "phase", ID: a.ID, ParentID: b.ID}, got[a.ID])
	assert.Equal(t, Orphan{Kind: "phase", ID: b.ID, ParentID: a.ID}, got[b.ID])
	assert.Equal(t, Orphan{Kind: "phase", ID: stray.ID, ParentID: "nope"}, got[stray.ID])
	assert.Equal(t, Orphan{Kind: "phase", ID: underStray.ID, ParentID: stray.ID}, got[underStray.ID])
	assert.Equal(t, "group", got[cycleGroup.ID].Kind)
	assert.Equal(t, "item", got[cycleItem.ID].Kind)
	assert.NotContains(t, got, root.ID)
}

func TestBuild_DoesNotMutateSnapshot(t *testing.T) {
	phase := testutil.NewTestPhase("proj", "P")
	group := testutil.NewTestGroup(phase, "G")
	item := testutil.NewTestItem(group, "I")
	t2 := testutil.NewTestTask(item, "second", testutil.WithTaskOrder(2), testutil.WithTaskProgress(10))
	t1 := testutil.NewTestTask(item, "first", testutil.WithTaskOrder(1), testutil.WithTaskProgress(90))
	snap := Snapshot{
		Phases: []*domain.Phase{phase},
		Groups: []*domain.Group{group},
		Items:  []*domain.Item{item},
		Tasks:  []*domain.Task{t2, t1},
	}

	first := Build(snap)
	tasks := first[0].Groups[0].Items[0].Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Name)
	tasks[0].Progress = 0

	assert.Equal(t, "second", snap.Tasks[0].Name, "snapshot order untouched")
	assert.Equal(t, 90, t1.Progress, "view holds copies")

	second := Build(snap)
	assert.Equal(t, first[0].CalculatedProgress, second[0].CalculatedProgress)
}

func TestPortfolioProgress_Empty(t *testing.T) {
	assert.Equal(t, 0, PortfolioProgress(nil))
}

func TestWalk_VisitsNestedPhases(t *testing.T) {
	parent := testutil.NewTestPhase("proj", "P")
	child := testutil.NewTestPhase("proj", "C", testutil.WithPhaseParent(parent.ID))
	tree := Build(Snapshot{Phases: []*domain.Phase{parent, child}})

	var names []string
	Walk(tree, func(p *PhaseWithWbs) { names = append(names, p.Name) })
	assert.Equal(t, []string{"P", "C"}, names)
}
