package rollup

import "github.com/alexanderramin/wbs/internal/domain"

// ChildPhaseWeight is the weight a nested phase carries next to its
// parent's groups.
const ChildPhaseWeight = 100

// ItemWithTasks is an item plus its tasks and their roll-up.
type ItemWithTasks struct {
	domain.Item
	Tasks              []domain.Task
	TotalTasks         int
	CompletedTasks     int
	CalculatedProgress int
}

// GroupWithItems is a group plus its items and their roll-up.
type GroupWithItems struct {
	domain.Group
	Items              []ItemWithTasks
	TotalItems         int
	CompletedItems     int
	TotalTasks         int
	CompletedTasks     int
	CalculatedProgress int
}

// PhaseWithWbs is a phase plus its groups, nested phases and roll-up.
// Totals cover the phase's own groups; nested phases carry their own.
type PhaseWithWbs struct {
	domain.Phase
	Groups             []GroupWithItems
	Children           []PhaseWithWbs
	TotalGroups        int
	CompletedGroups    int
	TotalItems         int
	CompletedItems     int
	TotalTasks         int
	CompletedTasks     int
	CalculatedProgress int
}

// HasChildren reports whether the phase's progress is derived rather than
// manually set.
func (p PhaseWithWbs) HasChildren() bool {
	return len(p.Groups) > 0 || len(p.Children) > 0
}

// EffectiveProgress is the derived progress when the phase has children and
// the manual Progress otherwise.
func (p PhaseWithWbs) EffectiveProgress() int {
	return p.CalculatedProgress
}

// Build assembles the tree for s and computes every calculated progress.
// Records with unresolved parents are left out (see Snapshot.Orphans), as
// are phases caught in a parent cycle, since no root reaches them.
func Build(s Snapshot) []PhaseWithWbs {
	tasksByItem := make(map[string][]domain.Task)
	for _, t := range s.Tasks {
		tasksByItem[t.ItemID] = append(tasksByItem[t.ItemID], *t)
	}
	itemsByGroup := make(map[string][]domain.Item)
	for _, it := range s.Items {
		itemsByGroup[it.GroupID] = append(itemsByGroup[it.GroupID], *it)
	}
	groupsByPhase := make(map[string][]domain.Group)
	for _, g := range s.Groups {
		groupsByPhase[g.PhaseID] = append(groupsByPhase[g.PhaseID], *g)
	}

	known := make(map[string]bool, len(s.Phases))
	for _, p := range s.Phases {
		known[p.ID] = true
	}
	childrenOf := make(map[string][]domain.Phase)
	var roots []domain.Phase
	for _, p := range s.Phases {
		switch {
		case p.ParentID == nil:
			roots = append(roots, *p)
		case known[*p.ParentID]:
			childrenOf[*p.ParentID] = append(childrenOf[*p.ParentID], *p)
		}
	}

	b := &builder{
		tasksByItem:   tasksByItem,
		itemsByGroup:  itemsByGroup,
		groupsByPhase: groupsByPhase,
		childrenOf:    childrenOf,
	}
	return b.phases(roots)
}

type builder struct {
	tasksByItem   map[string][]domain.Task
	itemsByGroup  map[string][]domain.Item
	groupsByPhase map[string][]domain.Group
	childrenOf    map[string][]domain.Phase
}

func (b *builder) phases(ps []domain.Phase) []PhaseWithWbs {
	sortByOrder(ps, func(p domain.Phase) (int, string) { return p.OrderIndex, p.ID })
	out := make([]PhaseWithWbs, 0, len(ps))
	for _, p := range ps {
		out = append(out, b.phase(p))
	}
	return out
}

func (b *builder) phase(p domain.Phase) PhaseWithWbs {
	groups := b.groupsByPhase[p.ID]
	sortByOrder(groups, func(g domain.Group) (int, string) { return g.OrderIndex, g.ID })

	view := PhaseWithWbs{Phase: p, Groups: make([]GroupWithItems, 0, len(groups))}
	parts := make([]Weighted, 0, len(groups))
	for _, g := range groups {
		gv := b.group(g)
		view.Groups = append(view.Groups, gv)
		view.TotalGroups++
		if gv.Status.IsCompleted() {
			view.CompletedGroups++
		}
		view.TotalItems += gv.TotalItems
		view.CompletedItems += gv.CompletedItems
		view.TotalTasks += gv.TotalTasks
		view.CompletedTasks += gv.CompletedTasks
		parts = append(parts, Weighted{Weight: gv.Weight, Progress: float64(gv.CalculatedProgress)})
	}

	view.Children = b.phases(b.childrenOf[p.ID])
	for _, c := range view.Children {
		parts = append(parts, Weighted{Weight: ChildPhaseWeight, Progress: float64(c.EffectiveProgress())})
	}

	if view.HasChildren() {
		view.CalculatedProgress = WeightedProgress(parts)
	} else {
		view.CalculatedProgress = p.Progress
	}
	return view
}

func (b *builder) group(g domain.Group) GroupWithItems {
	items := b.itemsByGroup[g.ID]
	sortByOrder(items, func(it domain.Item) (int, string) { return it.OrderIndex, it.ID })

	view := GroupWithItems{Group: g, Items: make([]ItemWithTasks, 0, len(items))}
	parts := make([]Weighted, 0, len(items))
	for _, it := range items {
		iv := b.item(it)
		view.Items = append(view.Items, iv)
		view.TotalItems++
		if iv.Status.IsCompleted() {
			view.CompletedItems++
		}
		view.TotalTasks += iv.TotalTasks
		view.CompletedTasks += iv.CompletedTasks
		parts = append(parts, Weighted{Weight: iv.Weight, Progress: float64(iv.CalculatedProgress)})
	}
	view.CalculatedProgress = WeightedProgress(parts)
	return view
}

func (b *builder) item(it domain.Item) ItemWithTasks {
	tasks := append([]domain.Task(nil), b.tasksByItem[it.ID]...)
	sortByOrder(tasks, func(t domain.Task) (int, string) { return t.OrderIndex, t.ID })

	view := ItemWithTasks{Item: it, Tasks: tasks}
	parts := make([]Weighted, 0, len(tasks))
	for _, t := range tasks {
		view.TotalTasks++
		if t.Status.IsCompleted() {
			view.CompletedTasks++
		}
		parts = append(parts, Weighted{Weight: t.Weight, Progress: float64(t.Progress)})
	}
	view.CalculatedProgress = WeightedProgress(parts)
	return view
}

// PortfolioProgress rolls top-level phases up with equal weight.
func PortfolioProgress(phases []PhaseWithWbs) int {
	parts := make([]Weighted, 0, len(phases))
	for _, p := range phases {
		parts = append(parts, Weighted{Weight: 1, Progress: float64(p.EffectiveProgress())})
	}
	return WeightedProgress(parts)
}

// Walk calls fn for every phase in the tree, parents before children.
func Walk(phases []PhaseWithWbs, fn func(p *PhaseWithWbs)) {
	for i := range phases {
		fn(&phases[i])
		Walk(phases[i].Children, fn)
	}
}
