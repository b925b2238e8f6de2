package treestate

import (
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/rollup"
)

// RowKind identifies what a flattened row represents.
type RowKind int

const (
	RowPhase RowKind = iota
	RowGroup
	RowItem
	RowTask
	// RowEmpty marks an expanded node whose children were all filtered out.
	RowEmpty
)

// Row is one visible line of a rendered tree.
type Row struct {
	Kind       RowKind
	ID         string
	Depth      int
	Name       string
	Code       string
	Status     domain.Status
	Progress   int
	Assignee   string
	End        *time.Time
	Expandable bool
	Expanded   bool
	// ChildCount is the number of direct children currently visible.
	ChildCount int
}

// Level maps an expandable row to its expansion level.
func (r Row) Level() (Level, bool) {
	switch r.Kind {
	case RowPhase:
		return LevelPhase, true
	case RowGroup:
		return LevelGroup, true
	case RowItem:
		return LevelItem, true
	}
	return 0, false
}

// Flatten lists the rows visible under exp, depth first.
func Flatten(tree []rollup.PhaseWithWbs, exp *Expansion) []Row {
	var rows []Row
	for _, p := range tree {
		rows = flattenPhase(rows, p, exp, 0)
	}
	return rows
}

func flattenPhase(rows []Row, p rollup.PhaseWithWbs, exp *Expansion, depth int) []Row {
	expanded := exp.IsExpanded(LevelPhase, p.ID)
	rows = append(rows, Row{
		Kind:       RowPhase,
		ID:         p.ID,
		Depth:      depth,
		Name:       p.Name,
		Status:     p.Status,
		Progress:   p.EffectiveProgress(),
		End:        p.PlannedEndDate,
		Expandable: true,
		Expanded:   expanded,
		ChildCount: len(p.Groups) + len(p.Children),
	})
	if !expanded {
		return rows
	}
	if len(p.Groups) == 0 && len(p.Children) == 0 {
		return append(rows, Row{Kind: RowEmpty, ID: p.ID, Depth: depth + 1})
	}
	for _, c := range p.Children {
		rows = flattenPhase(rows, c, exp, depth+1)
	}
	for _, g := range p.Groups {
		rows = flattenGroup(rows, g, exp, depth+1)
	}
	return rows
}

func flattenGroup(rows []Row, g rollup.GroupWithItems, exp *Expansion, depth int) []Row {
	expanded := exp.IsExpanded(LevelGroup, g.ID)
	rows = append(rows, Row{
		Kind:       RowGroup,
		ID:         g.ID,
		Depth:      depth,
		Name:       g.Name,
		Code:       g.Code,
		Status:     g.Status,
		Progress:   g.CalculatedProgress,
		End:        g.PlannedEndDate,
		Expandable: true,
		Expanded:   expanded,
		ChildCount: len(g.Items),
	})
	if !expanded {
		return rows
	}
	if len(g.Items) == 0 {
		return append(rows, Row{Kind: RowEmpty, ID: g.ID, Depth: depth + 1})
	}
	for _, it := range g.Items {
		rows = flattenItem(rows, it, exp, depth+1)
	}
	return rows
}

func flattenItem(rows []Row, it rollup.ItemWithTasks, exp *Expansion, depth int) []Row {
	expanded := exp.IsExpanded(LevelItem, it.ID)
	rows = append(rows, Row{
		Kind:       RowItem,
		ID:         it.ID,
		Depth:      depth,
		Name:       it.Name,
		Code:       it.Code,
		Status:     it.Status,
		Progress:   it.CalculatedProgress,
		Assignee:   it.AssigneeLabel(),
		End:        it.PlannedEndDate,
		Expandable: true,
		Expanded:   expanded,
		ChildCount: len(it.Tasks),
	})
	if !expanded {
		return rows
	}
	if len(it.Tasks) == 0 {
		return append(rows, Row{Kind: RowEmpty, ID: it.ID, Depth: depth + 1})
	}
	for _, t := range it.Tasks {
		rows = append(rows, Row{
			Kind:     RowTask,
			ID:       t.ID,
			Depth:    depth + 1,
			Name:     t.Name,
			Code:     t.Code,
			Status:   t.Status,
			Progress: t.Progress,
			Assignee: t.AssigneeLabel(),
			End:      t.PlannedEndDate,
		})
	}
	return rows
}
