// Package treestate tracks which WBS nodes are expanded in a tree view and
// filters a built tree without touching the underlying snapshot.
package treestate

import (
	"sort"

	"github.com/alexanderramin/wbs/internal/rollup"
)

// Level identifies an expandable tree level. Tasks are leaves.
type Level int

const (
	LevelPhase Level = iota
	LevelGroup
	LevelItem
)

func (l Level) String() string {
	switch l {
	case LevelPhase:
		return "phase"
	case LevelGroup:
		return "group"
	case LevelItem:
		return "item"
	}
	return "unknown"
}

// Expansion holds one set of expanded node ids per level. It is owned by a
// single view and is not safe for concurrent use.
type Expansion struct {
	sets [3]map[string]struct{}
}

func newEmptyExpansion() *Expansion {
	e := &Expansion{}
	for i := range e.sets {
		e.sets[i] = make(map[string]struct{})
	}
	return e
}

// NewExpansion returns the default first-load state: every phase expanded,
// groups and items collapsed.
func NewExpansion(tree []rollup.PhaseWithWbs) *Expansion {
	e := newEmptyExpansion()
	e.seedPhases(tree)
	return e
}

func (e *Expansion) set(l Level) map[string]struct{} {
	if l < LevelPhase || l > LevelItem {
		return nil
	}
	return e.sets[l]
}

// Toggle flips id's membership at level l. Ids that are not in the current
// tree are stored anyway and simply never render.
func (e *Expansion) Toggle(l Level, id string) {
	s := e.set(l)
	if s == nil {
		return
	}
	if _, ok := s[id]; ok {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// IsExpanded reports whether id is expanded at level l.
func (e *Expansion) IsExpanded(l Level, id string) bool {
	_, ok := e.set(l)[id]
	return ok
}

// ExpandAll adds every node of tree to its level's set.
func (e *Expansion) ExpandAll(tree []rollup.PhaseWithWbs) {
	rollup.Walk(tree, func(p *rollup.PhaseWithWbs) {
		e.sets[LevelPhase][p.ID] = struct{}{}
		for _, g := range p.Groups {
			e.sets[LevelGroup][g.ID] = struct{}{}
			for _, it := range g.Items {
				e.sets[LevelItem][it.ID] = struct{}{}
			}
		}
	})
}

// CollapseAll clears every level and then re-seeds the phase level so the
// tree never renders fully blank.
func (e *Expansion) CollapseAll(tree []rollup.PhaseWithWbs) {
	for i := range e.sets {
		e.sets[i] = make(map[string]struct{})
	}
	e.seedPhases(tree)
}

func (e *Expansion) seedPhases(tree []rollup.PhaseWithWbs) {
	rollup.Walk(tree, func(p *rollup.PhaseWithWbs) {
		e.sets[LevelPhase][p.ID] = struct{}{}
	})
}

// Expanded returns the expanded ids at level l, sorted.
func (e *Expansion) Expanded(l Level) []string {
	s := e.set(l)
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
