package treestate

import (
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/rollup"
	"github.com/alexanderramin/wbs/internal/timeline"
)

// Filter narrows a tree. Zero-valued fields match everything.
type Filter struct {
	Statuses []domain.Status
	// Assignee matches an item or task by assignee id or display name,
	// case-insensitively. Phases and groups carry no assignee.
	Assignee string
	Bucket   timeline.DateBucket
	// Search is a case-insensitive substring of name, code or description.
	Search string
	Now    time.Time
}

// IsZero reports whether f filters nothing.
func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 && f.Assignee == "" && f.Bucket == timeline.BucketAny && strings.TrimSpace(f.Search) == ""
}

type nodeFacts struct {
	status      domain.Status
	end         *time.Time
	assignee    *domain.Assignment
	name        string
	code        string
	description string
}

func (f Filter) matches(n nodeFacts) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == n.status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Assignee != "" {
		if n.assignee == nil || !matchesAssignee(*n.assignee, f.Assignee) {
			return false
		}
	}
	if !f.Bucket.Matches(n.end, f.Now) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(n.name + "\x00" + n.code + "\x00" + n.description)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func matchesAssignee(a domain.Assignment, want string) bool {
	if a.AssigneeID != nil && strings.EqualFold(*a.AssigneeID, want) {
		return true
	}
	return a.AssigneeName != nil && strings.EqualFold(*a.AssigneeName, want)
}

// Apply returns a pruned copy of tree. A node is kept when it matches f
// itself or when any of its descendants is kept; children are always
// filtered on their own. Calculated progress is carried over unchanged.
func Apply(tree []rollup.PhaseWithWbs, f Filter) []rollup.PhaseWithWbs {
	if f.IsZero() {
		return tree
	}
	out := make([]rollup.PhaseWithWbs, 0, len(tree))
	for _, p := range tree {
		if kept, ok := applyPhase(p, f); ok {
			out = append(out, kept)
		}
	}
	return out
}

func applyPhase(p rollup.PhaseWithWbs, f Filter) (rollup.PhaseWithWbs, bool) {
	groups := make([]rollup.GroupWithItems, 0, len(p.Groups))
	for _, g := range p.Groups {
		if kept, ok := applyGroup(g, f); ok {
			groups = append(groups, kept)
		}
	}
	children := make([]rollup.PhaseWithWbs, 0, len(p.Children))
	for _, c := range p.Children {
		if kept, ok := applyPhase(c, f); ok {
			children = append(children, kept)
		}
	}

	self := f.matches(nodeFacts{
		status:      p.Status,
		end:         p.PlannedEndDate,
		name:        p.Name,
		description: p.Description,
	})
	if !self && len(groups) == 0 && len(children) == 0 {
		return p, false
	}
	p.Groups = groups
	p.Children = children
	return p, true
}

func applyGroup(g rollup.GroupWithItems, f Filter) (rollup.GroupWithItems, bool) {
	items := make([]rollup.ItemWithTasks, 0, len(g.Items))
	for _, it := range g.Items {
		if kept, ok := applyItem(it, f); ok {
			items = append(items, kept)
		}
	}
	self := f.matches(nodeFacts{
		status:      g.Status,
		end:         g.PlannedEndDate,
		name:        g.Name,
		code:        g.Code,
		description: g.Description,
	})
	if !self && len(items) == 0 {
		return g, false
	}
	g.Items = items
	return g, true
}

func applyItem(it rollup.ItemWithTasks, f Filter) (rollup.ItemWithTasks, bool) {
	tasks := make([]domain.Task, 0, len(it.Tasks))
	for _, t := range it.Tasks {
		if f.matches(nodeFacts{
			status:      t.Status,
			end:         t.PlannedEndDate,
			assignee:    &t.Assignment,
			name:        t.Name,
			code:        t.Code,
			description: t.Description,
		}) {
			tasks = append(tasks, t)
		}
	}
	self := f.matches(nodeFacts{
		status:      it.Status,
		end:         it.PlannedEndDate,
		assignee:    &it.Assignment,
		name:        it.Name,
		code:        it.Code,
		description: it.Description,
	})
	if !self && len(tasks) == 0 {
		return it, false
	}
	it.Tasks = tasks
	return it, true
}
