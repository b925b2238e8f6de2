package rollup

import (
	"sort"

	"github.com/alexanderramin/wbs/internal/domain"
)

// Snapshot is one immutable read of a project's WBS records.
type Snapshot struct {
	ProjectID string
	Phases    []*domain.Phase
	Groups    []*domain.Group
	Items     []*domain.Item
	Tasks     []*domain.Task
}

// Orphan describes a record whose parent is absent from the snapshot.
type Orphan struct {
	Kind     string
	ID       string
	ParentID string
}

// Orphans lists every record Build leaves out: phases whose parent chain
// never reaches a root (a missing parent or a parent cycle), and groups,
// items and tasks whose parent is missing or was itself left out.
func (s Snapshot) Orphans() []Orphan {
	phases := s.placedPhases()
	groups := make(map[string]bool, len(s.Groups))
	items := make(map[string]bool, len(s.Items))

	var out []Orphan
	for _, p := range s.Phases {
		if !phases[p.ID] {
			out = append(out, Orphan{Kind: "phase", ID: p.ID, ParentID: *p.ParentID})
		}
	}
	for _, g := range s.Groups {
		if !phases[g.PhaseID] {
			out = append(out, Orphan{Kind: "group", ID: g.ID, ParentID: g.PhaseID})
			continue
		}
		groups[g.ID] = true
	}
	for _, it := range s.Items {
		if !groups[it.GroupID] {
			out = append(out, Orphan{Kind: "item", ID: it.ID, ParentID: it.GroupID})
			continue
		}
		items[it.ID] = true
	}
	for _, t := range s.Tasks {
		if !items[t.ItemID] {
			out = append(out, Orphan{Kind: "task", ID: t.ID, ParentID: t.ItemID})
		}
	}
	return out
}

// placedPhases returns the ids of phases reachable from a root phase.
func (s Snapshot) placedPhases() map[string]bool {
	children := make(map[string][]string, len(s.Phases))
	var queue []string
	for _, p := range s.Phases {
		if p.ParentID == nil {
			queue = append(queue, p.ID)
			continue
		}
		children[*p.ParentID] = append(children[*p.ParentID], p.ID)
	}

	placed := make(map[string]bool, len(s.Phases))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if placed[id] {
			continue
		}
		placed[id] = true
		queue = append(queue, children[id]...)
	}
	return placed
}

func sortByOrder[T any](xs []T, key func(T) (int, string)) {
	sort.SliceStable(xs, func(i, j int) bool {
		oi, idi := key(xs[i])
		oj, idj := key(xs[j])
		if oi != oj {
			return oi < oj
		}
		return idi < idj
	})
}
