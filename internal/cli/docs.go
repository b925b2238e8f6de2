package cli

import (
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/rollup"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/alexanderramin/wbs/internal/timeline"
)

// Structured output documents for --output json|yaml. Dates are rendered
// as YYYY-MM-DD; overdue and days-left are derived at render time.

type treeDoc struct {
	ProjectID string     `json:"projectId" yaml:"projectId"`
	Progress  int        `json:"progress" yaml:"progress"`
	Filtered  bool       `json:"filtered,omitempty" yaml:"filtered,omitempty"`
	Phases    []phaseDoc `json:"phases" yaml:"phases"`
}

// DueFacts is inlined into every node document.
type DueFacts struct {
	PlannedEndDate string `json:"plannedEndDate,omitempty" yaml:"plannedEndDate,omitempty"`
	DaysRemaining  *int   `json:"daysRemaining,omitempty" yaml:"daysRemaining,omitempty"`
	Overdue        bool   `json:"overdue,omitempty" yaml:"overdue,omitempty"`
}

type phaseDoc struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name" yaml:"name"`
	Status   domain.Status `json:"status" yaml:"status"`
	Progress int           `json:"progress" yaml:"progress"`
	DueFacts `yaml:",inline"`
	Tasks    counts        `json:"tasks" yaml:"tasks"`
	Children []phaseDoc    `json:"children,omitempty" yaml:"children,omitempty"`
	Groups   []groupDoc    `json:"groups,omitempty" yaml:"groups,omitempty"`
}

type groupDoc struct {
	ID       string        `json:"id" yaml:"id"`
	Code     string        `json:"code,omitempty" yaml:"code,omitempty"`
	Name     string        `json:"name" yaml:"name"`
	Status   domain.Status `json:"status" yaml:"status"`
	Weight   float64       `json:"weight" yaml:"weight"`
	Progress int           `json:"progress" yaml:"progress"`
	DueFacts `yaml:",inline"`
	Items    []itemDoc     `json:"items,omitempty" yaml:"items,omitempty"`
}

type itemDoc struct {
	ID       string        `json:"id" yaml:"id"`
	Code     string        `json:"code,omitempty" yaml:"code,omitempty"`
	Name     string        `json:"name" yaml:"name"`
	Status   domain.Status `json:"status" yaml:"status"`
	Weight   float64       `json:"weight" yaml:"weight"`
	Progress int           `json:"progress" yaml:"progress"`
	Assignee string        `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	DueFacts `yaml:",inline"`
	Tasks    []taskDoc     `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

type taskDoc struct {
	ID       string        `json:"id" yaml:"id"`
	Code     string        `json:"code,omitempty" yaml:"code,omitempty"`
	Name     string        `json:"name" yaml:"name"`
	Status   domain.Status `json:"status" yaml:"status"`
	Weight   float64       `json:"weight" yaml:"weight"`
	Progress int           `json:"progress" yaml:"progress"`
	Assignee string        `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	DueFacts `yaml:",inline"`
}

type counts struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
}

type summaryDoc struct {
	ProjectID        string         `json:"projectId" yaml:"projectId"`
	Progress         int            `json:"progress" yaml:"progress"`
	Phases           int            `json:"phases" yaml:"phases"`
	Groups           int            `json:"groups" yaml:"groups"`
	Items            int            `json:"items" yaml:"items"`
	Tasks            int            `json:"tasks" yaml:"tasks"`
	TasksByStatus    map[string]int `json:"tasksByStatus" yaml:"tasksByStatus"`
	OverdueTasks     int            `json:"overdueTasks" yaml:"overdueTasks"`
	OverdueItems     int            `json:"overdueItems" yaml:"overdueItems"`
	DueThisWeekTasks int            `json:"dueThisWeekTasks" yaml:"dueThisWeekTasks"`
	UnassignedTasks  int            `json:"unassignedTasks" yaml:"unassignedTasks"`
	SyncSource       string         `json:"syncSource,omitempty" yaml:"syncSource,omitempty"`
	SyncedAt         *time.Time     `json:"syncedAt,omitempty" yaml:"syncedAt,omitempty"`
}

type projectDoc struct {
	ProjectID  string     `json:"projectId" yaml:"projectId"`
	Progress   int        `json:"progress" yaml:"progress"`
	Phases     int        `json:"phases" yaml:"phases"`
	SyncSource string     `json:"syncSource,omitempty" yaml:"syncSource,omitempty"`
	SyncedAt   *time.Time `json:"syncedAt,omitempty" yaml:"syncedAt,omitempty"`
}

func newDueFacts(status domain.Status, end *time.Time, now time.Time) DueFacts {
	if end == nil {
		return DueFacts{}
	}
	return DueFacts{
		PlannedEndDate: timeline.FormatDate(*end),
		DaysRemaining:  timeline.DaysRemaining(end, now),
		Overdue:        timeline.IsActionableOverdue(status, end, now),
	}
}

func newTreeDoc(res *service.TreeResult, now time.Time) treeDoc {
	doc := treeDoc{
		ProjectID: res.ProjectID,
		Progress:  res.Progress,
		Filtered:  res.Filtered,
		Phases:    make([]phaseDoc, 0, len(res.Phases)),
	}
	for _, p := range res.Phases {
		doc.Phases = append(doc.Phases, newPhaseDoc(p, now))
	}
	return doc
}

func newPhaseDoc(p rollup.PhaseWithWbs, now time.Time) phaseDoc {
	doc := phaseDoc{
		ID:       p.ID,
		Name:     p.Name,
		Status:   p.Status,
		Progress: p.EffectiveProgress(),
		DueFacts: newDueFacts(p.Status, p.PlannedEndDate, now),
		Tasks:    counts{Total: p.TotalTasks, Completed: p.CompletedTasks},
	}
	for _, c := range p.Children {
		doc.Children = append(doc.Children, newPhaseDoc(c, now))
	}
	for _, g := range p.Groups {
		gd := groupDoc{
			ID:       g.ID,
			Code:     g.Code,
			Name:     g.Name,
			Status:   g.Status,
			Weight:   g.Weight,
			Progress: g.CalculatedProgress,
			DueFacts: newDueFacts(g.Status, g.PlannedEndDate, now),
		}
		for _, it := range g.Items {
			id := itemDoc{
				ID:       it.ID,
				Code:     it.Code,
				Name:     it.Name,
				Status:   it.Status,
				Weight:   it.Weight,
				Progress: it.CalculatedProgress,
				Assignee: it.AssigneeLabel(),
				DueFacts: newDueFacts(it.Status, it.PlannedEndDate, now),
			}
			for _, t := range it.Tasks {
				id.Tasks = append(id.Tasks, taskDoc{
					ID:       t.ID,
					Code:     t.Code,
					Name:     t.Name,
					Status:   t.Status,
					Weight:   t.Weight,
					Progress: t.Progress,
					Assignee: t.AssigneeLabel(),
					DueFacts: newDueFacts(t.Status, t.PlannedEndDate, now),
				})
			}
			gd.Items = append(gd.Items, id)
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return doc
}

func newSummaryDoc(res *service.SummaryResult) summaryDoc {
	s := res.Summary
	doc := summaryDoc{
		ProjectID:        res.ProjectID,
		Progress:         s.Progress,
		Phases:           s.PhaseCount,
		Groups:           s.GroupCount,
		Items:            s.ItemCount,
		Tasks:            s.TaskCount,
		TasksByStatus:    make(map[string]int, len(s.TasksByStatus)),
		OverdueTasks:     s.OverdueTasks,
		OverdueItems:     s.OverdueItems,
		DueThisWeekTasks: s.DueThisWeekTasks,
		UnassignedTasks:  s.UnassignedTasks,
	}
	for st, n := range s.TasksByStatus {
		doc.TasksByStatus[string(st)] = n
	}
	if res.Sync != nil {
		doc.SyncSource = res.Sync.Source
		doc.SyncedAt = &res.Sync.SyncedAt
	}
	return doc
}

func newProjectDoc(p service.ProjectProgress) projectDoc {
	doc := projectDoc{ProjectID: p.ProjectID, Progress: p.Progress, Phases: p.PhaseCount}
	if p.Sync != nil {
		doc.SyncSource = p.Sync.Source
		doc.SyncedAt = &p.Sync.SyncedAt
	}
	return doc
}
