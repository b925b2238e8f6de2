package rollup

import (
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/timeline"
)

// Summary feeds the KPI cards of a project dashboard.
type Summary struct {
	GeneratedAt      time.Time
	Progress         int
	PhaseCount       int
	GroupCount       int
	ItemCount        int
	TaskCount        int
	TasksByStatus    map[domain.Status]int
	OverdueTasks     int
	OverdueItems     int
	DueThisWeekTasks int
	UnassignedTasks  int
	CompletedTaskPct float64
}

// Summarize walks the whole tree once. Overdue counts only include work
// whose status is not COMPLETED.
func Summarize(tree []PhaseWithWbs, now time.Time) Summary {
	s := Summary{
		GeneratedAt:   now,
		Progress:      PortfolioProgress(tree),
		TasksByStatus: make(map[domain.Status]int, len(domain.AllStatuses)),
	}
	for _, st := range domain.AllStatuses {
		s.TasksByStatus[st] = 0
	}

	Walk(tree, func(p *PhaseWithWbs) {
		s.PhaseCount++
		for _, g := range p.Groups {
			s.GroupCount++
			for _, it := range g.Items {
				s.ItemCount++
				if timeline.IsActionableOverdue(it.Status, it.PlannedEndDate, now) {
					s.OverdueItems++
				}
				for _, t := range it.Tasks {
					s.TaskCount++
					s.TasksByStatus[t.Status]++
					if timeline.IsActionableOverdue(t.Status, t.PlannedEndDate, now) {
						s.OverdueTasks++
					} else if !t.Status.IsCompleted() && timeline.BucketOf(t.PlannedEndDate, now) == timeline.BucketThisWeek {
						s.DueThisWeekTasks++
					}
					if t.AssigneeLabel() == "" {
						s.UnassignedTasks++
					}
				}
			}
		}
	})

	if s.TaskCount > 0 {
		s.CompletedTaskPct = float64(s.TasksByStatus[domain.StatusCompleted]) / float64(s.TaskCount) * 100
	}
	return s
}
