package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/preset"
	"github.com/alexanderramin/wbs/internal/repository"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/charmbracelet/lipgloss"
)

const summaryBarWidth = 20

// FormatSummary renders the KPI overview of one project.
func FormatSummary(res *service.SummaryResult, now time.Time) string {
	s := res.Summary
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n", Bold(res.ProjectID), RenderProgress(s.Progress, summaryBarWidth)))
	b.WriteString(Dim(syncLine(res.Sync, now)) + "\n\n")

	b.WriteString(RenderTable(
		[]string{"PHASES", "GROUPS", "ITEMS", "TASKS", "DONE"},
		[][]string{{
			fmt.Sprint(s.PhaseCount),
			fmt.Sprint(s.GroupCount),
			fmt.Sprint(s.ItemCount),
			fmt.Sprint(s.TaskCount),
			fmt.Sprintf("%.0f%%", s.CompletedTaskPct),
		}},
	))
	b.WriteString("\n")

	statusRows := make([][]string, 0, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		statusRows = append(statusRows, []string{StatusPill(st), fmt.Sprint(s.TasksByStatus[st])})
	}
	b.WriteString(RenderTable([]string{"STATUS", "TASKS"}, statusRows))
	b.WriteString("\n")

	b.WriteString(attentionLine("overdue tasks", s.OverdueTasks, StyleRed) + "\n")
	b.WriteString(attentionLine("overdue items", s.OverdueItems, StyleRed) + "\n")
	b.WriteString(attentionLine("tasks due this week", s.DueThisWeekTasks, StyleYellow) + "\n")
	b.WriteString(attentionLine("unassigned tasks", s.UnassignedTasks, StyleYellow) + "\n")

	return RenderBox("Summary", b.String())
}

// FormatProjects renders the portfolio table.
func FormatProjects(projects []service.ProjectProgress, now time.Time) string {
	if len(projects) == 0 {
		return Dim("No projects imported yet. Run `wbs import` or `wbs pull`.") + "\n"
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		source, synced := Dim("--"), Dim("--")
		if p.Sync != nil {
			source = p.Sync.Source
			synced = RelativeTime(p.Sync.SyncedAt, now)
		}
		rows = append(rows, []string{
			Bold(p.ProjectID),
			RenderProgress(p.Progress, 10),
			fmt.Sprint(p.PhaseCount),
			source,
			synced,
		})
	}
	return RenderTable([]string{"PROJECT", "PROGRESS", "PHASES", "SOURCE", "SYNCED"}, rows)
}

// FormatImportResult renders the one-line confirmation of an import or pull.
func FormatImportResult(res *service.ImportResult) string {
	return fmt.Sprintf("%s %s from %s: %d phases, %d groups, %d items, %d tasks\n",
		StyleGreen.Render("✔"), Bold(res.ProjectID), res.Source,
		res.PhaseCount, res.GroupCount, res.ItemCount, res.TaskCount)
}

// FormatTask renders a single task after an edit.
func FormatTask(t *domain.Task, now time.Time) string {
	line := fmt.Sprintf("%s %s  %s  %s", StatusIcon(t.Status), Bold(t.Name), StatusPill(t.Status), RenderProgress(t.Progress, 10))
	if due := DueBadge(t.Status, t.PlannedEndDate, now); due != "" {
		line += "  " + due
	}
	if who := t.AssigneeLabel(); who != "" {
		line += "  " + StylePurple.Render("@"+who)
	}
	return line + "\n" + Dim(t.ID) + "\n"
}

// FormatPresets lists saved filter presets.
func FormatPresets(presets []preset.Preset) string {
	if len(presets) == 0 {
		return Dim("No presets saved.") + "\n"
	}
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		rows = append(rows, []string{
			Bold(p.Name),
			orDash(strings.Join(p.Statuses, ",")),
			orDash(p.Assignee),
			orDash(p.Due),
			orDash(p.Search),
		})
	}
	return RenderTable([]string{"NAME", "STATUS", "ASSIGNEE", "DUE", "SEARCH"}, rows)
}

func syncLine(st *repository.SyncState, now time.Time) string {
	if st == nil {
		return "never synced"
	}
	return fmt.Sprintf("synced from %s %s", st.Source, strings.ToLower(RelativeTime(st.SyncedAt, now)))
}

func attentionLine(label string, n int, style lipgloss.Style) string {
	count := Dim(fmt.Sprint(n))
	if n > 0 {
		count = style.Render(fmt.Sprint(n))
	}
	return fmt.Sprintf("  %s %s", count, label)
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}
