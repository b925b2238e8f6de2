package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/treestate"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	treeBarWidth = 10
	treeIndent   = "  "
	// minTitleWidth keeps titles readable when the terminal is narrow.
	minTitleWidth = 12
)

// TreeOptions controls RenderTree.
type TreeOptions struct {
	Now   time.Time
	Width int
	// Cursor highlights one row; -1 disables highlighting.
	Cursor int
}

// RenderTree renders flattened WBS rows as an indented tree. Each line
// carries an expansion marker, status icon, code and name, followed by
// right-aligned progress, due badge and assignee columns.
func RenderTree(rows []treestate.Row, opts TreeOptions) string {
	if len(rows) == 0 {
		return ""
	}

	type lineInfo struct {
		title string
		meta  string
	}

	lines := make([]lineInfo, len(rows))
	maxTitleWidth := 0

	// Pass 1: build the meta column and find the widest title.
	for idx, row := range rows {
		if row.Kind == treestate.RowEmpty {
			lines[idx].title = strings.Repeat(treeIndent, row.Depth) + "  " + Dim("(no matching children)")
			continue
		}
		lines[idx].title = rowTitle(row)
		lines[idx].meta = rowMeta(row, opts.Now)
		if w := lipgloss.Width(lines[idx].title); w > maxTitleWidth {
			maxTitleWidth = w
		}
	}

	if opts.Width > 0 {
		metaWidth := 0
		for _, li := range lines {
			if w := lipgloss.Width(li.meta); w > metaWidth {
				metaWidth = w
			}
		}
		// Two cells of cursor prefix and two of gap surround the title.
		if limit := opts.Width - metaWidth - 4; limit < maxTitleWidth {
			maxTitleWidth = max(limit, minTitleWidth)
		}
	}

	// Pass 2: truncate, pad and join.
	var b strings.Builder
	for idx, li := range lines {
		title := li.title
		if lipgloss.Width(title) > maxTitleWidth {
			title = truncate.StringWithTail(title, uint(maxTitleWidth), "…")
		}
		if idx == opts.Cursor {
			title = StyleSelected.Render("› ") + title
		} else {
			title = "  " + title
		}
		if li.meta == "" {
			b.WriteString(title + "\n")
			continue
		}
		pad := maxTitleWidth + 2 - lipgloss.Width(title)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(title + strings.Repeat(" ", pad) + "  " + li.meta + "\n")
	}
	return b.String()
}

func rowTitle(row treestate.Row) string {
	marker := " "
	if row.Expandable {
		marker = "▸"
		if row.Expanded {
			marker = "▾"
		}
	}

	name := row.Name
	switch row.Kind {
	case treestate.RowPhase:
		name = Bold(name)
	case treestate.RowTask:
		name = StyleFg.Render(name)
	}
	if row.Code != "" {
		name = Dim(row.Code) + " " + name
	}
	return fmt.Sprintf("%s%s %s %s", strings.Repeat(treeIndent, row.Depth), Dim(marker), StatusIcon(row.Status), name)
}

func rowMeta(row treestate.Row, now time.Time) string {
	parts := []string{fmt.Sprintf("%s %3d%%", RenderCompactBar(row.Progress, treeBarWidth, false), ClampPercent(row.Progress))}
	if due := DueBadge(row.Status, row.End, now); due != "" {
		parts = append(parts, due)
	}
	if row.Assignee != "" {
		parts = append(parts, StylePurple.Render("@"+row.Assignee))
	}
	return strings.Join(parts, "  ")
}
