package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// DueText formats days remaining as "D-N", "D-Day" or "N days overdue".
// It returns "" when there is no planned end date.
func DueText(end *time.Time, now time.Time) string {
	days := timeline.DaysRemaining(end, now)
	if days == nil {
		return ""
	}
	switch d := *days; {
	case d < 0:
		if d == -1 {
			return "1 day overdue"
		}
		return fmt.Sprintf("%d days overdue", -d)
	case d == 0:
		return "D-Day"
	default:
		return fmt.Sprintf("D-%d", d)
	}
}

// DueBadge styles DueText. Overdue is only highlighted when the work is
// still open; completed work is dimmed whatever its date.
func DueBadge(status domain.Status, end *time.Time, now time.Time) string {
	text := DueText(end, now)
	if text == "" {
		return ""
	}
	switch {
	case status.IsCompleted():
		return StyleDim.Render(text)
	case timeline.IsActionableOverdue(status, end, now):
		return StyleRed.Render(text)
	case timeline.BucketOf(end, now) == timeline.BucketThisWeek:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// RelativeTime describes t relative to now in the short form used for sync
// stamps: "Just now", "Today", "Yesterday", "3d ago", "In 2w".
func RelativeTime(t, now time.Time) string {
	diff := t.Sub(now)
	days := int(math.Round(diff.Hours() / 24))

	switch days {
	case 0:
		if diff > -time.Hour && diff <= 0 {
			return "Just now"
		}
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}

	span := days
	if span < 0 {
		span = -span
	}
	var amount string
	switch {
	case span < 14:
		amount = fmt.Sprintf("%dd", span)
	case span < 60:
		amount = fmt.Sprintf("%dw", span/7)
	default:
		amount = fmt.Sprintf("%dmo", span/30)
	}
	if days > 0 {
		return "In " + amount
	}
	return amount + " ago"
}

// FormatHours renders an optional hour count, "--" when absent.
func FormatHours(h *float64) string {
	if h == nil {
		return "--"
	}
	if *h == math.Trunc(*h) {
		return fmt.Sprintf("%.0fh", *h)
	}
	return fmt.Sprintf("%.1fh", *h)
}
