package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// wbsHuhTheme styles forms with the formatter palette.
func wbsHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// taskEditFields holds the string values bound to the edit form.
type taskEditFields struct {
	Name     string
	Status   string
	Progress string
	Assignee string
}

func newTaskEditFields(t *domain.Task) taskEditFields {
	f := taskEditFields{
		Name:     t.Name,
		Status:   string(t.Status),
		Progress: strconv.Itoa(t.Progress),
	}
	if t.AssigneeName != nil {
		f.Assignee = *t.AssigneeName
	}
	return f
}

// toEdit returns only the fields that differ from orig.
func (f taskEditFields) toEdit(orig *domain.Task) (service.TaskEdit, error) {
	var edit service.TaskEdit

	if name := strings.TrimSpace(f.Name); name != orig.Name {
		edit.Name = &name
	}
	if f.Status != string(orig.Status) {
		s, err := domain.ParseStatus(f.Status)
		if err != nil {
			return edit, err
		}
		edit.Status = &s
	}
	pct, err := strconv.Atoi(strings.TrimSpace(f.Progress))
	if err != nil {
		return edit, fmt.Errorf("progress must be a whole number: %q", f.Progress)
	}
	if pct != orig.Progress {
		edit.Progress = &pct
	}
	current := ""
	if orig.AssigneeName != nil {
		current = *orig.AssigneeName
	}
	if a := strings.TrimSpace(f.Assignee); a != current {
		edit.AssigneeName = &a
	}
	return edit, nil
}

func (f *taskEditFields) form() *huh.Form {
	options := make([]huh.Option[string], 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		options = append(options, huh.NewOption(fmt.Sprintf("%s  %s", s.Label(), s), string(s)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(validateRequired),
			huh.NewSelect[string]().
				Title("Status").
				Options(options...).
				Value(&f.Status),
			huh.NewInput().
				Title("Progress (0-100)").
				Value(&f.Progress).
				Validate(validatePercent),
			huh.NewInput().
				Title("Assignee").
				Description("Blank clears the assignee").
				Value(&f.Assignee),
		),
	).WithTheme(wbsHuhTheme()).WithShowHelp(false)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func validatePercent(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 0 || n > 100 {
		return fmt.Errorf("must be between 0 and 100")
	}
	return nil
}
