package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleSelected   = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
)

// TokenStyle maps a status color token onto the palette.
func TokenStyle(token domain.ColorToken) lipgloss.Style {
	switch token {
	case domain.ColorBlue:
		return StyleBlue
	case domain.ColorGreen:
		return StyleGreen
	case domain.ColorYellow:
		return StyleYellow
	case domain.ColorRed:
		return StyleRed
	default:
		return StyleDim
	}
}

// StatusPill renders the localized status label in its status color.
func StatusPill(s domain.Status) string {
	return TokenStyle(s.Color()).Render("● " + s.Label())
}

// StatusIcon is the one-cell marker drawn before a tree row.
func StatusIcon(s domain.Status) string {
	style := TokenStyle(s.Color())
	switch s {
	case domain.StatusCompleted:
		return style.Render("✔")
	case domain.StatusInProgress:
		return style.Render("▶")
	case domain.StatusOnHold:
		return style.Render("‖")
	case domain.StatusCancelled:
		return style.Render("✖")
	default:
		return style.Render("○")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
