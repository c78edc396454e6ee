package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ember/internal/domain"
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
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// LevelColor returns the style for a burnout level.
func LevelColor(level domain.BurnoutLevel) lipgloss.Style {
	switch level {
	case domain.LevelRed:
		return StyleRed
	case domain.LevelYellow:
		return StyleYellow
	case domain.LevelGreen:
		return StyleGreen
	default:
		return StyleDim
	}
}

// LevelIndicator returns a colored level marker such as "● RED".
func LevelIndicator(level domain.BurnoutLevel) string {
	if level == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	return LevelColor(level).Render("● " + string(level))
}

// PriorityStyle colors a recommendation or action priority.
func PriorityStyle(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return StyleRed.Render(string(p))
	case domain.PriorityLow:
		return StyleDim.Render(string(p))
	default:
		return StyleYellow.Render(string(p))
	}
}

// StatusPill renders an application status.
func StatusPill(s domain.ApplicationStatus) string {
	switch s {
	case domain.StatusCompleted:
		return StyleGreen.Render("● completed")
	case domain.StatusInProgress:
		return StyleBlue.Render("● in progress")
	case domain.StatusCancelled:
		return StyleDim.Render("● cancelled")
	default:
		return StyleYellow.Render("● " + string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
