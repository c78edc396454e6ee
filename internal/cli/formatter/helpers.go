package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
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
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0:
		return fmt.Sprintf("In %dw", days/7)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	default:
		return fmt.Sprintf("%dw ago", -days/7)
	}
}

// TrendArrow renders a trend direction with its percentage change.
func TrendArrow(t domain.Trend) string {
	switch t.Direction {
	case domain.TrendRising:
		return StyleRed.Render(fmt.Sprintf("↑ %+.1f%%", t.ChangePercentage))
	case domain.TrendFalling:
		return StyleGreen.Render(fmt.Sprintf("↓ %+.1f%%", t.ChangePercentage))
	default:
		return StyleDim.Render(fmt.Sprintf("→ %+.1f%%", t.ChangePercentage))
	}
}

// Improvement renders a score delta where positive means the score went down.
func Improvement(delta float64) string {
	switch {
	case delta > 0:
		return StyleGreen.Render(fmt.Sprintf("-%.1f", delta))
	case delta < 0:
		return StyleRed.Render(fmt.Sprintf("+%.1f", -delta))
	default:
		return StyleDim.Render("±0.0")
	}
}

// Truncate shortens s to max visible runes, adding an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 2 {
		return s
	}
	return string(r[:max-1]) + "…"
}
