package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ember/internal/scoring"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderScoreBar renders a 0-100 burnout score as a bar like [████░░░░] 45.0.
// Color follows the level bands, so a fuller bar is worse.
func RenderScoreBar(score float64, width int) string {
	score = scoring.Clamp(score, 0, 100)
	if width < 2 {
		width = 2
	}

	filled := int(score / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	return fmt.Sprintf("[%s] %5.1f", LevelColor(scoring.LevelFor(score)).Render(bar), score)
}
