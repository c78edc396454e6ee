package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
)

// FormatApplyResult renders the tasks and calendar blocks an apply created.
func FormatApplyResult(res *app.ApplyResult) string {
	a := res.Application
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %d tasks, %d calendar blocks\n", StatusPill(a.Status), a.TasksCreated, a.EventsCreated))
	rows := make([][]string, 0, len(res.ActionItems))
	for _, it := range res.ActionItems {
		kind := "task"
		if it.Kind == domain.ActionTimeBlock {
			kind = fmt.Sprintf("block %dm", it.DurationMin)
		}
		due := Dim("-")
		if it.DueDate != nil {
			due = it.DueDate.Local().Format("Mon Jan 2")
		}
		rows = append(rows, []string{fmt.Sprintf("%d", it.StepIndex+1), kind, PriorityStyle(it.Priority), due, Truncate(it.Text, 60)})
	}
	b.WriteString(RenderTable([]string{"#", "KIND", "PRIORITY", "DUE", "STEP"}, rows))
	b.WriteString(Dim(fmt.Sprintf("score before: %.1f", a.ScoreBefore)) + "\n")
	return b.String()
}

// FormatApplyOutcomes renders an apply-all batch.
func FormatApplyOutcomes(outcomes []app.ApplyOutcome) string {
	if len(outcomes) == 0 {
		return Dim("Nothing to apply.") + "\n"
	}
	var b strings.Builder
	ok := 0
	for _, o := range outcomes {
		if o.Err != nil {
			b.WriteString(StyleRed.Render("  ✗ ") + o.Title + Dim(": "+o.Err.Error()) + "\n")
			continue
		}
		ok++
		a := o.Result.Application
		b.WriteString(StyleGreen.Render("  ✓ ") + o.Title +
			Dim(fmt.Sprintf(" (%d tasks, %d blocks)", a.TasksCreated, a.EventsCreated)) + "\n")
	}
	b.WriteString(fmt.Sprintf("\n%d of %d applied\n", ok, len(outcomes)))
	return b.String()
}

// FormatApplication renders an application's status line.
func FormatApplication(a *domain.RecommendationApplication) string {
	line := fmt.Sprintf("%s  %s", Dim(a.RecommendationID), StatusPill(a.Status))
	if a.Improvement != nil && a.ScoreAfter != nil {
		line += fmt.Sprintf("  %.1f → %.1f (%s)", a.ScoreBefore, *a.ScoreAfter, Improvement(*a.Improvement))
	}
	return line + "\n"
}

// FormatFeedback renders the result of a feedback submission.
func FormatFeedback(res *app.FeedbackResult) string {
	var b strings.Builder
	b.WriteString(StyleGreen.Render("Feedback recorded.") + "\n")
	b.WriteString(FormatApplication(res.Application))
	if res.Reanalysis != nil {
		b.WriteString(fmt.Sprintf("now %s  %s\n", LevelIndicator(res.Reanalysis.Level), RenderScoreBar(res.Reanalysis.FinalScore, barWidth)))
	} else if res.Application.Status == domain.StatusCompleted {
		b.WriteString(Dim("Re-analysis failed; run `ember analyze` to refresh the score.") + "\n")
	}
	return b.String()
}
