package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
)

const barWidth = 20

// FormatAnalysis renders one burnout analysis.
func FormatAnalysis(a *domain.BurnoutAnalysis) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n", LevelIndicator(a.Level), RenderScoreBar(a.FinalScore, barWidth)))
	b.WriteString(Dim(fmt.Sprintf("workload %.1f  sentiment %+.1f  trend ", a.WorkloadScore, a.SentimentAdjustment)))
	b.WriteString(TrendArrow(a.Trend))
	if a.Trend.DaysAtCurrentLevel > 0 {
		b.WriteString(Dim(fmt.Sprintf("  %dd at %s", a.Trend.DaysAtCurrentLevel, a.Level)))
	}
	b.WriteString("\n")
	if a.Degraded {
		b.WriteString(StyleYellow.Render("sentiment unavailable, workload-only score") + "\n")
	}

	b.WriteString("\n" + Header("Breakdown") + "\n")
	rows := [][]string{
		{"task load", RenderScoreBar(a.Breakdown.TaskLoad, barWidth), fmt.Sprintf("%d active, %.0f%% done", a.Metrics.ActiveTasks, a.Metrics.CompletionRate*100)},
		{"meeting load", RenderScoreBar(a.Breakdown.MeetingLoad, barWidth), fmt.Sprintf("%d today, %d back-to-back", a.Metrics.MeetingsToday, a.Metrics.BackToBackMeetings)},
		{"overwork", RenderScoreBar(a.Breakdown.Overwork, barWidth), fmt.Sprintf("%d weekend, %d late, %d-day streak", a.Metrics.WeekendSessions, a.Metrics.LateNightSessions, a.Metrics.ConsecutiveWorkDays)},
		{"deadlines", RenderScoreBar(a.Breakdown.DeadlinePressure, barWidth), fmt.Sprintf("%d overdue, %d due this week", a.Metrics.OverdueTasks, a.Metrics.DueThisWeek)},
	}
	b.WriteString(RenderTable([]string{"DIMENSION", "SCORE", "DETAIL"}, rows))

	b.WriteString("\n" + Header("Sentiment") + "\n")
	switch a.Sentiment.Status {
	case domain.SentimentOK:
		b.WriteString(fmt.Sprintf("%s (%+.2f) from %d entries\n", a.Sentiment.Polarity, a.Sentiment.Score, a.Sentiment.EntryCount))
		if len(a.Sentiment.Themes) > 0 {
			b.WriteString(Dim("themes: "+strings.Join(a.Sentiment.Themes, ", ")) + "\n")
		}
		if a.Sentiment.Summary != "" {
			b.WriteString(Dim(a.Sentiment.Summary) + "\n")
		}
	default:
		b.WriteString(Dim(strings.ReplaceAll(string(a.Sentiment.Status), "_", " ")) + "\n")
	}

	if len(a.Insights) > 0 {
		b.WriteString("\n" + Header("Insights") + "\n")
		for _, in := range a.Insights {
			b.WriteString("  • " + in + "\n")
		}
	}
	b.WriteString("\n" + Dim(fmt.Sprintf("analysis %s · %s", a.ID, a.AnalyzedAt.Local().Format("2006-01-02 15:04"))) + "\n")
	return b.String()
}

// FormatHistory renders analyses newest first as a table.
func FormatHistory(history []*domain.BurnoutAnalysis, now time.Time) string {
	if len(history) == 0 {
		return Dim("No analyses yet. Run `ember analyze <user>` first.") + "\n"
	}
	rows := make([][]string, 0, len(history))
	for _, a := range history {
		flag := ""
		if a.Degraded {
			flag = StyleYellow.Render("degraded")
		}
		rows = append(rows, []string{
			RelativeDateFrom(a.AnalyzedAt, now),
			a.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			LevelIndicator(a.Level),
			fmt.Sprintf("%.1f", a.FinalScore),
			TrendArrow(a.Trend),
			flag,
		})
	}
	return RenderTable([]string{"WHEN", "AT", "LEVEL", "SCORE", "TREND", ""}, rows)
}

// FormatProfile renders a learned behavioral profile.
func FormatProfile(p *domain.BehavioralProfile, minDays int) string {
	if p == nil {
		return Dim(fmt.Sprintf("No profile yet: at least %d days of analyses are needed.", minDays)) + "\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("baseline   %s\n", RenderScoreBar(p.BaselineScore, barWidth)))
	b.WriteString(fmt.Sprintf("trend      %s\n", string(p.TrendDirection)))
	triggers := Dim("none")
	if len(p.StressTriggers) > 0 {
		triggers = StyleRed.Render(strings.ReplaceAll(strings.Join(p.StressTriggers, ", "), "_", " "))
	}
	b.WriteString(fmt.Sprintf("triggers   %s\n", triggers))
	b.WriteString(Dim(fmt.Sprintf("from %d days · updated %s", p.SampleDays, p.UpdatedAt.Local().Format("2006-01-02"))) + "\n")
	return RenderBox("Behavioral profile", b.String())
}
