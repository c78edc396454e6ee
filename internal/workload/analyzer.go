package workload

import (
	"fmt"
	"math"

	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/domain"
)

// InsightThreshold is the sub-score at which a dimension earns an insight line.
const InsightThreshold = 70

// Result is the outcome of workload analysis.
type Result struct {
	Score     float64
	Breakdown domain.WorkloadBreakdown
	Insights  []string
}

// Observed returns the raw per-dimension load before normalization.
func Observed(m domain.UserMetrics) domain.WorkloadBreakdown {
	return domain.WorkloadBreakdown{
		TaskLoad:         float64(m.ActiveTasks),
		MeetingLoad:      float64(m.MeetingsToday) + 0.5*float64(m.BackToBackMeetings),
		Overwork:         float64(m.WeekendSessions+m.LateNightSessions) + math.Max(0, float64(m.ConsecutiveWorkDays-5)),
		DeadlinePressure: float64(2*m.OverdueTasks + m.DueThisWeek),
	}
}

// Analyze scores metrics against targets. Every sub-score and the weighted
// total lie in [0, 100].
func Analyze(m domain.UserMetrics, cfg config.WorkloadConfig) Result {
	obs := Observed(m)
	b := domain.WorkloadBreakdown{
		TaskLoad:         normalize(obs.TaskLoad, cfg.Targets.TaskLoad),
		MeetingLoad:      normalize(obs.MeetingLoad, cfg.Targets.MeetingLoad),
		Overwork:         normalize(obs.Overwork, cfg.Targets.Overwork),
		DeadlinePressure: normalize(obs.DeadlinePressure, cfg.Targets.DeadlinePressure),
	}
	w := cfg.Weights
	score := w.TaskLoad*b.TaskLoad + w.MeetingLoad*b.MeetingLoad +
		w.Overwork*b.Overwork + w.DeadlinePressure*b.DeadlinePressure

	return Result{
		Score:     round1(clamp(score, 0, 100)),
		Breakdown: b,
		Insights:  insights(m, b),
	}
}

func insights(m domain.UserMetrics, b domain.WorkloadBreakdown) []string {
	var out []string
	if b.TaskLoad >= InsightThreshold {
		out = append(out, fmt.Sprintf("High task load: %d active tasks (%.0f%% of target)", m.ActiveTasks, b.TaskLoad))
	}
	if b.MeetingLoad >= InsightThreshold {
		msg := fmt.Sprintf("Meeting-heavy day: %d meetings (%.1fh)", m.MeetingsToday, m.MeetingHoursToday)
		if m.BackToBackMeetings > 0 {
			msg += fmt.Sprintf(", %d back-to-back", m.BackToBackMeetings)
		}
		out = append(out, msg)
	}
	if b.Overwork >= InsightThreshold {
		out = append(out, fmt.Sprintf("Overwork pattern: %d weekend and %d late-night sessions, %d consecutive work days",
			m.WeekendSessions, m.LateNightSessions, m.ConsecutiveWorkDays))
	}
	if b.DeadlinePressure >= InsightThreshold {
		out = append(out, fmt.Sprintf("Deadline pressure: %d overdue, %d due this week", m.OverdueTasks, m.DueThisWeek))
	}
	if m.ActiveTasks > 0 && m.CompletionRate < 0.3 {
		out = append(out, fmt.Sprintf("Low completion rate: %.0f%% of tasks done", m.CompletionRate*100))
	}
	if len(out) == 0 {
		out = append(out, "Workload is within sustainable targets")
	}
	return out
}

func normalize(observed, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return round1(clamp(observed/target*100, 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
