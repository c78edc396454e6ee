package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/llm"
)

const (
	maxPromptMeetings = 20
	maxPromptTasks    = 25
	maxStrategyChars  = 600
)

// BuildPrompt renders the grounding context for one generation call.
func BuildPrompt(in Input) string {
	var b strings.Builder
	writeProfile(&b, in.Profile, in.Now)
	writeAnalysis(&b, in.Analysis)
	writeStrategies(&b, in.Strategies)
	writeMeetings(&b, in.Meetings, in.Now)
	writeTasks(&b, in.Tasks, in.Now)
	return b.String()
}

func writeProfile(b *strings.Builder, p *domain.UserProfile, now time.Time) {
	b.WriteString("## Person\n")
	if p == nil {
		b.WriteString("No profile on record.\n\n")
		return
	}
	fmt.Fprintf(b, "Role: %s\n", orNone(p.Role))
	fmt.Fprintf(b, "Communication style: %s\n", orNone(p.CommunicationStyle))
	fmt.Fprintf(b, "Accepted categories: %s\n", joinOrNone(p.AcceptedCategories))
	fmt.Fprintf(b, "Avoided categories (never recommend): %s\n", joinOrNone(p.AvoidedCategories))

	active := p.ActiveConstraints(now)
	if len(active) == 0 {
		b.WriteString("Active constraints: none\n\n")
		return
	}
	b.WriteString("Active constraints (must be respected):\n")
	for _, c := range active {
		line := fmt.Sprintf("- %s", c.Kind)
		if c.Description != "" {
			line += ": " + c.Description
		}
		if c.End != nil {
			line += fmt.Sprintf(" (until %s)", c.End.Format("2006-01-02"))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func writeAnalysis(b *strings.Builder, a *domain.BurnoutAnalysis) {
	b.WriteString("## Burnout analysis\n")
	fmt.Fprintf(b, "Score: %.1f/100 (%s)\n", a.FinalScore, a.Level)
	fmt.Fprintf(b, "Workload score: %.1f, sentiment adjustment: %+.1f\n", a.WorkloadScore, a.SentimentAdjustment)
	fmt.Fprintf(b, "Breakdown: task_load=%.1f meeting_load=%.1f overwork=%.1f deadline_pressure=%.1f\n",
		a.Breakdown.TaskLoad, a.Breakdown.MeetingLoad, a.Breakdown.Overwork, a.Breakdown.DeadlinePressure)
	fmt.Fprintf(b, "Trend: %s (%+.1f%%), %d days at this level\n",
		a.Trend.Direction, a.Trend.ChangePercentage, a.Trend.DaysAtCurrentLevel)
	if a.Sentiment.Status == domain.SentimentOK {
		fmt.Fprintf(b, "Emotional themes: %s\n", joinOrNone(a.Sentiment.Themes))
		fmt.Fprintf(b, "Burnout signals: %s\n", joinOrNone(a.Sentiment.Signals.Active()))
	} else {
		fmt.Fprintf(b, "Sentiment: %s\n", a.Sentiment.Status)
	}
	for _, insight := range a.Insights {
		fmt.Fprintf(b, "- %s\n", insight)
	}
	b.WriteString("\n")
}

func writeStrategies(b *strings.Builder, docs []domain.StrategyDocument) {
	b.WriteString("## Evidence-based strategies\n")
	if len(docs) == 0 {
		b.WriteString("None retrieved. Rely on general, conservative guidance.\n\n")
		return
	}
	for i, d := range docs {
		text := llm.Clip(d.Text, maxStrategyChars)
		fmt.Fprintf(b, "[%d] %s", i+1, d.Title)
		if d.EvidenceTag != "" {
			fmt.Fprintf(b, " (%s)", d.EvidenceTag)
		}
		fmt.Fprintf(b, "\n%s\n", text)
	}
	b.WriteString("\n")
}

func writeMeetings(b *strings.Builder, meetings []*domain.Meeting, now time.Time) {
	b.WriteString("## Upcoming calendar\n")
	var upcoming []*domain.Meeting
	for _, m := range meetings {
		if !m.EndTime.Before(now) {
			upcoming = append(upcoming, m)
		}
	}
	if len(upcoming) == 0 {
		b.WriteString("No upcoming meetings.\n\n")
		return
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].StartTime.Before(upcoming[j].StartTime) })
	for i, m := range upcoming {
		if i == maxPromptMeetings {
			fmt.Fprintf(b, "... and %d more\n", len(upcoming)-i)
			break
		}
		var flags []string
		if m.IsOptional {
			flags = append(flags, "optional")
		}
		if m.IsRecurring {
			flags = append(flags, "recurring")
		}
		fmt.Fprintf(b, "- %s %s-%s %q", m.StartTime.Format("Mon 2006-01-02"), m.StartTime.Format("15:04"), m.EndTime.Format("15:04"), m.Title)
		if len(flags) > 0 {
			fmt.Fprintf(b, " [%s]", strings.Join(flags, ", "))
		}
		if len(m.Attendees) > 0 {
			fmt.Fprintf(b, " with %d attendees", len(m.Attendees))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeTasks(b *strings.Builder, tasks []*domain.Task, now time.Time) {
	b.WriteString("## Open tasks\n")
	var open []*domain.Task
	for _, t := range tasks {
		if t.Status.IsActive() {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		b.WriteString("No open tasks.\n")
		return
	}
	for i, t := range open {
		if i == maxPromptTasks {
			fmt.Fprintf(b, "... and %d more\n", len(open)-i)
			break
		}
		fmt.Fprintf(b, "- %q priority=%s", t.Title, t.Priority)
		if t.DueDate != nil {
			fmt.Fprintf(b, " due=%s", t.DueDate.Format("2006-01-02"))
			if t.IsOverdue(now) {
				b.WriteString(" OVERDUE")
			}
		}
		if t.EstimatedHours > 0 {
			fmt.Fprintf(b, " est=%.1fh", t.EstimatedHours)
		}
		if t.CanDelegate {
			b.WriteString(" can_delegate")
		}
		b.WriteString("\n")
	}
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
