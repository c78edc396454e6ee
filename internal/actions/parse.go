package actions

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
)

// Step is the structured reading of one free-text action step. Parsing is a
// keyword heuristic; anything it does not recognize falls back to a
// medium-priority task with no due date.
type Step struct {
	Text        string
	Kind        domain.ActionKind
	Priority    domain.Priority
	DueDate     *time.Time
	DurationMin int
}

var (
	highKeywords = []string{"urgent", "immediately", "critical", "asap", "right away"}
	lowKeywords  = []string{"consider", "optional", "eventually", "when possible", "if possible"}

	timeBlockRe = regexp.MustCompile(`(?i)\bblock(?:\s+off)?\s+(\d+)\s*(minutes?|mins?|m|hours?|hrs?|h)\b`)
	wordRe      = regexp.MustCompile(`[a-z]+`)
)

// ParseStep interprets text relative to now. Due dates fall at the end of the
// named day in now's location.
func ParseStep(text string, now time.Time) Step {
	lower := strings.ToLower(text)
	s := Step{
		Text:     strings.TrimSpace(text),
		Kind:     domain.ActionTask,
		Priority: priorityOf(lower),
		DueDate:  dueOf(lower, now),
	}
	if m := timeBlockRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			n *= 60
		}
		if n > 0 {
			s.Kind = domain.ActionTimeBlock
			s.DurationMin = n
		}
	}
	return s
}

func priorityOf(lower string) domain.Priority {
	switch {
	case containsAny(lower, highKeywords):
		return domain.PriorityHigh
	case containsAny(lower, lowKeywords):
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

func dueOf(lower string, now time.Time) *time.Time {
	var due time.Time
	switch {
	case hasWord(lower, "today") || strings.Contains(lower, "end of day"):
		due = endOfDay(now)
	case hasWord(lower, "tomorrow"):
		due = endOfDay(now.AddDate(0, 0, 1))
	case strings.Contains(lower, "this week"):
		daysLeft := (7 - int(now.Weekday())) % 7
		due = endOfDay(now.AddDate(0, 0, daysLeft))
	default:
		return nil
	}
	return &due
}

// BlockStart picks when a time block should begin: 09:00 on the due day when
// that is after today, otherwise the next full hour.
func BlockStart(step Step, now time.Time) time.Time {
	if step.DueDate != nil {
		due := step.DueDate.In(now.Location())
		if due.YearDay() != now.YearDay() || due.Year() != now.Year() {
			y, m, d := due.Date()
			if start := time.Date(y, m, d, 9, 0, 0, 0, now.Location()); start.After(now) {
				return start
			}
		}
	}
	return now.Truncate(time.Hour).Add(time.Hour)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(k, " ") {
			if strings.Contains(s, k) {
				return true
			}
			continue
		}
		if hasWord(s, k) {
			return true
		}
	}
	return false
}

func hasWord(s, word string) bool {
	for _, w := range wordRe.FindAllString(s, -1) {
		if w == word {
			return true
		}
	}
	return false
}
