package retrieval

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ember/internal/domain"
)

// IssueThreshold is the sub-score at which a workload dimension counts as a primary issue.
const IssueThreshold = 60

const (
	CategoryAcuteOverload  = "acute_overload"
	CategoryElevatedStrain = "elevated_strain"
	CategoryMaintenance    = "maintenance"
)

// CategoryFor maps a burnout level to the strategy category searched for.
func CategoryFor(level domain.BurnoutLevel) string {
	switch level {
	case domain.LevelRed:
		return CategoryAcuteOverload
	case domain.LevelYellow:
		return CategoryElevatedStrain
	default:
		return CategoryMaintenance
	}
}

var issuePhrases = map[string]string{
	domain.DimensionTaskLoad:         "too many active tasks",
	domain.DimensionMeetingLoad:      "meeting overload and back-to-back meetings",
	domain.DimensionOverwork:         "working late nights and weekends",
	domain.DimensionDeadlinePressure: "overdue work and deadline pressure",
}

// PrimaryIssues lists what the query should focus on: elevated workload
// dimensions, then sentiment themes, then active burnout signals.
func PrimaryIssues(a *domain.BurnoutAnalysis) []string {
	var issues []string
	for _, dim := range a.PrimaryIssues(IssueThreshold) {
		issues = append(issues, issuePhrases[dim])
	}
	for _, theme := range a.Sentiment.Themes {
		if theme = strings.TrimSpace(theme); theme != "" {
			issues = append(issues, theme)
		}
	}
	for _, sig := range a.Sentiment.Signals.Active() {
		issues = append(issues, strings.ReplaceAll(sig, "_", " "))
	}
	return issues
}

// BuildQuery synthesizes the retrieval query for an analysis.
func BuildQuery(a *domain.BurnoutAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s burnout risk, %s strategies", strings.ToLower(string(a.Level)),
		strings.ReplaceAll(CategoryFor(a.Level), "_", " "))
	if issues := PrimaryIssues(a); len(issues) > 0 {
		b.WriteString(" for ")
		b.WriteString(strings.Join(issues, ", "))
	}
	return b.String()
}
