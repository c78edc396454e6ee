package recommend

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
)

// Filter drops recommendations in a category the user avoids and those that
// mention a blocked keyword of a constraint active at now. A nil profile
// keeps everything.
func Filter(recs []*domain.Recommendation, profile *domain.UserProfile, now time.Time) ([]*domain.Recommendation, []app.FilteredRecommendation) {
	kept := make([]*domain.Recommendation, 0, len(recs))
	var filtered []app.FilteredRecommendation
	if profile == nil {
		return append(kept, recs...), filtered
	}

	constraints := profile.ActiveConstraints(now)
	for _, r := range recs {
		if reason := rejectReason(r, profile, constraints); reason != "" {
			filtered = append(filtered, app.FilteredRecommendation{Title: r.Title, Reason: reason})
			continue
		}
		kept = append(kept, r)
	}
	return kept, filtered
}

func rejectReason(r *domain.Recommendation, profile *domain.UserProfile, constraints []domain.Constraint) string {
	if profile.Avoids(r.Category) {
		return fmt.Sprintf("category %q is on the avoided list", r.Category)
	}
	text := searchableText(r)
	for _, c := range constraints {
		for _, k := range c.Keywords() {
			if mentions(text, k) {
				return fmt.Sprintf("conflicts with active %s constraint: mentions %q", c.Kind, k)
			}
		}
	}
	return ""
}

func searchableText(r *domain.Recommendation) string {
	parts := append([]string{r.Title, r.Description, r.ExpectedImpact}, r.ActionSteps...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

// mentions matches keyword on word boundaries so "pto" does not match "symptoms".
func mentions(lowerText, keyword string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`)
	if err != nil {
		return strings.Contains(lowerText, keyword)
	}
	return re.MatchString(lowerText)
}
