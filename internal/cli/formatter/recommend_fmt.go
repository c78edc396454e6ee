package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
)

// FormatRecommendations renders a generation result.
func FormatRecommendations(res *app.RecommendResult) string {
	var b strings.Builder
	if res.Analysis != nil {
		b.WriteString(fmt.Sprintf("%s  score %.1f\n\n", LevelIndicator(res.Analysis.Level), res.Analysis.FinalScore))
	}
	if len(res.Recommendations) == 0 {
		b.WriteString(Dim("No recommendations survived the safety filter.") + "\n")
	}
	for i, r := range res.Recommendations {
		b.WriteString(FormatRecommendation(i+1, r))
		b.WriteString("\n")
	}
	if len(res.Filtered) > 0 {
		b.WriteString(Header("Filtered") + "\n")
		for _, f := range res.Filtered {
			b.WriteString(Dim(fmt.Sprintf("  ✗ %s: %s", f.Title, f.Reason)) + "\n")
		}
		b.WriteString("\n")
	}
	if len(res.Strategies) > 0 {
		titles := make([]string, len(res.Strategies))
		for i, s := range res.Strategies {
			titles[i] = s.Title
		}
		b.WriteString(Dim("grounded on: "+strings.Join(titles, "; ")) + "\n")
	}
	return b.String()
}

// FormatRecommendation renders one numbered recommendation with its steps.
func FormatRecommendation(n int, r *domain.Recommendation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s  %s %s\n",
		StyleHeader.Render(fmt.Sprintf("%d.", n)), Bold(r.Title),
		PriorityStyle(r.Priority), Dim("["+r.Category+"]")))
	if r.Description != "" {
		b.WriteString("   " + r.Description + "\n")
	}
	for _, s := range r.ActionSteps {
		b.WriteString("   - " + s + "\n")
	}
	if r.ExpectedImpact != "" {
		b.WriteString("   " + StyleGreen.Render("impact: ") + r.ExpectedImpact + "\n")
	}
	b.WriteString("   " + Dim("id "+r.ID) + "\n")
	return b.String()
}

// FormatStrategyFallback lists retrieved strategies when generation failed.
func FormatStrategyFallback(strategies []domain.StrategyDocument) string {
	if len(strategies) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(Header("Relevant strategies") + "\n")
	for _, s := range strategies {
		b.WriteString(fmt.Sprintf("  • %s %s\n", Bold(s.Title), Dim("("+s.EvidenceTag+")")))
		b.WriteString("    " + Truncate(s.Text, 160) + "\n")
	}
	return b.String()
}

// FormatStrategies renders the strategy corpus.
func FormatStrategies(docs []domain.StrategyDocument) string {
	if len(docs) == 0 {
		return Dim("No strategies loaded. Import some with `ember strategies import <file>`.") + "\n"
	}
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{Truncate(d.Title, 40), d.Category, d.EvidenceTag, Dim(Truncate(d.ID, 8))})
	}
	return RenderTable([]string{"TITLE", "CATEGORY", "EVIDENCE", "ID"}, rows)
}
