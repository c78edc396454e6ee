package scoring

import (
	"sort"
	"time"

	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/domain"
)

// LearnProfile derives a behavioral baseline from analysis history (newest
// first). It reports false when there are fewer than cfg.MinDays distinct
// analysis days in the baseline window.
func LearnProfile(userID string, history []*domain.BurnoutAnalysis, now time.Time, cfg config.PatternConfig) (*domain.BehavioralProfile, bool) {
	since := now.AddDate(0, 0, -cfg.BaselineDays)
	var window []*domain.BurnoutAnalysis
	days := make(map[string]bool)
	for _, a := range history {
		if a.AnalyzedAt.Before(since) {
			continue
		}
		window = append(window, a)
		days[a.AnalyzedAt.UTC().Format("2006-01-02")] = true
	}
	if len(days) < cfg.MinDays {
		return nil, false
	}

	var sum float64
	for _, a := range window {
		sum += a.FinalScore
	}
	baseline := Round1(sum / float64(len(window)))

	direction := domain.TrendStable
	if window[0].Trend.Direction != "" {
		direction = window[0].Trend.Direction
	}

	return &domain.BehavioralProfile{
		UserID:         userID,
		BaselineScore:  baseline,
		StressTriggers: stressTriggers(window, baseline, cfg),
		TrendDirection: direction,
		SampleDays:     len(days),
		UpdatedAt:      now,
	}, true
}

// stressTriggers returns dimensions elevated in at least TriggerShare of the
// analyses scoring above baseline + HighScoreMargin.
func stressTriggers(window []*domain.BurnoutAnalysis, baseline float64, cfg config.PatternConfig) []string {
	counts := make(map[string]int)
	high := 0
	for _, a := range window {
		if a.FinalScore <= baseline+cfg.HighScoreMargin {
			continue
		}
		high++
		for name, v := range a.Breakdown.Dimensions() {
			if v >= cfg.ElevatedDimension {
				counts[name]++
			}
		}
		if a.SentimentAdjustment >= cfg.ElevatedSentiment {
			counts[domain.DimensionNegativeSentiment]++
		}
	}
	if high == 0 {
		return []string{}
	}

	triggers := []string{}
	for name, n := range counts {
		if float64(n)/float64(high) >= cfg.TriggerShare {
			triggers = append(triggers, name)
		}
	}
	sort.Strings(triggers)
	return triggers
}
