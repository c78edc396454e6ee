package scoring

import (
	"testing"

	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patternCfg() config.PatternConfig {
	return config.Default().Patterns
}

func TestLearnProfile_RequiresMinDays(t *testing.T) {
	var history []*domain.BurnoutAnalysis
	for d := 0; d < 6; d++ {
		history = append(history, testutil.NewTestAnalysis("u", 50, daysAgo(d)))
		history = append(history, testutil.NewTestAnalysis("u", 50, daysAgo(d)))
	}
	_, ok := LearnProfile("u", history, now, patternCfg())
	assert.False(t, ok)
}

func TestLearnProfile_BaselineAndTriggers(t *testing.T) {
	meetingHeavy := domain.WorkloadBreakdown{MeetingLoad: 90, TaskLoad: 40}
	var history []*domain.BurnoutAnalysis
	for d := 0; d < 6; d++ {
		history = append(history, testutil.NewTestAnalysis("u", 30, daysAgo(d+2)))
	}
	// Two spikes well above baseline: both meeting-heavy, one with negative sentiment.
	history = append([]*domain.BurnoutAnalysis{
		testutil.NewTestAnalysis("u", 80, daysAgo(0), testutil.WithBreakdown(meetingHeavy), testutil.WithSentimentAdjustment(6)),
		testutil.NewTestAnalysis("u", 78, daysAgo(1), testutil.WithBreakdown(meetingHeavy)),
	}, history...)
	history[0].Trend.Direction = domain.TrendRising
	// Ignored: older than the baseline window.
	history = append(history, testutil.NewTestAnalysis("u", 100, daysAgo(45), testutil.WithBreakdown(domain.WorkloadBreakdown{Overwork: 100})))

	p, ok := LearnProfile("u", history, now, patternCfg())
	require.True(t, ok)
	assert.Equal(t, "u", p.UserID)
	assert.Equal(t, 8, p.SampleDays)
	// (80 + 78 + 6*30) / 8
	assert.Equal(t, 42.3, p.BaselineScore)
	assert.Equal(t, []string{domain.DimensionMeetingLoad, domain.DimensionNegativeSentiment}, p.StressTriggers)
	assert.Equal(t, domain.TrendRising, p.TrendDirection)
}

func TestLearnProfile_NoHighScoresNoTriggers(t *testing.T) {
	var history []*domain.BurnoutAnalysis
	for d := 0; d < 7; d++ {
		history = append(history, testutil.NewTestAnalysis("u", 45, daysAgo(d), testutil.WithBreakdown(domain.WorkloadBreakdown{TaskLoad: 90})))
	}
	p, ok := LearnProfile("u", history, now, patternCfg())
	require.True(t, ok)
	assert.Equal(t, 45.0, p.BaselineScore)
	assert.Empty(t, p.StressTriggers)
	assert.Equal(t, domain.TrendStable, p.TrendDirection)
}
