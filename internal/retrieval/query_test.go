package retrieval

import (
	"testing"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, CategoryAcuteOverload, CategoryFor(domain.LevelRed))
	assert.Equal(t, CategoryElevatedStrain, CategoryFor(domain.LevelYellow))
	assert.Equal(t, CategoryMaintenance, CategoryFor(domain.LevelGreen))
}

func TestBuildQuery_IncludesIssuesThemesAndSignals(t *testing.T) {
	a := testutil.NewTestAnalysis("u1", 75, testutil.WithBreakdown(domain.WorkloadBreakdown{
		TaskLoad:         100,
		MeetingLoad:      40,
		DeadlinePressure: 60,
	}))
	a.Sentiment.Themes = []string{"deadline anxiety"}
	a.Sentiment.Signals = domain.BurnoutSignals{Overwhelm: true}

	q := BuildQuery(a)

	assert.Contains(t, q, "red burnout risk")
	assert.Contains(t, q, "acute overload")
	assert.Contains(t, q, "too many active tasks")
	assert.Contains(t, q, "deadline pressure")
	assert.NotContains(t, q, "meeting overload")
	assert.Contains(t, q, "deadline anxiety")
	assert.Contains(t, q, "overwhelm")
}

func TestPrimaryIssues_OrderedByDimensionScore(t *testing.T) {
	a := testutil.NewTestAnalysis("u1", 50, testutil.WithBreakdown(domain.WorkloadBreakdown{
		TaskLoad: 65,
		Overwork: 90,
	}))

	issues := PrimaryIssues(a)
	assert.Equal(t, []string{"working late nights and weekends", "too many active tasks"}, issues)
}

func TestBuildQuery_GreenWithoutIssues(t *testing.T) {
	a := testutil.NewTestAnalysis("u1", 10)
	assert.Equal(t, "green burnout risk, maintenance strategies", BuildQuery(a))
}
