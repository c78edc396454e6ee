package workload

import (
	"testing"

	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() config.WorkloadConfig {
	return config.Default().Workload
}

func TestAnalyze_ZeroMetrics(t *testing.T) {
	r := Analyze(domain.UserMetrics{}, defaults())
	assert.Equal(t, 0.0, r.Score)
	assert.Equal(t, domain.WorkloadBreakdown{}, r.Breakdown)
	assert.Equal(t, []string{"Workload is within sustainable targets"}, r.Insights)
}

func TestAnalyze_AllDimensionsSaturate(t *testing.T) {
	m := domain.UserMetrics{
		ActiveTasks:         40,
		OverdueTasks:        10,
		DueThisWeek:         10,
		MeetingsToday:       12,
		BackToBackMeetings:  8,
		WeekendSessions:     4,
		LateNightSessions:   6,
		ConsecutiveWorkDays: 14,
		CompletionRate:      0.5,
	}
	r := Analyze(m, defaults())
	assert.Equal(t, 100.0, r.Score)
	assert.Equal(t, 100.0, r.Breakdown.TaskLoad)
	assert.Equal(t, 100.0, r.Breakdown.MeetingLoad)
	assert.Equal(t, 100.0, r.Breakdown.Overwork)
	assert.Equal(t, 100.0, r.Breakdown.DeadlinePressure)
	assert.Len(t, r.Insights, 4)
}

func TestAnalyze_WeightedSum(t *testing.T) {
	m := domain.UserMetrics{
		ActiveTasks:         5, // 50
		MeetingsToday:       2,
		BackToBackMeetings:  2, // 3 / 5 = 60
		WeekendSessions:     1,
		ConsecutiveWorkDays: 6, // 2 / 5 = 40
		OverdueTasks:        1,
		DueThisWeek:         1, // 3 / 10 = 30
		CompletionRate:      0.5,
	}
	r := Analyze(m, defaults())
	assert.Equal(t, domain.WorkloadBreakdown{TaskLoad: 50, MeetingLoad: 60, Overwork: 40, DeadlinePressure: 30}, r.Breakdown)
	// 0.3*50 + 0.3*60 + 0.2*40 + 0.2*30
	assert.InDelta(t, 47.0, r.Score, 1e-9)
}

func TestAnalyze_CustomTargets(t *testing.T) {
	cfg := defaults()
	cfg.Targets.TaskLoad = 20
	r := Analyze(domain.UserMetrics{ActiveTasks: 10, CompletionRate: 1}, cfg)
	assert.Equal(t, 50.0, r.Breakdown.TaskLoad)
}

func TestAnalyze_BoundsHoldAcrossInputs(t *testing.T) {
	for active := 0; active <= 60; active += 7 {
		for meetings := 0; meetings <= 15; meetings += 3 {
			m := domain.UserMetrics{
				ActiveTasks:        active,
				OverdueTasks:       active / 2,
				MeetingsToday:      meetings,
				BackToBackMeetings: meetings / 2,
				LateNightSessions:  meetings,
			}
			r := Analyze(m, defaults())
			require.GreaterOrEqual(t, r.Score, 0.0)
			require.LessOrEqual(t, r.Score, 100.0)
			for name, v := range r.Breakdown.Dimensions() {
				require.GreaterOrEqual(t, v, 0.0, name)
				require.LessOrEqual(t, v, 100.0, name)
			}
		}
	}
}

func TestAnalyze_LowCompletionInsight(t *testing.T) {
	r := Analyze(domain.UserMetrics{ActiveTasks: 3, CompletedTasks: 0}, defaults())
	assert.Contains(t, r.Insights, "Low completion rate: 0% of tasks done")
}
