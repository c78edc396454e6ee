package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImprovement_RoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 7.2, Improvement(80.3, 73.1))
	assert.Equal(t, -4.5, Improvement(40.1, 44.6))
	assert.Equal(t, 0.0, Improvement(55.5, 55.5))
}

func TestRecordOutcome(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	a := &RecommendationApplication{ScoreBefore: 80.3}

	a.RecordOutcome(73.1, now)

	require.NotNil(t, a.ScoreAfter)
	require.NotNil(t, a.Improvement)
	assert.Equal(t, 73.1, *a.ScoreAfter)
	assert.Equal(t, 7.2, *a.Improvement)
	assert.Equal(t, now, a.UpdatedAt)
}

func TestApplicationTransitions(t *testing.T) {
	now := time.Now()
	a := &RecommendationApplication{Status: StatusApplied}

	require.NoError(t, a.Transition(StatusInProgress, now))
	require.NoError(t, a.Transition(StatusCompleted, now))
	require.NotNil(t, a.CompletedAt)

	assert.Error(t, a.Transition(StatusCancelled, now), "completed is terminal")
	assert.Equal(t, StatusCompleted, a.Status)
}
