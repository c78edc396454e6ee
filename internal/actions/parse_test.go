package actions

import (
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday mid-morning.
var now = time.Date(2025, 3, 12, 10, 20, 0, 0, time.UTC)

func TestParseStep_Priority(t *testing.T) {
	cases := map[string]domain.Priority{
		"Urgent: hand off the migration":            domain.PriorityHigh,
		"Decline the sync immediately":              domain.PriorityHigh,
		"This is critical for recovery":             domain.PriorityHigh,
		"Consider a shorter standup":                domain.PriorityLow,
		"Optional: try a walking meeting":           domain.PriorityLow,
		"Eventually move reviews to async":          domain.PriorityLow,
		"Write down the three most important tasks": domain.PriorityMedium,
	}
	for text, want := range cases {
		assert.Equal(t, want, ParseStep(text, now).Priority, text)
	}
}

func TestParseStep_HighBeatsLow(t *testing.T) {
	assert.Equal(t, domain.PriorityHigh, ParseStep("Consider doing this immediately", now).Priority)
}

func TestParseStep_DueDates(t *testing.T) {
	today := ParseStep("Clear the inbox today", now)
	require.NotNil(t, today.DueDate)
	assert.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, 0, time.UTC), *today.DueDate)

	tomorrow := ParseStep("Talk to your manager tomorrow", now)
	require.NotNil(t, tomorrow.DueDate)
	assert.Equal(t, 13, tomorrow.DueDate.Day())

	week := ParseStep("Delegate two tasks this week", now)
	require.NotNil(t, week.DueDate)
	assert.Equal(t, time.Sunday, week.DueDate.Weekday())
	assert.Equal(t, 16, week.DueDate.Day())

	assert.Nil(t, ParseStep("Keep a gratitude journal", now).DueDate)
}

func TestParseStep_NoFalseWordMatches(t *testing.T) {
	s := ParseStep("Review todays notes with the team", now)
	assert.Nil(t, s.DueDate)
	assert.Equal(t, domain.PriorityMedium, s.Priority)
}

func TestParseStep_TimeBlock(t *testing.T) {
	s := ParseStep("Block 90 minutes tomorrow for deep work", now)
	assert.Equal(t, domain.ActionTimeBlock, s.Kind)
	assert.Equal(t, 90, s.DurationMin)

	h := ParseStep("block 2 hours for planning", now)
	assert.Equal(t, domain.ActionTimeBlock, h.Kind)
	assert.Equal(t, 120, h.DurationMin)

	off := ParseStep("Block off 30 mins after lunch", now)
	assert.Equal(t, 30, off.DurationMin)

	plain := ParseStep("Block distractions on your phone", now)
	assert.Equal(t, domain.ActionTask, plain.Kind)
	assert.Zero(t, plain.DurationMin)
}

func TestBlockStart(t *testing.T) {
	soon := BlockStart(ParseStep("block 30 minutes today", now), now)
	assert.Equal(t, time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC), soon)

	later := BlockStart(ParseStep("block 1 hour tomorrow", now), now)
	assert.Equal(t, time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC), later)

	undated := BlockStart(ParseStep("block 1 hour", now), now)
	assert.Equal(t, time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC), undated)
}
