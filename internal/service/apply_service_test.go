package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_MaterializesEveryStep(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Reclaim your calendar",
		"Decline one optional meeting today",
		"Delegate the weekly report this week",
		"Block 30 minutes today for a walk",
		"Consider a no-meeting afternoon")
	ctx := context.Background()

	res, err := h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, res.ActionItems, 4)

	appl := res.Application
	assert.Equal(t, domain.StatusApplied, appl.Status)
	assert.Equal(t, 3, appl.TasksCreated)
	assert.Equal(t, 1, appl.EventsCreated)
	assert.Equal(t, 62.0, appl.ScoreBefore)

	today := res.ActionItems[0]
	require.NotNil(t, today.DueDate)
	assert.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, 0, time.UTC), *today.DueDate)
	assert.NotNil(t, today.TaskID)

	week := res.ActionItems[1]
	require.NotNil(t, week.DueDate)
	assert.False(t, week.DueDate.Before(clock))
	assert.True(t, week.DueDate.Before(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)))

	block := res.ActionItems[2]
	assert.Equal(t, domain.ActionTimeBlock, block.Kind)
	assert.Equal(t, 30, block.DurationMin)
	require.NotNil(t, block.EventID)
	assert.Nil(t, block.TaskID)

	assert.Equal(t, domain.PriorityLow, res.ActionItems[3].Priority)

	tasks, err := h.workspace.ListTasks(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.Equal(t, "From recommendation: Reclaim your calendar", task.Description)
		assert.Equal(t, domain.TaskTodo, task.Status)
	}

	meetings, err := h.workspace.ListMeetings(ctx, u.ID, clock, clock.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, time.Date(2025, 3, 12, 16, 0, 0, 0, time.UTC), meetings[0].StartTime.UTC())
	assert.Equal(t, 30*time.Minute, meetings[0].EndTime.Sub(meetings[0].StartTime))

	stored, err := h.apps.ListActionItems(ctx, appl.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestApply_TwiceIsInputError(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")
	ctx := context.Background()

	_, err := h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)

	_, err = h.apply.Apply(ctx, rec.ID)
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.KindInput))
	assert.Equal(t, 1, h.taskCount(t, u.ID), "second apply must not create tasks")
}

func TestApply_UnknownRecommendation(t *testing.T) {
	h := newHarness(t)
	_, err := h.apply.Apply(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.KindInput))
}

func TestApply_RollbackOnActionItemFailure(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Boundaries", "Leave at six today", "Mute chat after hours")
	ctx := context.Background()

	failUoW := &testutil.FailOnNthExecUoW{
		DB:     h.db,
		FailOn: 2,
		Match:  "recommendation_action_items",
		Err:    fmt.Errorf("injected action item failure"),
	}
	svc := NewApplyService(h.recs, h.apps, h.analyses, h.users, h.analysis, failUoW, WithApplyClock(fixedClock))

	_, err := svc.Apply(ctx, rec.ID)
	require.Error(t, err)
	assert.True(t, failUoW.Fired())
	assert.Contains(t, err.Error(), "injected action item failure")

	_, err = h.apps.GetByRecommendation(ctx, rec.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "application should not exist after rollback")
	assert.Zero(t, h.taskCount(t, u.ID), "tasks should not exist after rollback")

	_, err = h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err, "recommendation stays applicable after a rollback")
}

type flakyWriter struct {
	WorkspaceWriter
}

func (w flakyWriter) CreateTask(ctx context.Context, in domain.TaskInput) (string, error) {
	if strings.Contains(in.Title, "fail") {
		return "", errors.New("task backend rejected the write")
	}
	return w.WorkspaceWriter.CreateTask(ctx, in)
}

func TestApplyAll_FailureDoesNotStopOthers(t *testing.T) {
	h := newHarness(t, WithWorkspaceWriter(func(tx db.DBTX) WorkspaceWriter {
		return flakyWriter{SQLiteWorkspaceWriter(tx)}
	}))
	u := h.seedUser(t)
	ctx := context.Background()

	good := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")
	bad := h.seedRecommendation(t, u.ID, "Broken", "This step will fail")
	other := h.seedRecommendation(t, u.ID, "Sleep", "Stop screens at ten")
	applied := h.seedRecommendation(t, u.ID, "Done already", "Plan tomorrow")
	_, err := h.apply.Apply(ctx, applied.ID)
	require.NoError(t, err)

	outcomes, err := h.apply.ApplyAll(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byID := make(map[string]app.ApplyOutcome)
	for _, o := range outcomes {
		assert.True(t, (o.Err == nil) != (o.Result == nil), "exactly one of result or error")
		byID[o.RecommendationID] = o
	}
	assert.NoError(t, byID[good.ID].Err)
	assert.NoError(t, byID[other.ID].Err)
	assert.Error(t, byID[bad.ID].Err)
	assert.Equal(t, "Broken", byID[bad.ID].Title)

	_, err = h.apps.GetByRecommendation(ctx, bad.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 3, h.taskCount(t, u.ID))
}

func TestApplyAll_UnknownUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.apply.ApplyAll(context.Background(), "nobody")
	assert.True(t, app.IsKind(err, app.KindInput))
}

func TestUpdateStatus_StateMachine(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")
	ctx := context.Background()

	_, err := h.apply.UpdateStatus(ctx, rec.ID, domain.StatusInProgress)
	assert.True(t, app.IsKind(err, app.KindInput), "not applied yet")

	_, err = h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)

	_, err = h.apply.UpdateStatus(ctx, rec.ID, domain.StatusCompleted)
	assert.True(t, app.IsKind(err, app.KindInput), "completion goes through feedback")

	a, err := h.apply.UpdateStatus(ctx, rec.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, a.Status)

	a, err = h.apply.UpdateStatus(ctx, rec.ID, domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, a.Status)

	_, err = h.apply.UpdateStatus(ctx, rec.ID, domain.StatusInProgress)
	assert.True(t, app.IsKind(err, app.KindInput), "cancelled is terminal")

	stored, err := h.apps.GetByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestFeedback_CompletionRecordsImprovement(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	h.seedOverloaded(t, u.ID)
	ctx := context.Background()

	before, err := h.analysis.Analyze(ctx, u.ID)
	require.NoError(t, err)

	rec := testutil.NewTestRecommendation(u.ID, before.ID, "Protect mornings", "Block 60 minutes tomorrow for focus")
	require.NoError(t, h.recs.Create(ctx, rec))
	applied, err := h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, before.FinalScore, applied.Application.ScoreBefore)

	res, err := h.apply.Feedback(ctx, app.FeedbackRequest{
		RecommendationID: rec.ID,
		Rating:           5,
		Completed:        true,
		Notes:            "mornings feel calmer",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Reanalysis)

	a := res.Application
	assert.Equal(t, domain.StatusCompleted, a.Status)
	require.NotNil(t, a.CompletedAt)
	require.NotNil(t, a.EffectivenessRating)
	assert.Equal(t, 5, *a.EffectivenessRating)
	require.NotNil(t, a.ScoreAfter)
	require.NotNil(t, a.Improvement)
	assert.Equal(t, res.Reanalysis.FinalScore, *a.ScoreAfter)
	assert.Equal(t, domain.Improvement(a.ScoreBefore, *a.ScoreAfter), *a.Improvement)

	stored, err := h.apps.GetByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NotNil(t, stored.Improvement)
	assert.InDelta(t, *a.Improvement, *stored.Improvement, 1e-9)
	assert.Equal(t, "mornings feel calmer", stored.Notes)

	fb, err := h.feedback.ListByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, fb, 1)
	assert.True(t, fb[0].Completed)
}

type analyzeFunc func(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error)

func (f analyzeFunc) Analyze(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error) {
	return f(ctx, userID)
}

func TestFeedback_FailedReanalysisIsFilledInByNextAnalysis(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	h.seedOverloaded(t, u.ID)
	rec := h.seedRecommendation(t, u.ID, "Protect evenings", "Leave the office by 6pm today")
	ctx := context.Background()

	down := analyzeFunc(func(context.Context, string) (*domain.BurnoutAnalysis, error) {
		return nil, app.DependencyError("analyze", errors.New("ollama unreachable"))
	})
	svc := NewApplyService(h.recs, h.apps, h.analyses, h.users, down, testutil.NewTestUoW(h.db),
		WithApplyClock(fixedClock))

	applied, err := svc.Apply(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 62.0, applied.Application.ScoreBefore)

	res, err := svc.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 5, Completed: true})
	require.NoError(t, err)
	assert.Nil(t, res.Reanalysis)
	assert.Nil(t, res.Application.ScoreAfter)

	later, err := h.analysis.Analyze(ctx, u.ID)
	require.NoError(t, err)

	stored, err := h.apps.GetByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NotNil(t, stored.ScoreAfter)
	require.NotNil(t, stored.Improvement)
	assert.Equal(t, later.FinalScore, *stored.ScoreAfter)
	assert.Equal(t, domain.Improvement(62, later.FinalScore), *stored.Improvement)
}

func TestFeedback_OutcomeKeepsFeedbackSubmittedDuringReanalysis(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	h.seedOverloaded(t, u.ID)
	rec := h.seedRecommendation(t, u.ID, "Protect evenings", "Leave the office by 6pm today")
	ctx := context.Background()

	var svc *ApplyService
	interleaved := analyzeFunc(func(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error) {
		_, err := svc.Feedback(ctx, app.FeedbackRequest{
			RecommendationID: rec.ID,
			Rating:           1,
			Notes:            "actually it did not help",
		})
		require.NoError(t, err)
		return h.analysis.Analyze(ctx, userID)
	})
	svc = NewApplyService(h.recs, h.apps, h.analyses, h.users, interleaved, testutil.NewTestUoW(h.db),
		WithApplyClock(fixedClock))

	_, err := svc.Apply(ctx, rec.ID)
	require.NoError(t, err)
	res, err := svc.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 5, Completed: true, Notes: "good"})
	require.NoError(t, err)
	require.NotNil(t, res.Reanalysis)

	stored, err := h.apps.GetByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	require.NotNil(t, stored.EffectivenessRating)
	assert.Equal(t, 1, *stored.EffectivenessRating)
	assert.Equal(t, "actually it did not help", stored.Notes)
	require.NotNil(t, stored.ScoreAfter)
	assert.Equal(t, res.Reanalysis.FinalScore, *stored.ScoreAfter)
	assert.Equal(t, stored.Notes, res.Application.Notes, "result reflects the stored row")
}

func TestUpdateStatus_StaleTransitionIsConsistencyError(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")
	ctx := context.Background()
	_, err := h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)

	racer := &racingApps{ApplicationRepo: h.apps, before: func() {
		_, err := h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 4, Completed: true})
		require.NoError(t, err)
	}}
	svc := NewApplyService(h.recs, racer, h.analyses, h.users, h.analysis, testutil.NewTestUoW(h.db),
		WithApplyClock(fixedClock))

	_, err = svc.UpdateStatus(ctx, rec.ID, domain.StatusCancelled)
	require.Error(t, err)
	assert.True(t, app.IsKind(err, app.KindConsistency))
	assert.ErrorIs(t, err, repository.ErrConcurrentUpdate)

	stored, err := h.apps.GetByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

// racingApps runs before once, between the status read and the write.
type racingApps struct {
	repository.ApplicationRepo
	before func()
}

func (r *racingApps) Update(ctx context.Context, a *domain.RecommendationApplication, from domain.ApplicationStatus) error {
	if r.before != nil {
		r.before()
		r.before = nil
	}
	return r.ApplicationRepo.Update(ctx, a, from)
}

func TestFeedback_WithoutCompletionKeepsStatus(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")
	ctx := context.Background()
	_, err := h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)

	res, err := h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 3})
	require.NoError(t, err)
	assert.Nil(t, res.Reanalysis)
	assert.Equal(t, domain.StatusApplied, res.Application.Status)
	assert.Nil(t, res.Application.Improvement)
}

func TestFeedback_Validation(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: rating})
		assert.True(t, app.IsKind(err, app.KindInput), "rating %d", rating)
	}

	_, err := h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 4})
	assert.True(t, app.IsKind(err, app.KindInput), "not applied yet")

	_, err = h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: "missing", Rating: 4})
	assert.True(t, app.IsKind(err, app.KindInput))

	_, err = h.apply.Apply(ctx, rec.ID)
	require.NoError(t, err)
	_, err = h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 4, Completed: true})
	require.NoError(t, err)
	_, err = h.apply.Feedback(ctx, app.FeedbackRequest{RecommendationID: rec.ID, Rating: 4, Completed: true})
	assert.True(t, app.IsKind(err, app.KindInput), "already completed")

	fb, err := h.feedback.ListByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, fb, 1, "rejected feedback is not stored")
}

type recordingTrigger struct {
	users []string
}

func (r *recordingTrigger) Trigger(userID string) { r.users = append(r.users, userID) }

func TestApply_TriggersReanalysis(t *testing.T) {
	trigger := &recordingTrigger{}
	h := newHarness(t, WithReanalysisHook(trigger))
	u := h.seedUser(t)
	rec := h.seedRecommendation(t, u.ID, "Walk", "Take a walk today")

	_, err := h.apply.Apply(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, trigger.users)
}
