package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/google/uuid"
)

var testNameCounter atomic.Int64

// User options
type UserOption func(*domain.UserProfile)

func WithRole(role string) UserOption {
	return func(u *domain.UserProfile) {
		u.Role = role
	}
}

func WithAvoidedCategories(cats ...string) UserOption {
	return func(u *domain.UserProfile) {
		u.AvoidedCategories = cats
	}
}

func WithAcceptedCategories(cats ...string) UserOption {
	return func(u *domain.UserProfile) {
		u.AcceptedCategories = cats
	}
}

func WithConstraint(c domain.Constraint) UserOption {
	return func(u *domain.UserProfile) {
		u.Constraints = append(u.Constraints, c)
	}
}

func NewTestUser(opts ...UserOption) *domain.UserProfile {
	u := &domain.UserProfile{
		ID:                 uuid.New().String(),
		Name:               fmt.Sprintf("user-%d", testNameCounter.Add(1)),
		Role:               "engineer",
		CommunicationStyle: "direct",
		CreatedAt:          time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTaskDue(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithTaskPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithCompletedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.Status = domain.TaskDone
		t.CompletedAt = &at
	}
}

func NewTestTask(userID, title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          title,
		Status:         domain.TaskTodo,
		Priority:       domain.PriorityMedium,
		EstimatedHours: 1,
		CreatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Meeting options
type MeetingOption func(*domain.Meeting)

func WithOptional() MeetingOption {
	return func(m *domain.Meeting) {
		m.IsOptional = true
	}
}

func WithRecurring() MeetingOption {
	return func(m *domain.Meeting) {
		m.IsRecurring = true
	}
}

func NewTestMeeting(userID string, start time.Time, d time.Duration, opts ...MeetingOption) *domain.Meeting {
	m := &domain.Meeting{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     fmt.Sprintf("meeting-%d", testNameCounter.Add(1)),
		StartTime: start,
		EndTime:   start.Add(d),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewTestEntry(userID, content string, at time.Time) *domain.QualitativeEntry {
	return &domain.QualitativeEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   content,
		EntryType: domain.EntryDiary,
		CreatedAt: at,
	}
}

// Analysis options
type AnalysisOption func(*domain.BurnoutAnalysis)

func WithAnalyzedAt(at time.Time) AnalysisOption {
	return func(a *domain.BurnoutAnalysis) {
		a.AnalyzedAt = at
	}
}

func WithBreakdown(b domain.WorkloadBreakdown) AnalysisOption {
	return func(a *domain.BurnoutAnalysis) {
		a.Breakdown = b
	}
}

func WithSentimentAdjustment(adj float64) AnalysisOption {
	return func(a *domain.BurnoutAnalysis) {
		a.SentimentAdjustment = adj
	}
}

func WithLevel(l domain.BurnoutLevel) AnalysisOption {
	return func(a *domain.BurnoutAnalysis) {
		a.Level = l
	}
}

// NewTestAnalysis builds an analysis whose workload score equals score.
// The level is derived with the standard 40/70 cut points.
func NewTestAnalysis(userID string, score float64, opts ...AnalysisOption) *domain.BurnoutAnalysis {
	level := domain.LevelGreen
	switch {
	case score > 70:
		level = domain.LevelRed
	case score >= 40:
		level = domain.LevelYellow
	}
	a := &domain.BurnoutAnalysis{
		ID:            uuid.New().String(),
		UserID:        userID,
		FinalScore:    score,
		Level:         level,
		WorkloadScore: score,
		Sentiment:     domain.SentimentSummary{Status: domain.SentimentInsufficientData, Themes: []string{}},
		Trend:         domain.Trend{Direction: domain.TrendStable},
		AnalyzedAt:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func NewTestRecommendation(userID, analysisID, title string, steps ...string) *domain.Recommendation {
	return &domain.Recommendation{
		ID:             uuid.New().String(),
		UserID:         userID,
		AnalysisID:     analysisID,
		Title:          title,
		Priority:       domain.PriorityMedium,
		Category:       "workload",
		Description:    title,
		ActionSteps:    steps,
		ExpectedImpact: "lower workload",
		Metadata:       domain.GenerationMetadata{Model: "test", Attempts: 1, PromptVersion: "test"},
		CreatedAt:      time.Now().UTC(),
	}
}

func NewTestStrategy(title, category string, vec ...float32) domain.StrategyDocument {
	return domain.StrategyDocument{
		ID:          uuid.New().String(),
		Title:       title,
		Text:        title + " strategy text",
		Category:    category,
		EvidenceTag: "test",
		Embedding:   vec,
		CreatedAt:   time.Now().UTC(),
	}
}
