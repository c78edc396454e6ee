package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.UserProfile) error
	// GetByID returns the user joined with their preferences.
	GetByID(ctx context.Context, id string) (*domain.UserProfile, error)
	UpsertPreferences(ctx context.Context, u *domain.UserProfile) error
}

// WorkspaceRepo is the task/calendar/qualitative-data collaborator.
type WorkspaceRepo interface {
	ListTasks(ctx context.Context, userID string) ([]*domain.Task, error)
	ListMeetings(ctx context.Context, userID string, from, to time.Time) ([]*domain.Meeting, error)
	ListEntries(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.QualitativeEntry, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (string, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (string, error)

	InsertTask(ctx context.Context, t *domain.Task) error
	InsertMeeting(ctx context.Context, m *domain.Meeting) error
	InsertEntry(ctx context.Context, e *domain.QualitativeEntry) error
}

type AnalysisRepo interface {
	Create(ctx context.Context, a *domain.BurnoutAnalysis) error
	GetByID(ctx context.Context, id string) (*domain.BurnoutAnalysis, error)
	Latest(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error)
	// ListByUser returns analyses at or after since, newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.BurnoutAnalysis, error)
}

type ProfileRepo interface {
	Get(ctx context.Context, userID string) (*domain.BehavioralProfile, error)
	// Save inserts when p.Version is 0 and otherwise updates only if the stored
	// version still equals p.Version. On success p.Version is advanced.
	Save(ctx context.Context, p *domain.BehavioralProfile) error
}

type StrategyRepo interface {
	Create(ctx context.Context, d *domain.StrategyDocument) error
	List(ctx context.Context) ([]domain.StrategyDocument, error)
}

// RecommendationRepo has no Update: recommendations are immutable once stored.
type RecommendationRepo interface {
	Create(ctx context.Context, r *domain.Recommendation) error
	GetByID(ctx context.Context, id string) (*domain.Recommendation, error)
	ListByAnalysis(ctx context.Context, analysisID string) ([]*domain.Recommendation, error)
	ListUnapplied(ctx context.Context, userID string) ([]*domain.Recommendation, error)
}

type ApplicationRepo interface {
	Create(ctx context.Context, a *domain.RecommendationApplication) error
	GetByRecommendation(ctx context.Context, recommendationID string) (*domain.RecommendationApplication, error)
	Update(ctx context.Context, a *domain.RecommendationApplication, from domain.ApplicationStatus) error
	SetOutcome(ctx context.Context, id string, scoreAfter, improvement float64, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.RecommendationApplication, error)
	ListAwaitingOutcome(ctx context.Context, userID string, completedBy time.Time) ([]*domain.RecommendationApplication, error)

	CreateActionItem(ctx context.Context, item *domain.ActionItem) error
	ListActionItems(ctx context.Context, applicationID string) ([]*domain.ActionItem, error)
}

type FeedbackRepo interface {
	Create(ctx context.Context, f *domain.RecommendationFeedback) error
	ListByRecommendation(ctx context.Context, recommendationID string) ([]*domain.RecommendationFeedback, error)
}
