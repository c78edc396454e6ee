package app

import (
	"context"

	"github.com/alexanderramin/ember/internal/domain"
)

type AnalyzeUseCase interface {
	Analyze(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error)
}

type HistoryUseCase interface {
	History(ctx context.Context, userID string, limit int) ([]*domain.BurnoutAnalysis, error)
	Profile(ctx context.Context, userID string) (*domain.BehavioralProfile, error)
}

type RecommendUseCase interface {
	// Generate produces recommendations for an existing analysis.
	Generate(ctx context.Context, analysisID string) (*RecommendResult, error)
	// GenerateLatest analyzes the user first when no analysis is given.
	GenerateLatest(ctx context.Context, userID string) (*RecommendResult, error)
}

type ApplyUseCase interface {
	Apply(ctx context.Context, recommendationID string) (*ApplyResult, error)
	ApplyAll(ctx context.Context, userID string) ([]ApplyOutcome, error)
	UpdateStatus(ctx context.Context, recommendationID string, status domain.ApplicationStatus) (*domain.RecommendationApplication, error)
}

type FeedbackUseCase interface {
	Feedback(ctx context.Context, req FeedbackRequest) (*FeedbackResult, error)
}

type StrategyUseCase interface {
	ImportStrategies(ctx context.Context, docs []StrategyInput) (int, error)
	ListStrategies(ctx context.Context) ([]domain.StrategyDocument, error)
}
