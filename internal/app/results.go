package app

import "github.com/alexanderramin/ember/internal/domain"

// FilteredRecommendation is a generated recommendation the safety filter dropped.
type FilteredRecommendation struct {
	Title  string
	Reason string
}

type RecommendResult struct {
	Analysis        *domain.BurnoutAnalysis
	Recommendations []*domain.Recommendation
	Strategies      []domain.StrategyDocument
	Filtered        []FilteredRecommendation
}

type ApplyResult struct {
	Application *domain.RecommendationApplication
	ActionItems []*domain.ActionItem
}

// ApplyOutcome is one entry of an apply-all batch. Exactly one of Result or Err is set.
type ApplyOutcome struct {
	RecommendationID string
	Title            string
	Result           *ApplyResult
	Err              error
}

type FeedbackRequest struct {
	RecommendationID string
	Rating           int
	Completed        bool
	Notes            string
}

type FeedbackResult struct {
	Application *domain.RecommendationApplication
	// Reanalysis is set when completion triggered a fresh analysis.
	Reanalysis *domain.BurnoutAnalysis
}

// StrategyInput is one strategy document to embed and store.
type StrategyInput struct {
	Title       string `yaml:"title"`
	Text        string `yaml:"text"`
	Category    string `yaml:"category"`
	EvidenceTag string `yaml:"evidence_tag"`
}
