package domain

import (
	"fmt"
	"math"
	"time"
)

// StrategyDocument is one evidence-based strategy in the retrieval corpus.
type StrategyDocument struct {
	ID          string
	Title       string
	Text        string
	Category    string
	EvidenceTag string
	Embedding   []float32
	CreatedAt   time.Time
}

// GenerationMetadata records how a recommendation was produced.
type GenerationMetadata struct {
	Model               string `json:"model"`
	LatencyMs           int64  `json:"latency_ms"`
	StrategiesRetrieved int    `json:"strategies_retrieved"`
	Attempts            int    `json:"attempts"`
	PromptVersion       string `json:"prompt_version"`
}

// Recommendation is immutable once persisted.
type Recommendation struct {
	ID             string
	UserID         string
	AnalysisID     string
	Title          string
	Priority       Priority
	Category       string
	Description    string
	ActionSteps    []string
	ExpectedImpact string
	Metadata       GenerationMetadata
	CreatedAt      time.Time
}

type ApplicationStatus string

const (
	StatusApplied    ApplicationStatus = "applied"
	StatusInProgress ApplicationStatus = "in_progress"
	StatusCompleted  ApplicationStatus = "completed"
	StatusCancelled  ApplicationStatus = "cancelled"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// IsTerminal reports whether no further transitions are allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RecommendationApplication tracks one apply event and its outcome.
type RecommendationApplication struct {
	ID                  string
	RecommendationID    string
	UserID              string
	Status              ApplicationStatus
	TasksCreated        int
	EventsCreated       int
	ScoreBefore         float64
	ScoreAfter          *float64
	Improvement         *float64
	EffectivenessRating *int
	Notes               string
	AppliedAt           time.Time
	CompletedAt         *time.Time
	UpdatedAt           time.Time
}

// Transition moves the application to next, enforcing the status state machine.
func (a *RecommendationApplication) Transition(next ApplicationStatus, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot transition application from %s to %s", a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = now
	if next == StatusCompleted {
		a.CompletedAt = &now
	}
	return nil
}

// Improvement is how far the score dropped from before to after, to 0.1.
func Improvement(before, after float64) float64 {
	return math.Round((before-after)*10) / 10
}

// RecordOutcome stores the post-completion score and derives the improvement.
func (a *RecommendationApplication) RecordOutcome(after float64, now time.Time) {
	improvement := Improvement(a.ScoreBefore, after)
	a.ScoreAfter = &after
	a.Improvement = &improvement
	a.UpdatedAt = now
}

// ActionItem is one parsed action step, optionally materialized as a task or event.
type ActionItem struct {
	ID            string
	ApplicationID string
	StepIndex     int
	Text          string
	Kind          ActionKind
	Priority      Priority
	DueDate       *time.Time
	DurationMin   int
	TaskID        *string
	EventID       *string
	CreatedAt     time.Time
}

// RecommendationFeedback is one feedback submission.
type RecommendationFeedback struct {
	ID               string
	RecommendationID string
	UserID           string
	Rating           int
	Completed        bool
	Notes            string
	CreatedAt        time.Time
}
