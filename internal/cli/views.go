package cli

import (
	"time"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
)

// JSON shapes for --json output. Domain types carry no wire tags.

type analysisView struct {
	ID                  string                   `json:"id"`
	UserID              string                   `json:"user_id"`
	FinalScore          float64                  `json:"final_score"`
	Level               domain.BurnoutLevel      `json:"level"`
	WorkloadScore       float64                  `json:"workload_score"`
	SentimentAdjustment float64                  `json:"sentiment_adjustment"`
	Breakdown           domain.WorkloadBreakdown `json:"breakdown"`
	Contribution        domain.Contribution      `json:"contribution"`
	Metrics             domain.UserMetrics       `json:"metrics"`
	Sentiment           domain.SentimentSummary  `json:"sentiment"`
	Insights            []string                 `json:"insights"`
	Trend               domain.Trend             `json:"trend"`
	Degraded            bool                     `json:"degraded"`
	AnalyzedAt          time.Time                `json:"analyzed_at"`
}

func toAnalysisView(a *domain.BurnoutAnalysis) *analysisView {
	if a == nil {
		return nil
	}
	return &analysisView{
		ID:                  a.ID,
		UserID:              a.UserID,
		FinalScore:          a.FinalScore,
		Level:               a.Level,
		WorkloadScore:       a.WorkloadScore,
		SentimentAdjustment: a.SentimentAdjustment,
		Breakdown:           a.Breakdown,
		Contribution:        a.Contribution,
		Metrics:             a.Metrics,
		Sentiment:           a.Sentiment,
		Insights:            a.Insights,
		Trend:               a.Trend,
		Degraded:            a.Degraded,
		AnalyzedAt:          a.AnalyzedAt,
	}
}

type profileView struct {
	UserID         string                `json:"user_id"`
	BaselineScore  float64               `json:"baseline_score"`
	StressTriggers []string              `json:"stress_triggers"`
	TrendDirection domain.TrendDirection `json:"trend_direction"`
	SampleDays     int                   `json:"sample_days"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type recommendationView struct {
	ID             string                    `json:"id"`
	UserID         string                    `json:"user_id"`
	AnalysisID     string                    `json:"analysis_id"`
	Title          string                    `json:"title"`
	Priority       domain.Priority           `json:"priority"`
	Category       string                    `json:"category"`
	Description    string                    `json:"description"`
	ActionSteps    []string                  `json:"action_steps"`
	ExpectedImpact string                    `json:"expected_impact"`
	Metadata       domain.GenerationMetadata `json:"metadata"`
	CreatedAt      time.Time                 `json:"created_at"`
}

type strategyView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	EvidenceTag string `json:"evidence_tag,omitempty"`
}

type filteredView struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type recommendView struct {
	Analysis        *analysisView        `json:"analysis"`
	Recommendations []recommendationView `json:"recommendations"`
	Filtered        []filteredView       `json:"filtered"`
	Strategies      []strategyView       `json:"strategies"`
}

func toRecommendView(res *app.RecommendResult) recommendView {
	v := recommendView{
		Analysis:        toAnalysisView(res.Analysis),
		Recommendations: make([]recommendationView, 0, len(res.Recommendations)),
		Filtered:        make([]filteredView, 0, len(res.Filtered)),
		Strategies:      toStrategyViews(res.Strategies),
	}
	for _, r := range res.Recommendations {
		v.Recommendations = append(v.Recommendations, recommendationView{
			ID:             r.ID,
			UserID:         r.UserID,
			AnalysisID:     r.AnalysisID,
			Title:          r.Title,
			Priority:       r.Priority,
			Category:       r.Category,
			Description:    r.Description,
			ActionSteps:    r.ActionSteps,
			ExpectedImpact: r.ExpectedImpact,
			Metadata:       r.Metadata,
			CreatedAt:      r.CreatedAt,
		})
	}
	for _, f := range res.Filtered {
		v.Filtered = append(v.Filtered, filteredView{Title: f.Title, Reason: f.Reason})
	}
	return v
}

func toStrategyViews(docs []domain.StrategyDocument) []strategyView {
	out := make([]strategyView, 0, len(docs))
	for _, d := range docs {
		out = append(out, strategyView{ID: d.ID, Title: d.Title, Category: d.Category, EvidenceTag: d.EvidenceTag})
	}
	return out
}

type applicationView struct {
	ID                  string                   `json:"id"`
	RecommendationID    string                   `json:"recommendation_id"`
	Status              domain.ApplicationStatus `json:"status"`
	TasksCreated        int                      `json:"tasks_created"`
	EventsCreated       int                      `json:"events_created"`
	ScoreBefore         float64                  `json:"score_before"`
	ScoreAfter          *float64                 `json:"score_after,omitempty"`
	Improvement         *float64                 `json:"improvement,omitempty"`
	EffectivenessRating *int                     `json:"effectiveness_rating,omitempty"`
	Notes               string                   `json:"notes,omitempty"`
	AppliedAt           time.Time                `json:"applied_at"`
	CompletedAt         *time.Time               `json:"completed_at,omitempty"`
}

func toApplicationView(a *domain.RecommendationApplication) *applicationView {
	if a == nil {
		return nil
	}
	return &applicationView{
		ID:                  a.ID,
		RecommendationID:    a.RecommendationID,
		Status:              a.Status,
		TasksCreated:        a.TasksCreated,
		EventsCreated:       a.EventsCreated,
		ScoreBefore:         a.ScoreBefore,
		ScoreAfter:          a.ScoreAfter,
		Improvement:         a.Improvement,
		EffectivenessRating: a.EffectivenessRating,
		Notes:               a.Notes,
		AppliedAt:           a.AppliedAt,
		CompletedAt:         a.CompletedAt,
	}
}

type actionItemView struct {
	Step        int               `json:"step"`
	Text        string            `json:"text"`
	Kind        domain.ActionKind `json:"kind"`
	Priority    domain.Priority   `json:"priority"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	DurationMin int               `json:"duration_min,omitempty"`
	TaskID      *string           `json:"task_id,omitempty"`
	EventID     *string           `json:"event_id,omitempty"`
}

type applyView struct {
	Application *applicationView `json:"application"`
	ActionItems []actionItemView `json:"action_items"`
}

func toApplyView(res *app.ApplyResult) *applyView {
	if res == nil {
		return nil
	}
	v := &applyView{Application: toApplicationView(res.Application), ActionItems: make([]actionItemView, 0, len(res.ActionItems))}
	for _, it := range res.ActionItems {
		v.ActionItems = append(v.ActionItems, actionItemView{
			Step:        it.StepIndex + 1,
			Text:        it.Text,
			Kind:        it.Kind,
			Priority:    it.Priority,
			DueDate:     it.DueDate,
			DurationMin: it.DurationMin,
			TaskID:      it.TaskID,
			EventID:     it.EventID,
		})
	}
	return v
}

type outcomeView struct {
	RecommendationID string     `json:"recommendation_id"`
	Title            string     `json:"title"`
	Result           *applyView `json:"result,omitempty"`
	Error            string     `json:"error,omitempty"`
}

type feedbackView struct {
	Application *applicationView `json:"application"`
	Reanalysis  *analysisView    `json:"reanalysis,omitempty"`
}
