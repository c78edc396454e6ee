package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/llm"
)

const (
	maxRecommendations = 5
	defaultCategory    = "general"
)

// Input is everything the generator grounds a recommendation set on.
type Input struct {
	Profile    *domain.UserProfile
	Analysis   *domain.BurnoutAnalysis
	Strategies []domain.StrategyDocument
	Meetings   []*domain.Meeting
	Tasks      []*domain.Task
	Now        time.Time
}

// Output holds the recommendations that passed the safety filter and the
// ones it removed.
type Output struct {
	Recommendations []*domain.Recommendation
	Filtered        []app.FilteredRecommendation
}

// draft is one element of the JSON array the model must return.
type draft struct {
	Title          string   `json:"title"`
	Priority       string   `json:"priority"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	ActionSteps    []string `json:"action_steps"`
	ExpectedImpact string   `json:"expected_impact"`
}

func validateDraft(d draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("title is required")
	}
	if !domain.ValidPriorities[strings.ToLower(strings.TrimSpace(d.Priority))] {
		return fmt.Errorf("priority must be high, medium or low, got %q", d.Priority)
	}
	for _, s := range d.ActionSteps {
		if strings.TrimSpace(s) != "" {
			return nil
		}
	}
	return errors.New("action_steps must contain at least one step")
}

// Generator turns an analysis and retrieved strategies into recommendations.
type Generator struct {
	client  llm.LLMClient
	timeout time.Duration
}

// NewGenerator creates a Generator. timeout bounds each LLM attempt; zero
// leaves it to the client.
func NewGenerator(client llm.LLMClient, timeout time.Duration) *Generator {
	return &Generator{client: client, timeout: timeout}
}

// Generate asks the model for recommendations, retrying once with a stricter
// instruction when the output cannot be parsed. A model that cannot be
// reached is a dependency error; output that fails twice is a generation
// error carrying the strategies.
func (g *Generator) Generate(ctx context.Context, in Input) (*Output, error) {
	if in.Analysis == nil {
		return nil, app.InputError("recommend", "analysis is required")
	}
	if in.Now.IsZero() {
		in.Now = time.Now().UTC()
	}

	prompt := BuildPrompt(in)
	var (
		drafts    []draft
		parseErr  error
		model     string
		latencyMs int64
		attempts  int
	)
	for attempts < 2 {
		attempts++
		req := llm.GenerateRequest{
			Task:         llm.TaskRecommend,
			SystemPrompt: systemPrompt,
			UserPrompt:   prompt,
		}
		if attempts > 1 {
			zero := 0.0
			req.UserPrompt = prompt + strictSuffix
			req.Temperature = &zero
		}

		resp, err := g.call(ctx, req)
		if err != nil {
			return nil, app.DependencyError("recommend.generate", err)
		}
		model = resp.Model
		latencyMs += resp.LatencyMs

		drafts, parseErr = parseDrafts(resp.Text)
		if parseErr == nil {
			break
		}
	}
	if parseErr != nil {
		return nil, app.GenerationError("recommend.generate", parseErr, in.Strategies)
	}

	meta := domain.GenerationMetadata{
		Model:               model,
		LatencyMs:           latencyMs,
		StrategiesRetrieved: len(in.Strategies),
		Attempts:            attempts,
		PromptVersion:       PromptVersion,
	}
	recs := make([]*domain.Recommendation, 0, len(drafts))
	for _, d := range drafts {
		recs = append(recs, toRecommendation(d, in, meta))
	}

	kept, filtered := Filter(recs, in.Profile, in.Now)
	return &Output{Recommendations: kept, Filtered: filtered}, nil
}

func (g *Generator) call(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.client.Generate(ctx, req)
}

func parseDrafts(text string) ([]draft, error) {
	drafts, err := llm.ExtractJSONArray[draft](text, validateDraft)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: empty recommendation array", llm.ErrInvalidOutput)
	}
	if len(drafts) > maxRecommendations {
		drafts = drafts[:maxRecommendations]
	}
	return drafts, nil
}

func toRecommendation(d draft, in Input, meta domain.GenerationMetadata) *domain.Recommendation {
	steps := make([]string, 0, len(d.ActionSteps))
	for _, s := range d.ActionSteps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	category := strings.ToLower(strings.TrimSpace(d.Category))
	if category == "" {
		category = defaultCategory
	}
	return &domain.Recommendation{
		ID:             uuid.New().String(),
		UserID:         in.Analysis.UserID,
		AnalysisID:     in.Analysis.ID,
		Title:          strings.TrimSpace(d.Title),
		Priority:       domain.Priority(strings.ToLower(strings.TrimSpace(d.Priority))),
		Category:       category,
		Description:    strings.TrimSpace(d.Description),
		ActionSteps:    steps,
		ExpectedImpact: strings.TrimSpace(d.ExpectedImpact),
		Metadata:       meta,
		CreatedAt:      in.Now,
	}
}
