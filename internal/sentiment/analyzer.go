package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/llm"
)

const (
	// MaxAdjustment bounds the sentiment shift in either direction.
	MaxAdjustment = 15.0
	// SignalWeight is added per detected burnout signal.
	SignalWeight = 2.5
	// ScoreWeight scales the -1..1 sentiment score.
	ScoreWeight = 10.0

	maxEntryChars = 2000
)

// Result is the outcome of sentiment analysis. Status distinguishes a real
// reading from the neutral fallbacks.
type Result struct {
	Summary    domain.SentimentSummary
	Adjustment float64
	// Err is the cause of a degraded result, kept for logging.
	Err error
}

// llmOutput is the JSON contract the model must satisfy.
type llmOutput struct {
	Polarity string                `json:"polarity"`
	Score    float64               `json:"score"`
	Themes   []string              `json:"themes"`
	Signals  domain.BurnoutSignals `json:"signals"`
	Summary  string                `json:"summary"`
}

func validateOutput(o llmOutput) error {
	switch o.Polarity {
	case "positive", "neutral", "negative":
	default:
		return fmt.Errorf("polarity must be positive, neutral or negative, got %q", o.Polarity)
	}
	if o.Score < -1 || o.Score > 1 {
		return fmt.Errorf("score must be in [-1,1], got %f", o.Score)
	}
	return nil
}

// Analyzer scores qualitative entries through the LLM.
type Analyzer struct {
	client  llm.LLMClient
	timeout time.Duration
}

// NewAnalyzer creates an Analyzer. timeout bounds the whole call; zero means
// only the client's own deadlines apply.
func NewAnalyzer(client llm.LLMClient, timeout time.Duration) *Analyzer {
	return &Analyzer{client: client, timeout: timeout}
}

// Analyze never fails: with no entries it reports insufficient data, and any
// LLM failure yields a zero adjustment with a degraded status.
func (a *Analyzer) Analyze(ctx context.Context, entries []*domain.QualitativeEntry) Result {
	if len(entries) == 0 {
		return Result{Summary: domain.SentimentSummary{
			Status: domain.SentimentInsufficientData,
			Themes: []string{},
		}}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSentiment,
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(entries),
		JSON:         true,
	})
	if err != nil {
		return degraded(len(entries), fmt.Errorf("sentiment generation: %w", err))
	}

	out, err := llm.ExtractJSON[llmOutput](resp.Text, validateOutput)
	if err != nil {
		return degraded(len(entries), fmt.Errorf("sentiment output: %w", err))
	}

	themes := make([]string, 0, len(out.Themes))
	for _, t := range out.Themes {
		if t = strings.TrimSpace(t); t != "" {
			themes = append(themes, strings.ToLower(t))
		}
	}

	return Result{
		Summary: domain.SentimentSummary{
			Status:     domain.SentimentOK,
			Polarity:   out.Polarity,
			Score:      out.Score,
			Themes:     themes,
			Signals:    out.Signals,
			Summary:    strings.TrimSpace(out.Summary),
			EntryCount: len(entries),
		},
		Adjustment: Adjustment(out.Score, out.Signals),
	}
}

// Adjustment converts a sentiment reading into a score shift:
// clamp(-score*10 + 2.5*signals, -15, 15), rounded to 0.1.
func Adjustment(score float64, signals domain.BurnoutSignals) float64 {
	adj := -score*ScoreWeight + SignalWeight*float64(signals.Count())
	adj = math.Max(-MaxAdjustment, math.Min(MaxAdjustment, adj))
	return math.Round(adj*10) / 10
}

func degraded(n int, err error) Result {
	return Result{
		Summary: domain.SentimentSummary{
			Status:     domain.SentimentDegraded,
			Themes:     []string{},
			EntryCount: n,
		},
		Err: err,
	}
}

func buildUserPrompt(entries []*domain.QualitativeEntry) string {
	var b strings.Builder
	b.WriteString("Entries, newest first:\n")
	for i, e := range entries {
		content := llm.Clip(strings.TrimSpace(e.Content), maxEntryChars)
		fmt.Fprintf(&b, "\n[%d] %s (%s)\n%s\n", i+1, e.CreatedAt.Format("2006-01-02 15:04"), e.EntryType, content)
	}
	return b.String()
}
