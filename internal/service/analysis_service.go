package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/collector"
	"github.com/alexanderramin/ember/internal/config"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/messagebus"
	"github.com/alexanderramin/ember/internal/metrics"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/scoring"
	"github.com/alexanderramin/ember/internal/sentiment"
	"github.com/alexanderramin/ember/internal/workload"
	"github.com/google/uuid"
)

// AnalysisService runs the collect, score, fuse and learn pipeline.
type AnalysisService struct {
	collector *collector.Collector
	sentiment *sentiment.Analyzer
	analyses  repository.AnalysisRepo
	profiles  repository.ProfileRepo
	outcomes  repository.ApplicationRepo
	cfg       *config.Config

	publisher messagebus.AnalysisPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	observer  UseCaseObserver
	locks     *userLocks
}

type AnalysisOption func(*AnalysisService)

// WithPublisher announces every stored analysis.
func WithPublisher(p messagebus.AnalysisPublisher) AnalysisOption {
	return func(s *AnalysisService) { s.publisher = p }
}

// WithOutcomeTracking lets each analysis record the post-completion score of
// applications that are still waiting for one.
func WithOutcomeTracking(apps repository.ApplicationRepo) AnalysisOption {
	return func(s *AnalysisService) { s.outcomes = apps }
}

func WithMetrics(m *metrics.Metrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

func WithLogger(l *slog.Logger) AnalysisOption {
	return func(s *AnalysisService) { s.logger = l }
}

func WithUseCaseObserver(o UseCaseObserver) AnalysisOption {
	return func(s *AnalysisService) { s.observer = o }
}

func NewAnalysisService(
	c *collector.Collector,
	s *sentiment.Analyzer,
	analyses repository.AnalysisRepo,
	profiles repository.ProfileRepo,
	cfg *config.Config,
	opts ...AnalysisOption,
) *AnalysisService {
	svc := &AnalysisService{
		collector: c,
		sentiment: s,
		analyses:  analyses,
		profiles:  profiles,
		cfg:       cfg,
		publisher: messagebus.NoopPublisher{},
		logger:    slog.Default(),
		observer:  NoopUseCaseObserver{},
		locks:     newUserLocks(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Analyze produces and stores a fresh analysis for userID. Runs for the same
// user are serialized; different users proceed in parallel.
func (s *AnalysisService) Analyze(ctx context.Context, userID string) (analysis *domain.BurnoutAnalysis, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": userID}
	ctx, span := startSpan(ctx, "analysis.analyze", attribute.String("user.id", userID))
	defer func() {
		endSpan(span, err)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "analyze",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	unlock := s.locks.Lock(userID)
	defer unlock()

	snap, err := s.collector.Collect(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := snap.CollectedAt

	var (
		wl      workload.Result
		sent    sentiment.Result
		history []*domain.BurnoutAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wl = workload.Analyze(snap.Metrics, s.cfg.Workload)
		return nil
	})
	g.Go(func() error {
		sent = s.sentiment.Analyze(gctx, snap.Entries)
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.analyses.ListByUser(gctx, userID, now.AddDate(0, 0, -s.historyDays()), 0)
		if err != nil {
			return fmt.Errorf("loading analysis history: %w", err)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}
	if sent.Err != nil {
		s.logger.WarnContext(ctx, "sentiment degraded", "user_id", userID, "error", sent.Err)
	}

	fused := scoring.Fuse(wl.Score, sent.Adjustment)
	analysis = &domain.BurnoutAnalysis{
		ID:                  uuid.New().String(),
		UserID:              userID,
		FinalScore:          fused.Score,
		Level:               fused.Level,
		WorkloadScore:       wl.Score,
		SentimentAdjustment: sent.Adjustment,
		Breakdown:           wl.Breakdown,
		Contribution:        fused.Contribution,
		Metrics:             snap.Metrics,
		Sentiment:           sent.Summary,
		Insights:            append(wl.Insights, sentimentInsights(sent.Summary)...),
		Trend: scoring.ComputeTrend(fused.Score, fused.Level, history, now, scoring.TrendOptions{
			Window:     s.cfg.Trend.Window,
			StableBand: s.cfg.Trend.StableBand,
		}),
		Degraded:   sent.Summary.Status == domain.SentimentDegraded,
		AnalyzedAt: now.UTC(),
	}

	if err = s.analyses.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("storing analysis: %w", err)
	}
	fields["analysis_id"] = analysis.ID
	fields["final_score"] = analysis.FinalScore
	fields["level"] = string(analysis.Level)
	fields["degraded"] = analysis.Degraded
	span.SetAttributes(
		attribute.Float64("analysis.final_score", analysis.FinalScore),
		attribute.String("analysis.level", string(analysis.Level)),
		attribute.Bool("analysis.degraded", analysis.Degraded),
	)

	if s.outcomes != nil {
		n, oerr := s.recordOutcomes(ctx, analysis)
		if oerr != nil {
			s.logger.WarnContext(ctx, "recording application outcomes failed", "user_id", userID, "error", oerr)
		}
		if n > 0 {
			fields["outcomes_recorded"] = n
		}
	}

	if perr := s.learnProfile(ctx, userID, append([]*domain.BurnoutAnalysis{analysis}, history...), now); perr != nil {
		// The analysis itself is stored; a lost profile race is reported, not fatal.
		s.logger.WarnContext(ctx, "behavioral profile not updated", "user_id", userID, "error", perr)
		fields["profile_error"] = perr.Error()
	}

	if perr := s.publisher.PublishAnalysis(ctx, analysis); perr != nil {
		s.logger.WarnContext(ctx, "publishing analysis failed", "analysis_id", analysis.ID, "error", perr)
	} else if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(messagebus.EventAnalysisDone).Inc()
	}
	if s.metrics != nil {
		s.metrics.RecordAnalysis(analysis, time.Since(startedAt))
	}
	return analysis, nil
}

// recordOutcomes sets score_after and improvement on the user's completed
// applications that have none yet, using a as the post-completion analysis.
func (s *AnalysisService) recordOutcomes(ctx context.Context, a *domain.BurnoutAnalysis) (int, error) {
	pending, err := s.outcomes.ListAwaitingOutcome(ctx, a.UserID, a.AnalyzedAt)
	if err != nil {
		return 0, err
	}
	recorded := 0
	for _, p := range pending {
		ok, err := s.outcomes.SetOutcome(ctx, p.ID, a.FinalScore, domain.Improvement(p.ScoreBefore, a.FinalScore), a.AnalyzedAt)
		if err != nil {
			return recorded, err
		}
		if !ok {
			continue
		}
		recorded++
		if s.metrics != nil {
			p.RecordOutcome(a.FinalScore, a.AnalyzedAt)
			s.metrics.RecordOutcome(p)
		}
	}
	return recorded, nil
}

// learnProfile recomputes the behavioral profile under optimistic
// concurrency. A conflicting writer forces a reload of both the profile and
// the history before the next attempt.
func (s *AnalysisService) learnProfile(ctx context.Context, userID string, history []*domain.BurnoutAnalysis, now time.Time) error {
	attempts := s.cfg.Patterns.MaxUpdateAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			var err error
			history, err = s.analyses.ListByUser(ctx, userID, now.AddDate(0, 0, -s.historyDays()), 0)
			if err != nil {
				return fmt.Errorf("reloading analysis history: %w", err)
			}
		}

		learned, ok := scoring.LearnProfile(userID, history, now, s.cfg.Patterns)
		if !ok {
			return nil
		}

		current, err := s.profiles.Get(ctx, userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			learned.Version = 0
		case err != nil:
			return fmt.Errorf("loading behavioral profile: %w", err)
		default:
			learned.Version = current.Version
		}

		err = s.profiles.Save(ctx, learned)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConcurrentUpdate) {
			return fmt.Errorf("saving behavioral profile: %w", err)
		}
		lastErr = err
		if s.metrics != nil {
			s.metrics.ProfileConflicts.Inc()
		}
	}
	return app.ConsistencyError("learn-profile", lastErr)
}

// historyDays bounds the history loaded per run: the profile baseline
// window, and never less than a week.
func (s *AnalysisService) historyDays() int {
	return max(s.cfg.Patterns.BaselineDays, 7)
}

// History returns the newest analyses for userID, newest first.
func (s *AnalysisService) History(ctx context.Context, userID string, limit int) ([]*domain.BurnoutAnalysis, error) {
	return s.analyses.ListByUser(ctx, userID, time.Time{}, limit)
}

// Profile returns the learned profile, or nil when too few analyses exist yet.
func (s *AnalysisService) Profile(ctx context.Context, userID string) (*domain.BehavioralProfile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func sentimentInsights(sum domain.SentimentSummary) []string {
	switch sum.Status {
	case domain.SentimentDegraded:
		return []string{"Sentiment analysis unavailable; score reflects workload only"}
	case domain.SentimentInsufficientData:
		return []string{"No recent check-ins or diary entries to assess sentiment"}
	}
	if active := sum.Signals.Active(); len(active) > 0 {
		return []string{"Burnout signals in recent entries: " + strings.ReplaceAll(strings.Join(active, ", "), "_", " ")}
	}
	return nil
}

var (
	_ app.AnalyzeUseCase = (*AnalysisService)(nil)
	_ app.HistoryUseCase = (*AnalysisService)(nil)
)
