package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/collector"
	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/metrics"
	"github.com/alexanderramin/ember/internal/recommend"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/retrieval"
)

// calendarHorizon is how far ahead the generator sees the calendar.
const calendarHorizon = 7 * 24 * time.Hour

type RecommendationService struct {
	analyses  repository.AnalysisRepo
	users     repository.UserRepo
	workspace collector.Workspace
	retriever StrategyRetriever
	generator *recommend.Generator
	analyzer  app.AnalyzeUseCase
	uow       db.UnitOfWork
	metrics   *metrics.Metrics
	observer  UseCaseObserver
	now       func() time.Time
}

func NewRecommendationService(
	analyses repository.AnalysisRepo,
	users repository.UserRepo,
	workspace collector.Workspace,
	retriever StrategyRetriever,
	generator *recommend.Generator,
	analyzer app.AnalyzeUseCase,
	uow db.UnitOfWork,
	m *metrics.Metrics,
	observers ...UseCaseObserver,
) *RecommendationService {
	return &RecommendationService{
		analyses:  analyses,
		users:     users,
		workspace: workspace,
		retriever: retriever,
		generator: generator,
		analyzer:  analyzer,
		uow:       uow,
		metrics:   m,
		observer:  useCaseObserverOrNoop(observers),
		now:       time.Now,
	}
}

// Generate produces and stores recommendations for an existing analysis.
func (s *RecommendationService) Generate(ctx context.Context, analysisID string) (*app.RecommendResult, error) {
	analysis, err := s.analyses.GetByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.InputError("recommend", "unknown analysis %q", analysisID)
		}
		return nil, fmt.Errorf("loading analysis: %w", err)
	}
	return s.generateFor(ctx, analysis)
}

// GenerateLatest runs a fresh analysis for userID and recommends against it.
func (s *RecommendationService) GenerateLatest(ctx context.Context, userID string) (*app.RecommendResult, error) {
	analysis, err := s.analyzer.Analyze(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generateFor(ctx, analysis)
}

func (s *RecommendationService) generateFor(ctx context.Context, analysis *domain.BurnoutAnalysis) (result *app.RecommendResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"user_id": analysis.UserID, "analysis_id": analysis.ID}
	ctx, span := startSpan(ctx, "recommend.generate",
		attribute.String("user.id", analysis.UserID),
		attribute.String("analysis.id", analysis.ID))
	defer func() {
		endSpan(span, err)
		if err != nil && s.metrics != nil {
			s.metrics.GenerationFailures.WithLabelValues(string(kindOrUnknown(err))).Inc()
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "recommend",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	user, err := s.users.GetByID(ctx, analysis.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.InputError("recommend", "unknown user %q", analysis.UserID)
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	matches, err := s.retriever.Retrieve(ctx, analysis)
	if err != nil {
		return nil, err
	}
	strategies := retrieval.Documents(matches)
	fields["strategies"] = len(strategies)

	now := s.now()
	tasks, err := s.workspace.ListTasks(ctx, analysis.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	meetings, err := s.workspace.ListMeetings(ctx, analysis.UserID, now, now.Add(calendarHorizon))
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}

	out, err := s.generator.Generate(ctx, recommend.Input{
		Profile:    user,
		Analysis:   analysis,
		Strategies: strategies,
		Meetings:   meetings,
		Tasks:      tasks,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		recs := repository.NewSQLiteRecommendationRepo(tx)
		for _, r := range out.Recommendations {
			if err := recs.Create(ctx, r); err != nil {
				return fmt.Errorf("storing recommendation %q: %w", r.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["generated"] = len(out.Recommendations)
	fields["filtered"] = len(out.Filtered)
	if s.metrics != nil {
		s.metrics.RecordGeneration(out.Recommendations, len(out.Filtered))
	}
	return &app.RecommendResult{
		Analysis:        analysis,
		Recommendations: out.Recommendations,
		Strategies:      strategies,
		Filtered:        out.Filtered,
	}, nil
}

var _ app.RecommendUseCase = (*RecommendationService)(nil)
