package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alexanderramin/ember/internal/actions"
	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/metrics"
	"github.com/alexanderramin/ember/internal/repository"
)

// ApplyService materializes recommendations and closes the feedback loop.
type ApplyService struct {
	recs      repository.RecommendationRepo
	apps      repository.ApplicationRepo
	analyses  repository.AnalysisRepo
	users     repository.UserRepo
	analyzer  app.AnalyzeUseCase
	uow       db.UnitOfWork
	writerFor WorkspaceWriterFactory
	hook      ReanalysisTrigger
	metrics   *metrics.Metrics
	logger    *slog.Logger
	observer  UseCaseObserver
	now       func() time.Time
}

type ApplyOption func(*ApplyService)

// WithWorkspaceWriter replaces the local task and calendar writer.
func WithWorkspaceWriter(f WorkspaceWriterFactory) ApplyOption {
	return func(s *ApplyService) { s.writerFor = f }
}

// WithReanalysisHook schedules a background analysis after tasks are created.
func WithReanalysisHook(h ReanalysisTrigger) ApplyOption {
	return func(s *ApplyService) { s.hook = h }
}

func WithApplyMetrics(m *metrics.Metrics) ApplyOption {
	return func(s *ApplyService) { s.metrics = m }
}

func WithApplyLogger(l *slog.Logger) ApplyOption {
	return func(s *ApplyService) { s.logger = l }
}

func WithApplyObserver(o UseCaseObserver) ApplyOption {
	return func(s *ApplyService) { s.observer = o }
}

// WithApplyClock overrides the time source used for parsing due dates.
func WithApplyClock(now func() time.Time) ApplyOption {
	return func(s *ApplyService) { s.now = now }
}

func NewApplyService(
	recs repository.RecommendationRepo,
	apps repository.ApplicationRepo,
	analyses repository.AnalysisRepo,
	users repository.UserRepo,
	analyzer app.AnalyzeUseCase,
	uow db.UnitOfWork,
	opts ...ApplyOption,
) *ApplyService {
	s := &ApplyService{
		recs:      recs,
		apps:      apps,
		analyses:  analyses,
		users:     users,
		analyzer:  analyzer,
		uow:       uow,
		writerFor: SQLiteWorkspaceWriter,
		logger:    slog.Default(),
		observer:  NoopUseCaseObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply turns each action step of the recommendation into a task or a
// calendar block and records the application. Everything happens in one
// transaction.
func (s *ApplyService) Apply(ctx context.Context, recommendationID string) (result *app.ApplyResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"recommendation_id": recommendationID}
	ctx, span := startSpan(ctx, "apply.apply", attribute.String("recommendation.id", recommendationID))
	defer func() {
		endSpan(span, err)
		if s.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = string(kindOrUnknown(err))
			}
			s.metrics.Applications.WithLabelValues(outcome).Inc()
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "apply",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	rec, err := s.getRecommendation(ctx, "apply", recommendationID)
	if err != nil {
		return nil, err
	}
	if _, err = s.apps.GetByRecommendation(ctx, recommendationID); err == nil {
		return nil, app.InputError("apply", "recommendation %s is already applied", recommendationID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking existing application: %w", err)
	}

	scoreBefore := 0.0
	latest, err := s.analyses.Latest(ctx, rec.UserID)
	switch {
	case err == nil:
		scoreBefore = latest.FinalScore
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("loading latest analysis: %w", err)
	}

	now := s.now()
	application := &domain.RecommendationApplication{
		ID:               uuid.New().String(),
		RecommendationID: rec.ID,
		UserID:           rec.UserID,
		Status:           domain.StatusApplied,
		ScoreBefore:      scoreBefore,
		AppliedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	items := make([]*domain.ActionItem, 0, len(rec.ActionSteps))

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		writer := s.writerFor(tx)
		for i, text := range rec.ActionSteps {
			step := actions.ParseStep(text, now)
			item := &domain.ActionItem{
				ID:            uuid.New().String(),
				ApplicationID: application.ID,
				StepIndex:     i,
				Text:          step.Text,
				Kind:          step.Kind,
				Priority:      step.Priority,
				DueDate:       step.DueDate,
				DurationMin:   step.DurationMin,
				CreatedAt:     now.UTC(),
			}
			if err := materialize(ctx, writer, rec, step, item, now); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			if item.EventID != nil {
				application.EventsCreated++
			} else {
				application.TasksCreated++
			}
			items = append(items, item)
		}

		txApps := repository.NewSQLiteApplicationRepo(tx)
		if err := txApps.Create(ctx, application); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return app.InputError("apply", "recommendation %s is already applied", recommendationID)
			}
			return err
		}
		for _, item := range items {
			if err := txApps.CreateActionItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["tasks_created"] = application.TasksCreated
	fields["events_created"] = application.EventsCreated
	if s.hook != nil && application.TasksCreated+application.EventsCreated > 0 {
		s.hook.Trigger(rec.UserID)
	}
	return &app.ApplyResult{Application: application, ActionItems: items}, nil
}

// materialize creates the task or calendar block for one parsed step and
// links it from item.
func materialize(ctx context.Context, w WorkspaceWriter, rec *domain.Recommendation, step actions.Step, item *domain.ActionItem, now time.Time) error {
	if step.Kind == domain.ActionTimeBlock {
		start := actions.BlockStart(step, now)
		id, err := w.CreateEvent(ctx, domain.EventInput{
			UserID: rec.UserID,
			Title:  step.Text,
			Start:  start,
			End:    start.Add(time.Duration(step.DurationMin) * time.Minute),
		})
		if err != nil {
			return fmt.Errorf("creating calendar block: %w", err)
		}
		item.EventID = &id
		return nil
	}

	id, err := w.CreateTask(ctx, domain.TaskInput{
		UserID:      rec.UserID,
		Title:       step.Text,
		Description: "From recommendation: " + rec.Title,
		Priority:    step.Priority,
		DueDate:     step.DueDate,
	})
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	item.TaskID = &id
	return nil
}

// ApplyAll applies every unapplied recommendation of userID. Each outcome is
// reported separately; a failure never stops the rest.
func (s *ApplyService) ApplyAll(ctx context.Context, userID string) ([]app.ApplyOutcome, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.InputError("apply-all", "unknown user %q", userID)
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	pending, err := s.recs.ListUnapplied(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing unapplied recommendations: %w", err)
	}

	outcomes := make([]app.ApplyOutcome, 0, len(pending))
	for _, rec := range pending {
		res, err := s.Apply(ctx, rec.ID)
		outcomes = append(outcomes, app.ApplyOutcome{
			RecommendationID: rec.ID,
			Title:            rec.Title,
			Result:           res,
			Err:              err,
		})
	}
	return outcomes, nil
}

// UpdateStatus moves an application to in_progress or cancelled. Completion
// goes through Feedback.
func (s *ApplyService) UpdateStatus(ctx context.Context, recommendationID string, status domain.ApplicationStatus) (*domain.RecommendationApplication, error) {
	if status != domain.StatusInProgress && status != domain.StatusCancelled {
		return nil, app.InputError("status", "status must be %s or %s; completion is recorded through feedback",
			domain.StatusInProgress, domain.StatusCancelled)
	}
	application, err := s.getApplication(ctx, "status", recommendationID)
	if err != nil {
		return nil, err
	}
	from := application.Status
	if err := application.Transition(status, s.now().UTC()); err != nil {
		return nil, app.InputError("status", "%v", err)
	}
	if err := s.apps.Update(ctx, application, from); err != nil {
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			return nil, app.ConsistencyError("status", fmt.Errorf("application changed while moving %s to %s: %w", from, status, err))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ApplicationTransitions.WithLabelValues(string(status)).Inc()
	}
	return application, nil
}

// Feedback records a rating. When the work is reported completed the
// application is completed, a fresh analysis runs and the improvement is
// stored.
func (s *ApplyService) Feedback(ctx context.Context, req app.FeedbackRequest) (result *app.FeedbackResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"recommendation_id": req.RecommendationID, "completed": req.Completed}
	ctx, span := startSpan(ctx, "apply.feedback", attribute.String("recommendation.id", req.RecommendationID))
	defer func() {
		endSpan(span, err)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "feedback",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, app.InputError("feedback", "rating must be between 1 and 5, got %d", req.Rating)
	}
	rec, err := s.getRecommendation(ctx, "feedback", req.RecommendationID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var application *domain.RecommendationApplication
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		a, err := txApps.GetByRecommendation(ctx, rec.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return app.InputError("feedback", "recommendation %s has not been applied", rec.ID)
			}
			return err
		}

		from := a.Status
		rating := req.Rating
		a.EffectivenessRating = &rating
		if req.Notes != "" {
			a.Notes = req.Notes
		}
		a.UpdatedAt = now
		if req.Completed {
			if err := a.Transition(domain.StatusCompleted, now); err != nil {
				return app.InputError("feedback", "%v", err)
			}
		}

		if err := repository.NewSQLiteFeedbackRepo(tx).Create(ctx, &domain.RecommendationFeedback{
			ID:               uuid.New().String(),
			RecommendationID: rec.ID,
			UserID:           rec.UserID,
			Rating:           req.Rating,
			Completed:        req.Completed,
			Notes:            req.Notes,
			CreatedAt:        now,
		}); err != nil {
			return err
		}
		if err := txApps.Update(ctx, a, from); err != nil {
			return err
		}
		application = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &app.FeedbackResult{Application: application}
	if !req.Completed {
		return result, nil
	}
	if s.metrics != nil {
		s.metrics.ApplicationTransitions.WithLabelValues(string(domain.StatusCompleted)).Inc()
	}

	after, aerr := s.analyzer.Analyze(ctx, rec.UserID)
	if aerr != nil {
		// The next successful analysis of this user records the outcome.
		s.logger.WarnContext(ctx, "post-completion analysis failed", "recommendation_id", rec.ID, "error", aerr)
		fields["reanalysis_error"] = aerr.Error()
		return result, nil
	}
	recorded, err := s.apps.SetOutcome(ctx, application.ID, after.FinalScore,
		domain.Improvement(application.ScoreBefore, after.FinalScore), s.now().UTC())
	if err != nil {
		return nil, err
	}
	// Reload rather than patch the copy: other feedback may have landed
	// while the analysis ran.
	current, err := s.apps.GetByRecommendation(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading application: %w", err)
	}
	if current.Improvement != nil {
		fields["improvement"] = *current.Improvement
	}
	if recorded && s.metrics != nil {
		s.metrics.RecordOutcome(current)
	}
	result.Application = current
	result.Reanalysis = after
	return result, nil
}

func (s *ApplyService) getRecommendation(ctx context.Context, op, id string) (*domain.Recommendation, error) {
	rec, err := s.recs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.InputError(op, "unknown recommendation %q", id)
		}
		return nil, fmt.Errorf("loading recommendation: %w", err)
	}
	return rec, nil
}

func (s *ApplyService) getApplication(ctx context.Context, op, recommendationID string) (*domain.RecommendationApplication, error) {
	if _, err := s.getRecommendation(ctx, op, recommendationID); err != nil {
		return nil, err
	}
	a, err := s.apps.GetByRecommendation(ctx, recommendationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app.InputError(op, "recommendation %s has not been applied", recommendationID)
		}
		return nil, err
	}
	return a, nil
}

var (
	_ app.ApplyUseCase    = (*ApplyService)(nil)
	_ app.FeedbackUseCase = (*ApplyService)(nil)
)
