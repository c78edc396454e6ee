package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
)

// SQLiteApplicationRepo implements ApplicationRepo, including the action items
// that belong to each application.
type SQLiteApplicationRepo struct {
	db db.DBTX
}

// NewSQLiteApplicationRepo creates a new SQLiteApplicationRepo.
func NewSQLiteApplicationRepo(conn db.DBTX) *SQLiteApplicationRepo {
	return &SQLiteApplicationRepo{db: conn}
}

const applicationColumns = `id, recommendation_id, user_id, status, tasks_created, events_created,
	score_before, score_after, improvement, effectiveness_rating, notes, applied_at, completed_at, updated_at`

func (r *SQLiteApplicationRepo) Create(ctx context.Context, a *domain.RecommendationApplication) error {
	now := time.Now().UTC()
	if a.AppliedAt.IsZero() {
		a.AppliedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.AppliedAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recommendation_applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RecommendationID, a.UserID, string(a.Status), a.TasksCreated, a.EventsCreated,
		a.ScoreBefore, nullableFloatToValue(a.ScoreAfter), nullableFloatToValue(a.Improvement),
		nullableIntToValue(a.EffectivenessRating), a.Notes, formatTime(a.AppliedAt),
		nullableTimeToString(a.CompletedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("application for recommendation %s: %w", a.RecommendationID, ErrDuplicate)
		}
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

func (r *SQLiteApplicationRepo) GetByRecommendation(ctx context.Context, recommendationID string) (*domain.RecommendationApplication, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM recommendation_applications WHERE recommendation_id = ?`,
		recommendationID)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application for recommendation %s: %w", recommendationID, ErrNotFound)
	}
	return a, err
}

// Update writes a only if the stored status is still from. A row that moved
// on in the meantime yields ErrConcurrentUpdate.
func (r *SQLiteApplicationRepo) Update(ctx context.Context, a *domain.RecommendationApplication, from domain.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recommendation_applications
		SET status = ?, tasks_created = ?, events_created = ?, score_after = ?, improvement = ?,
			effectiveness_rating = ?, notes = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(a.Status), a.TasksCreated, a.EventsCreated, nullableFloatToValue(a.ScoreAfter),
		nullableFloatToValue(a.Improvement), nullableIntToValue(a.EffectivenessRating), a.Notes,
		nullableTimeToString(a.CompletedAt), formatTime(a.UpdatedAt), a.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("updating application: %w", err)
	}
	return r.checkAffected(ctx, res, a.ID)
}

// SetOutcome stores the post-completion score once. It reports false when
// the application is not completed or already has an outcome.
func (r *SQLiteApplicationRepo) SetOutcome(ctx context.Context, id string, scoreAfter, improvement float64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recommendation_applications
		SET score_after = ?, improvement = ?, updated_at = ?
		WHERE id = ? AND status = 'completed' AND score_after IS NULL`,
		scoreAfter, improvement, formatTime(at), id,
	)
	if err != nil {
		return false, fmt.Errorf("recording application outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recording application outcome: %w", err)
	}
	return n == 1, nil
}

// ListAwaitingOutcome returns userID's completed applications that have no
// score_after yet and were completed at or before completedBy.
func (r *SQLiteApplicationRepo) ListAwaitingOutcome(ctx context.Context, userID string, completedBy time.Time) ([]*domain.RecommendationApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM recommendation_applications
		WHERE user_id = ? AND status = 'completed' AND score_after IS NULL AND completed_at <= ?
		ORDER BY completed_at`, userID, formatTime(completedBy))
	if err != nil {
		return nil, fmt.Errorf("listing applications awaiting outcome: %w", err)
	}
	defer rows.Close()

	var out []*domain.RecommendationApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteApplicationRepo) checkAffected(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM recommendation_applications WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking application %s: %w", id, err)
	}
	return fmt.Errorf("application %s: %w", id, ErrConcurrentUpdate)
}

func (r *SQLiteApplicationRepo) ListByUser(ctx context.Context, userID string) ([]*domain.RecommendationApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM recommendation_applications
		WHERE user_id = ? ORDER BY applied_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var out []*domain.RecommendationApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanApplication(s rowScanner) (*domain.RecommendationApplication, error) {
	var (
		a                            domain.RecommendationApplication
		status, appliedAt, updatedAt string
		scoreAfter, improvement      sql.NullFloat64
		rating                       sql.NullInt64
		completedAt                  sql.NullString
	)
	err := s.Scan(&a.ID, &a.RecommendationID, &a.UserID, &status, &a.TasksCreated, &a.EventsCreated,
		&a.ScoreBefore, &scoreAfter, &improvement, &rating, &a.Notes, &appliedAt, &completedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	a.Status = domain.ApplicationStatus(status)
	a.ScoreAfter = floatPtr(scoreAfter)
	a.Improvement = floatPtr(improvement)
	a.EffectivenessRating = intPtr(rating)
	a.CompletedAt = parseNullableTime(completedAt)
	if a.AppliedAt, err = parseTime(appliedAt); err != nil {
		return nil, fmt.Errorf("parsing applied_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &a, nil
}

func (r *SQLiteApplicationRepo) CreateActionItem(ctx context.Context, item *domain.ActionItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recommendation_action_items (id, application_id, step_index, text, kind, priority,
			due_date, duration_min, task_id, event_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ApplicationID, item.StepIndex, item.Text, string(item.Kind), string(item.Priority),
		nullableTimeToString(item.DueDate), item.DurationMin, nullableStringToValue(item.TaskID),
		nullableStringToValue(item.EventID), formatTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting action item: %w", err)
	}
	return nil
}

func (r *SQLiteApplicationRepo) ListActionItems(ctx context.Context, applicationID string) ([]*domain.ActionItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, application_id, step_index, text, kind, priority, due_date, duration_min,
			task_id, event_id, created_at
		FROM recommendation_action_items WHERE application_id = ? ORDER BY step_index`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("listing action items: %w", err)
	}
	defer rows.Close()

	var out []*domain.ActionItem
	for rows.Next() {
		var (
			it                        domain.ActionItem
			kind, priority, createdAt string
			due, taskID, eventID      sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.ApplicationID, &it.StepIndex, &it.Text, &kind, &priority,
			&due, &it.DurationMin, &taskID, &eventID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning action item: %w", err)
		}
		it.Kind = domain.ActionKind(kind)
		it.Priority = domain.Priority(priority)
		it.DueDate = parseNullableTime(due)
		it.TaskID = stringPtr(taskID)
		it.EventID = stringPtr(eventID)
		if it.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing action item created_at: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
