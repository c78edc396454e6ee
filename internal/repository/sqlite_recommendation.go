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

// SQLiteRecommendationRepo implements RecommendationRepo.
type SQLiteRecommendationRepo struct {
	db db.DBTX
}

// NewSQLiteRecommendationRepo creates a new SQLiteRecommendationRepo.
func NewSQLiteRecommendationRepo(conn db.DBTX) *SQLiteRecommendationRepo {
	return &SQLiteRecommendationRepo{db: conn}
}

const recommendationColumns = `r.id, r.user_id, r.analysis_id, r.title, r.priority, r.category,
	r.description, r.action_steps, r.expected_impact, r.metadata, r.created_at`

func (r *SQLiteRecommendationRepo) Create(ctx context.Context, rec *domain.Recommendation) error {
	steps, err := toJSON(rec.ActionSteps)
	if err != nil {
		return fmt.Errorf("encoding action steps: %w", err)
	}
	meta, err := toJSON(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, user_id, analysis_id, title, priority, category,
			description, action_steps, expected_impact, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.AnalysisID, rec.Title, string(rec.Priority), rec.Category,
		rec.Description, steps, rec.ExpectedImpact, meta, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting recommendation: %w", err)
	}
	return nil
}

func (r *SQLiteRecommendationRepo) GetByID(ctx context.Context, id string) (*domain.Recommendation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations r WHERE r.id = ?`, id)
	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendation %s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (r *SQLiteRecommendationRepo) ListByAnalysis(ctx context.Context, analysisID string) ([]*domain.Recommendation, error) {
	return r.list(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations r
		WHERE r.analysis_id = ? ORDER BY r.created_at, r.rowid`, analysisID)
}

// ListUnapplied returns the user's recommendations that have no application yet.
func (r *SQLiteRecommendationRepo) ListUnapplied(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	return r.list(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations r
		LEFT JOIN recommendation_applications a ON a.recommendation_id = r.id
		WHERE r.user_id = ? AND a.id IS NULL
		ORDER BY r.created_at, r.rowid`, userID)
}

func (r *SQLiteRecommendationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecommendation(s rowScanner) (*domain.Recommendation, error) {
	var (
		rec                              domain.Recommendation
		priority, steps, meta, createdAt string
	)
	err := s.Scan(&rec.ID, &rec.UserID, &rec.AnalysisID, &rec.Title, &priority, &rec.Category,
		&rec.Description, &steps, &rec.ExpectedImpact, &meta, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning recommendation: %w", err)
	}
	rec.Priority = domain.Priority(priority)
	if err := fromJSON(steps, &rec.ActionSteps); err != nil {
		return nil, fmt.Errorf("decoding action steps: %w", err)
	}
	if err := fromJSON(meta, &rec.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing recommendation created_at: %w", err)
	}
	return &rec, nil
}
