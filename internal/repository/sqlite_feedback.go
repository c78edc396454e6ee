package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
)

// SQLiteFeedbackRepo implements FeedbackRepo.
type SQLiteFeedbackRepo struct {
	db db.DBTX
}

// NewSQLiteFeedbackRepo creates a new SQLiteFeedbackRepo.
func NewSQLiteFeedbackRepo(conn db.DBTX) *SQLiteFeedbackRepo {
	return &SQLiteFeedbackRepo{db: conn}
}

func (r *SQLiteFeedbackRepo) Create(ctx context.Context, f *domain.RecommendationFeedback) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recommendation_feedback (id, recommendation_id, user_id, rating, completed, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.RecommendationID, f.UserID, f.Rating, boolToInt(f.Completed), f.Notes, formatTime(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

func (r *SQLiteFeedbackRepo) ListByRecommendation(ctx context.Context, recommendationID string) ([]*domain.RecommendationFeedback, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recommendation_id, user_id, rating, completed, notes, created_at
		FROM recommendation_feedback WHERE recommendation_id = ? ORDER BY created_at`, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var out []*domain.RecommendationFeedback
	for rows.Next() {
		var (
			f         domain.RecommendationFeedback
			completed int
			createdAt string
		)
		if err := rows.Scan(&f.ID, &f.RecommendationID, &f.UserID, &f.Rating, &completed, &f.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		f.Completed = intToBool(completed)
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing feedback created_at: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
