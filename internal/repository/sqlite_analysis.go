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

// SQLiteAnalysisRepo implements AnalysisRepo. Rows are append-only.
type SQLiteAnalysisRepo struct {
	db db.DBTX
}

// NewSQLiteAnalysisRepo creates a new SQLiteAnalysisRepo.
func NewSQLiteAnalysisRepo(conn db.DBTX) *SQLiteAnalysisRepo {
	return &SQLiteAnalysisRepo{db: conn}
}

const analysisColumns = `id, user_id, final_score, level, workload_score, sentiment_adjustment,
	breakdown, contribution, metrics, sentiment, insights, trend, degraded, analyzed_at`

func (r *SQLiteAnalysisRepo) Create(ctx context.Context, a *domain.BurnoutAnalysis) error {
	fields := map[string]any{
		"breakdown":    a.Breakdown,
		"contribution": a.Contribution,
		"metrics":      a.Metrics,
		"sentiment":    a.Sentiment,
		"insights":     a.Insights,
		"trend":        a.Trend,
	}
	encoded := make(map[string]string, len(fields))
	for name, v := range fields {
		s, err := toJSON(v)
		if err != nil {
			return fmt.Errorf("encoding analysis %s: %w", name, err)
		}
		encoded[name] = s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO burnout_analyses (`+analysisColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.FinalScore, string(a.Level), a.WorkloadScore, a.SentimentAdjustment,
		encoded["breakdown"], encoded["contribution"], encoded["metrics"], encoded["sentiment"],
		encoded["insights"], encoded["trend"], boolToInt(a.Degraded), formatTime(a.AnalyzedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

func (r *SQLiteAnalysisRepo) GetByID(ctx context.Context, id string) (*domain.BurnoutAnalysis, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM burnout_analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}
	return a, err
}

func (r *SQLiteAnalysisRepo) Latest(ctx context.Context, userID string) (*domain.BurnoutAnalysis, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM burnout_analyses WHERE user_id = ?
		ORDER BY analyzed_at DESC, rowid DESC LIMIT 1`, userID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest analysis for %s: %w", userID, ErrNotFound)
	}
	return a, err
}

func (r *SQLiteAnalysisRepo) ListByUser(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.BurnoutAnalysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM burnout_analyses
		WHERE user_id = ? AND analyzed_at >= ? ORDER BY analyzed_at DESC, rowid DESC`
	args := []any{userID, formatTime(since)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.BurnoutAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s rowScanner) (*domain.BurnoutAnalysis, error) {
	var (
		a                                                         domain.BurnoutAnalysis
		level, breakdown, contribution, metrics, sentiment, trend string
		insights, analyzedAt                                      string
		degraded                                                  int
	)
	err := s.Scan(&a.ID, &a.UserID, &a.FinalScore, &level, &a.WorkloadScore, &a.SentimentAdjustment,
		&breakdown, &contribution, &metrics, &sentiment, &insights, &trend, &degraded, &analyzedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning analysis: %w", err)
	}

	a.Level = domain.BurnoutLevel(level)
	a.Degraded = intToBool(degraded)
	if a.AnalyzedAt, err = parseTime(analyzedAt); err != nil {
		return nil, fmt.Errorf("parsing analyzed_at: %w", err)
	}
	for name, pair := range map[string]struct {
		raw string
		dst any
	}{
		"breakdown":    {breakdown, &a.Breakdown},
		"contribution": {contribution, &a.Contribution},
		"metrics":      {metrics, &a.Metrics},
		"sentiment":    {sentiment, &a.Sentiment},
		"insights":     {insights, &a.Insights},
		"trend":        {trend, &a.Trend},
	} {
		if err := fromJSON(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("decoding analysis %s: %w", name, err)
		}
	}
	return &a, nil
}
