package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
)

// SQLiteProfileRepo implements ProfileRepo with an optimistic version column.
type SQLiteProfileRepo struct {
	db db.DBTX
}

// NewSQLiteProfileRepo creates a new SQLiteProfileRepo.
func NewSQLiteProfileRepo(conn db.DBTX) *SQLiteProfileRepo {
	return &SQLiteProfileRepo{db: conn}
}

func (r *SQLiteProfileRepo) Get(ctx context.Context, userID string) (*domain.BehavioralProfile, error) {
	var (
		p                          domain.BehavioralProfile
		triggers, trend, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, baseline_score, stress_triggers, trend_direction, sample_days, version, updated_at
		FROM behavioral_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.BaselineScore, &triggers, &trend, &p.SampleDays, &p.Version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("behavioral profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning behavioral profile: %w", err)
	}
	p.TrendDirection = domain.TrendDirection(trend)
	if err := fromJSON(triggers, &p.StressTriggers); err != nil {
		return nil, fmt.Errorf("decoding stress triggers: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing profile updated_at: %w", err)
	}
	return &p, nil
}

func (r *SQLiteProfileRepo) Save(ctx context.Context, p *domain.BehavioralProfile) error {
	triggers := append([]string(nil), p.StressTriggers...)
	sort.Strings(triggers)
	encoded, err := toJSON(triggers)
	if err != nil {
		return fmt.Errorf("encoding stress triggers: %w", err)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if p.TrendDirection == "" {
		p.TrendDirection = domain.TrendStable
	}

	if p.Version == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO behavioral_profiles (user_id, baseline_score, stress_triggers, trend_direction, sample_days, version, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(user_id) DO NOTHING`,
			p.UserID, p.BaselineScore, encoded, string(p.TrendDirection), p.SampleDays, formatTime(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting behavioral profile: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("checking profile insert: %w", err)
		} else if n == 0 {
			return fmt.Errorf("behavioral profile %s created concurrently: %w", p.UserID, ErrConcurrentUpdate)
		}
		p.Version = 1
		p.StressTriggers = triggers
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE behavioral_profiles
		SET baseline_score = ?, stress_triggers = ?, trend_direction = ?, sample_days = ?,
			version = version + 1, updated_at = ?
		WHERE user_id = ? AND version = ?`,
		p.BaselineScore, encoded, string(p.TrendDirection), p.SampleDays, formatTime(p.UpdatedAt),
		p.UserID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("updating behavioral profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking profile update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("behavioral profile %s at version %d: %w", p.UserID, p.Version, ErrConcurrentUpdate)
	}
	p.Version++
	p.StressTriggers = triggers
	return nil
}
