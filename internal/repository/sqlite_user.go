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

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db db.DBTX
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.UserProfile) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, role, communication_style, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Role, u.CommunicationStyle, formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.ID, ErrDuplicate)
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return r.UpsertPreferences(ctx, u)
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `SELECT u.id, u.name, u.role, u.communication_style, u.created_at,
		COALESCE(p.accepted_categories, '[]'), COALESCE(p.avoided_categories, '[]'), COALESCE(p.constraints, '[]')
		FROM users u LEFT JOIN user_preferences p ON p.user_id = u.id
		WHERE u.id = ?`

	var (
		u                          domain.UserProfile
		createdAt                  string
		accepted, avoided, constrs string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Role, &u.CommunicationStyle, &createdAt,
		&accepted, &avoided, &constrs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing user created_at: %w", err)
	}
	if err := fromJSON(accepted, &u.AcceptedCategories); err != nil {
		return nil, fmt.Errorf("decoding accepted categories: %w", err)
	}
	if err := fromJSON(avoided, &u.AvoidedCategories); err != nil {
		return nil, fmt.Errorf("decoding avoided categories: %w", err)
	}
	if err := fromJSON(constrs, &u.Constraints); err != nil {
		return nil, fmt.Errorf("decoding constraints: %w", err)
	}
	return &u, nil
}

func (r *SQLiteUserRepo) UpsertPreferences(ctx context.Context, u *domain.UserProfile) error {
	accepted, err := toJSON(u.AcceptedCategories)
	if err != nil {
		return fmt.Errorf("encoding accepted categories: %w", err)
	}
	avoided, err := toJSON(u.AvoidedCategories)
	if err != nil {
		return fmt.Errorf("encoding avoided categories: %w", err)
	}
	constrs, err := toJSON(u.Constraints)
	if err != nil {
		return fmt.Errorf("encoding constraints: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, accepted_categories, avoided_categories, constraints, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			accepted_categories = excluded.accepted_categories,
			avoided_categories = excluded.avoided_categories,
			constraints = excluded.constraints,
			updated_at = excluded.updated_at`,
		u.ID, accepted, avoided, constrs, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upserting user preferences: %w", err)
	}
	return nil
}
