package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
)

// SQLiteStrategyRepo stores strategy documents with their embeddings as BLOBs.
type SQLiteStrategyRepo struct {
	db db.DBTX
}

// NewSQLiteStrategyRepo creates a new SQLiteStrategyRepo.
func NewSQLiteStrategyRepo(conn db.DBTX) *SQLiteStrategyRepo {
	return &SQLiteStrategyRepo{db: conn}
}

func (r *SQLiteStrategyRepo) Create(ctx context.Context, d *domain.StrategyDocument) error {
	if len(d.Embedding) == 0 {
		return fmt.Errorf("strategy %q has no embedding", d.Title)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO strategy_documents (id, title, text, category, evidence_tag, embedding, dims, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Text, d.Category, d.EvidenceTag,
		encodeVector(d.Embedding), len(d.Embedding), formatTime(d.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("strategy %s: %w", d.ID, ErrDuplicate)
		}
		return fmt.Errorf("inserting strategy: %w", err)
	}
	return nil
}

func (r *SQLiteStrategyRepo) List(ctx context.Context) ([]domain.StrategyDocument, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, text, category, evidence_tag, embedding, dims, created_at
		FROM strategy_documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing strategies: %w", err)
	}
	defer rows.Close()

	var docs []domain.StrategyDocument
	for rows.Next() {
		var (
			d         domain.StrategyDocument
			blob      []byte
			dims      int
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Text, &d.Category, &d.EvidenceTag, &blob, &dims, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning strategy: %w", err)
		}
		if d.Embedding, err = decodeVector(blob, dims); err != nil {
			return nil, fmt.Errorf("strategy %s: %w", d.ID, err)
		}
		if d.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing strategy created_at: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
