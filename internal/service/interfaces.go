package service

import (
	"context"

	"github.com/alexanderramin/ember/internal/db"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/alexanderramin/ember/internal/retrieval"
)

// WorkspaceWriter is the write side of the task and calendar collaborators.
type WorkspaceWriter interface {
	CreateTask(ctx context.Context, in domain.TaskInput) (string, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (string, error)
}

// WorkspaceWriterFactory binds a WorkspaceWriter to a transaction so that
// materialized tasks roll back with the application that created them.
type WorkspaceWriterFactory func(tx db.DBTX) WorkspaceWriter

// SQLiteWorkspaceWriter writes tasks and events into the local database.
func SQLiteWorkspaceWriter(tx db.DBTX) WorkspaceWriter {
	return repository.NewSQLiteWorkspaceRepo(tx)
}

// StrategyRetriever finds strategies relevant to an analysis.
type StrategyRetriever interface {
	Retrieve(ctx context.Context, a *domain.BurnoutAnalysis) ([]retrieval.Match, error)
}

// ReanalysisTrigger schedules a background re-analysis for a user.
type ReanalysisTrigger interface {
	Trigger(userID string)
}

var _ StrategyRetriever = (*retrieval.Index)(nil)
