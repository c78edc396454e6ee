package testutil

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/ember/internal/db"
)

// ErrInjected is returned by FailOnNthExecUoW when Err is nil.
var ErrInjected = errors.New("injected exec failure")

// FailOnNthExecUoW runs the real SQLite unit of work but fails the FailOn-th
// write (1-based) inside it. With Match set, only statements containing
// Match are counted. Reads are never counted.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	fired atomic.Bool
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	inner := db.NewSQLiteUnitOfWork(u.DB)
	return inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failOnNthExec{DBTX: tx, uow: u})
	})
}

// Fired reports whether the failure was injected in any transaction so far.
func (u *FailOnNthExecUoW) Fired() bool { return u.fired.Load() }

type failOnNthExec struct {
	db.DBTX
	uow   *FailOnNthExecUoW
	count atomic.Int32
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		if f.count.Add(1) == f.uow.FailOn {
			f.uow.fired.Store(true)
			if f.uow.Err != nil {
				return nil, f.uow.Err
			}
			return nil, ErrInjected
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
