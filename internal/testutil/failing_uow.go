package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction. Rollback tests use it to fail a budget transfer
// between its first and second write.
//
// ExecContext calls are counted starting at 1, per transaction. QueryContext
// and QueryRowContext are not counted (reads pass through normally).
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
	// Calls counts transactions started through this UoW.
	Calls atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	u.Calls.Add(1)
	return db.RunTx(ctx, u.DB, func(tx *sql.Tx) db.DBTX {
		return &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	}, fn)
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.count.Add(1)
	if n == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
