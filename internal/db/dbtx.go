package db

import (
	"context"
	"database/sql"
)

// DBTX is what the SQLite repositories query through. Read paths such as
// "phase list" hand them the *sql.DB directly; transfers and recalculation
// hand them the *sql.Tx from a TxFunc.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
