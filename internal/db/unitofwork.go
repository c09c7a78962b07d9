package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TxFunc is the body of a budget transaction. Services build tx-scoped
// repositories from tx; returning an error discards every write made through
// them.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork is the transaction boundary every budget-mutating use case runs
// in. A reallocation approval debits its source, credits its target and
// flips the request status inside one WithinTx call.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SQLiteUnitOfWork opens its transactions on a connection pool from OpenDB,
// whose DSN starts them with BEGIN IMMEDIATE.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn TxFunc) error {
	return RunTx(ctx, u.db, nil, fn)
}

// RunTx begins a transaction on database, hands fn the tx (passed through
// wrap when wrap is non-nil) and commits only if fn returns nil. A panic in
// fn rolls back and re-panics. fn's error comes back matchable with
// errors.Is and errors.As even when the rollback also fails.
func RunTx(ctx context.Context, database *sql.DB, wrap func(*sql.Tx) DBTX, fn TxFunc) (err error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback budget transaction: %w", rbErr))
		}
	}()

	var scoped DBTX = tx
	if wrap != nil {
		scoped = wrap(tx)
	}
	if err := fn(ctx, scoped); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget transaction: %w", err)
	}
	committed = true
	return nil
}
