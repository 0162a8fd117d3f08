package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("repository: not found")

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Store methods take it explicitly so one transaction can span several stores.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner executes fn inside one database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q Querier) error) error
}

// SQLTxRunner is the postgres-backed TxRunner.
type SQLTxRunner struct {
	db *sql.DB
}

// NewTxRunner returns a TxRunner on top of the given pool.
func NewTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

// InTx runs fn within a transaction. Precondition checks and the writes they
// guard must share one call so row locks taken by fn hold until commit.
func (r *SQLTxRunner) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
