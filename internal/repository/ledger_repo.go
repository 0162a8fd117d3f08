package repository

import (
	"context"
	"database/sql"
	"errors"

	"skillbridge/internal/models"
)

// LedgerRepository is the postgres-backed LedgerStore.
type LedgerRepository struct{}

// NewLedgerRepository returns repository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

// GetAccountForUpdate retrieves an account and locks its row until the
// enclosing transaction ends. Callers lock accounts in ascending user id
// order to avoid deadlocks between concurrent payments.
func (r *LedgerRepository) GetAccountForUpdate(ctx context.Context, q Querier, userID string) (*models.Account, error) {
	const query = `SELECT user_id, balance FROM accounts WHERE user_id = $1 FOR UPDATE`
	var account models.Account
	err := q.QueryRowContext(ctx, query, userID).Scan(&account.UserID, &account.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// AddToBalance applies a signed delta to an account balance.
func (r *LedgerRepository) AddToBalance(ctx context.Context, q Querier, userID string, delta int64) error {
	const query = `UPDATE accounts SET balance = balance + $2 WHERE user_id = $1`
	result, err := q.ExecContext(ctx, query, userID, delta)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertTransaction appends an immutable transaction record.
func (r *LedgerRepository) InsertTransaction(ctx context.Context, q Querier, txn *models.Transaction) error {
	const query = `
		INSERT INTO transactions (id, user_id, session_id, kind, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	return q.QueryRowContext(ctx, query,
		txn.ID,
		txn.UserID,
		txn.SessionID,
		txn.Kind,
		txn.Amount,
		txn.Status,
	).Scan(&txn.CreatedAt)
}
