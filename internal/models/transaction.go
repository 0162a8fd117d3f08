package models

import "time"

// Transaction kinds. A session payment writes a SessionPayment debit for the
// learner and a Collection credit for the instructor; a refund writes the
// mirror pair.
const (
	TransactionKindSessionPayment = "session_payment"
	TransactionKindCollection     = "collection"
	TransactionKindRefund         = "refund"
)

// TransactionStatusCompleted is the only status a persisted transaction carries.
const TransactionStatusCompleted = "completed"

// Transaction is an immutable SkillCoin ledger record. Negative amounts are
// debits, positive amounts are credits.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
