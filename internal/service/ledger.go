package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"skillbridge/internal/common/uuid"
	"skillbridge/internal/metrics"
	"skillbridge/internal/models"
	"skillbridge/internal/repository"
)

// LedgerService moves SkillCoins between learner and instructor accounts.
// All methods operate on the caller's transaction querier so that balance
// mutations commit or roll back together with the booking state they pay for.
type LedgerService struct {
	ledger repository.LedgerStore
	ids    uuid.Generator
	logger *zap.Logger
}

// NewLedgerService builds service.
func NewLedgerService(ledger repository.LedgerStore, ids uuid.Generator, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledger: ledger,
		ids:    ids,
		logger: logger,
	}
}

// Pay debits the learner and credits the instructor for one premium seat.
// Free or zero-cost sessions are a no-op. The learner account must cover the
// full cost; on a shortfall nothing is mutated and the exact deficit is
// reported.
func (s *LedgerService) Pay(ctx context.Context, q repository.Querier, learner *models.User, session *models.Session) error {
	if !session.Chargeable() {
		return nil
	}

	accounts, err := s.lockAccounts(ctx, q, learner.ID, session.InstructorID)
	if err != nil {
		return err
	}

	learnerAccount := accounts[learner.ID]
	if learnerAccount.Balance < session.Cost {
		return &InsufficientFundsError{
			LearnerEmail: learner.Email,
			Balance:      learnerAccount.Balance,
			Cost:         session.Cost,
			Deficit:      session.Cost - learnerAccount.Balance,
		}
	}

	return s.transfer(ctx, q, learner.ID, session,
		models.TransactionKindSessionPayment, models.TransactionKindCollection, -session.Cost)
}

// PayGroup charges every member for one seat each, all-or-nothing. Every
// balance is verified under lock before any debit is applied, so a single
// short member aborts the whole group with zero mutations.
func (s *LedgerService) PayGroup(ctx context.Context, q repository.Querier, members []*models.User, session *models.Session) error {
	if !session.Chargeable() {
		return nil
	}

	ids := make([]string, 0, len(members)+1)
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	ids = append(ids, session.InstructorID)

	accounts, err := s.lockAccounts(ctx, q, ids...)
	if err != nil {
		return err
	}

	for _, member := range members {
		account := accounts[member.ID]
		if account.Balance < session.Cost {
			return &InsufficientFundsError{
				LearnerEmail: member.Email,
				Balance:      account.Balance,
				Cost:         session.Cost,
				Deficit:      session.Cost - account.Balance,
			}
		}
	}

	for _, member := range members {
		if err := s.transfer(ctx, q, member.ID, session,
			models.TransactionKindSessionPayment, models.TransactionKindCollection, -session.Cost); err != nil {
			return err
		}
	}
	return nil
}

// Refund credits the learner back and debits the instructor, recording the
// mirror transaction pair. The instructor balance is allowed to go negative:
// the funds were already collected and may have been disbursed.
func (s *LedgerService) Refund(ctx context.Context, q repository.Querier, learnerID string, session *models.Session) error {
	if !session.Chargeable() {
		return nil
	}

	if _, err := s.lockAccounts(ctx, q, learnerID, session.InstructorID); err != nil {
		return err
	}

	return s.transfer(ctx, q, learnerID, session,
		models.TransactionKindRefund, models.TransactionKindRefund, session.Cost)
}

// lockAccounts takes FOR UPDATE locks on the given accounts in ascending id
// order, the single global order that keeps concurrent payments deadlock-free.
func (s *LedgerService) lockAccounts(ctx context.Context, q repository.Querier, userIDs ...string) (map[string]*models.Account, error) {
	sorted := make([]string, len(userIDs))
	copy(sorted, userIDs)
	sort.Strings(sorted)

	accounts := make(map[string]*models.Account, len(sorted))
	for _, id := range sorted {
		if _, ok := accounts[id]; ok {
			continue
		}
		account, err := s.ledger.GetAccountForUpdate(ctx, q, id)
		if err != nil {
			return nil, fmt.Errorf("ledger: lock account %s: %w", id, err)
		}
		accounts[id] = account
	}
	return accounts, nil
}

// transfer applies one learner/instructor movement of |learnerDelta| and
// appends the balanced transaction pair. learnerDelta is negative for
// payments and positive for refunds.
func (s *LedgerService) transfer(ctx context.Context, q repository.Querier, learnerID string, session *models.Session, learnerKind, instructorKind string, learnerDelta int64) error {
	if err := s.ledger.AddToBalance(ctx, q, learnerID, learnerDelta); err != nil {
		return fmt.Errorf("ledger: adjust learner balance: %w", err)
	}
	if err := s.ledger.AddToBalance(ctx, q, session.InstructorID, -learnerDelta); err != nil {
		return fmt.Errorf("ledger: adjust instructor balance: %w", err)
	}

	pair := []*models.Transaction{
		{
			ID:        s.ids.NewID(),
			UserID:    learnerID,
			SessionID: session.ID,
			Kind:      learnerKind,
			Amount:    learnerDelta,
			Status:    models.TransactionStatusCompleted,
		},
		{
			ID:        s.ids.NewID(),
			UserID:    session.InstructorID,
			SessionID: session.ID,
			Kind:      instructorKind,
			Amount:    -learnerDelta,
			Status:    models.TransactionStatusCompleted,
		},
	}
	for _, txn := range pair {
		if err := s.ledger.InsertTransaction(ctx, q, txn); err != nil {
			return fmt.Errorf("ledger: record transaction: %w", err)
		}
	}

	metrics.LedgerTransfersTotal.WithLabelValues(learnerKind).Inc()
	s.logger.Debug("ledger transfer applied",
		zap.String("learner_id", learnerID),
		zap.String("instructor_id", session.InstructorID),
		zap.String("session_id", session.ID),
		zap.Int64("learner_delta", learnerDelta),
	)
	return nil
}
