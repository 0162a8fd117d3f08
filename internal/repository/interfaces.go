package repository

//go:generate mockgen -package=mocks -destination=mocks/mock_stores.go skillbridge/internal/repository UserStore,SessionStore,BookingStore,LedgerStore,CommunityStore,TxRunner

import (
	"context"

	"skillbridge/internal/models"
)

// UserStore resolves learner and instructor profiles.
type UserStore interface {
	// GetByEmail resolves a profile from a caller identity.
	GetByEmail(ctx context.Context, q Querier, email string) (*models.User, error)

	// GetByID retrieves a profile by id.
	GetByID(ctx context.Context, q Querier, id string) (*models.User, error)
}

// SessionStore reads tutoring sessions.
type SessionStore interface {
	// Get retrieves a session by id.
	Get(ctx context.Context, q Querier, id string) (*models.Session, error)

	// GetForUpdate retrieves a session and locks its row for the duration of
	// the enclosing transaction, serializing concurrent admissions.
	GetForUpdate(ctx context.Context, q Querier, id string) (*models.Session, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	// Get retrieves a booking by id.
	Get(ctx context.Context, q Querier, id string) (*models.Booking, error)

	// GetByPair retrieves the booking for a (session, learner) pair in any status.
	GetByPair(ctx context.Context, q Querier, sessionID, learnerID string) (*models.Booking, error)

	// CountByStatus counts a session's bookings with the given status.
	CountByStatus(ctx context.Context, q Querier, sessionID string, status models.BookingStatus) (int, error)

	// Insert persists a new booking.
	Insert(ctx context.Context, q Querier, booking *models.Booking) error

	// Update persists booking mutations by id.
	Update(ctx context.Context, q Querier, booking *models.Booking) error

	// ListWaiting returns up to limit waiting bookings ordered by booking date ascending.
	ListWaiting(ctx context.Context, q Querier, sessionID string, limit int) ([]*models.Booking, error)

	// ListActiveByCommunity returns the non-cancelled bookings a community holds on a session.
	ListActiveByCommunity(ctx context.Context, q Querier, sessionID, communityID string) ([]*models.Booking, error)
}

// LedgerStore persists SkillCoin balances and transaction records.
type LedgerStore interface {
	// GetAccountForUpdate retrieves an account and locks its row for the
	// duration of the enclosing transaction.
	GetAccountForUpdate(ctx context.Context, q Querier, userID string) (*models.Account, error)

	// AddToBalance applies a signed delta to an account balance.
	AddToBalance(ctx context.Context, q Querier, userID string, delta int64) error

	// InsertTransaction appends an immutable transaction record.
	InsertTransaction(ctx context.Context, q Querier, txn *models.Transaction) error
}

// CommunityStore reads communities and their memberships.
type CommunityStore interface {
	// Get retrieves a community by id.
	Get(ctx context.Context, q Querier, id string) (*models.Community, error)

	// ListActiveMembers returns the active members of a community.
	ListActiveMembers(ctx context.Context, q Querier, communityID string) ([]*models.User, error)
}
