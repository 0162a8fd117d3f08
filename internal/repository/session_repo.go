package repository

import (
	"context"
	"database/sql"
	"errors"

	"skillbridge/internal/models"
)

// SessionRepository is the postgres-backed SessionStore.
type SessionRepository struct{}

// NewSessionRepository returns repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

const sessionColumns = "id, instructor_id, title, status, max_capacity, is_premium, cost, access_link, starts_at, ends_at, created_at"

// Get retrieves a session by id.
func (r *SessionRepository) Get(ctx context.Context, q Querier, id string) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(q.QueryRowContext(ctx, query, id))
}

// GetForUpdate retrieves a session and locks its row until the enclosing
// transaction ends. Every capacity-affecting path takes this lock first, so
// two concurrent admissions can never both observe the last free seat.
func (r *SessionRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 FOR UPDATE`
	return scanSession(q.QueryRowContext(ctx, query, id))
}

func scanSession(row *sql.Row) (*models.Session, error) {
	var s models.Session
	var accessLink sql.NullString
	err := row.Scan(
		&s.ID,
		&s.InstructorID,
		&s.Title,
		&s.Status,
		&s.MaxCapacity,
		&s.IsPremium,
		&s.Cost,
		&accessLink,
		&s.StartsAt,
		&s.EndsAt,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.AccessLink = accessLink.String
	return &s, nil
}
