package repository

import (
	"context"
	"database/sql"
	"errors"

	"skillbridge/internal/models"
)

// UserRepository is the postgres-backed UserStore.
type UserRepository struct{}

// NewUserRepository returns repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = "id, email, display_name, role, created_at"

// GetByEmail resolves a profile from a caller identity.
func (r *UserRepository) GetByEmail(ctx context.Context, q Querier, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a profile by id.
func (r *UserRepository) GetByID(ctx context.Context, q Querier, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.QueryRowContext(ctx, query, id))
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
