package repository

import (
	"context"
	"database/sql"
	"errors"

	"skillbridge/internal/models"
)

// CommunityRepository is the postgres-backed CommunityStore.
type CommunityRepository struct{}

// NewCommunityRepository returns repository.
func NewCommunityRepository() *CommunityRepository {
	return &CommunityRepository{}
}

// Get retrieves a community by id.
func (r *CommunityRepository) Get(ctx context.Context, q Querier, id string) (*models.Community, error) {
	const query = `SELECT id, name, is_active, created_at FROM communities WHERE id = $1`
	var c models.Community
	err := q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActiveMembers returns the active members of a community ordered by user id,
// so that account locks taken while iterating follow one global order.
func (r *CommunityRepository) ListActiveMembers(ctx context.Context, q Querier, communityID string) ([]*models.User, error) {
	const query = `
		SELECT u.id, u.email, u.display_name, u.role, u.created_at
		FROM community_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.community_id = $1 AND m.is_active
		ORDER BY u.id ASC
	`
	rows, err := q.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
