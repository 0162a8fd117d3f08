package repository

import (
	"context"
	"database/sql"
	"errors"

	"skillbridge/internal/models"
)

// BookingRepository is the postgres-backed BookingStore.
type BookingRepository struct{}

// NewBookingRepository returns repository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

const bookingColumns = "id, session_id, learner_id, community_id, kind, status, access_link, attended, entry_time, exit_time, booking_date, created_at, updated_at"

// Get retrieves a booking by id.
func (r *BookingRepository) Get(ctx context.Context, q Querier, id string) (*models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBookingRow(q.QueryRowContext(ctx, query, id))
}

// GetByPair retrieves the booking for a (session, learner) pair regardless of
// status. The pair is unique, cancelled rows included.
func (r *BookingRepository) GetByPair(ctx context.Context, q Querier, sessionID, learnerID string) (*models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE session_id = $1 AND learner_id = $2`
	return scanBookingRow(q.QueryRowContext(ctx, query, sessionID, learnerID))
}

// CountByStatus counts a session's bookings with the given status.
func (r *BookingRepository) CountByStatus(ctx context.Context, q Querier, sessionID string, status models.BookingStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE session_id = $1 AND status = $2`
	var count int
	if err := q.QueryRowContext(ctx, query, sessionID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Insert persists a new booking.
func (r *BookingRepository) Insert(ctx context.Context, q Querier, b *models.Booking) error {
	const query = `
		INSERT INTO bookings (id, session_id, learner_id, community_id, kind, status, access_link, booking_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return q.QueryRowContext(ctx, query,
		b.ID,
		b.SessionID,
		b.LearnerID,
		b.CommunityID,
		b.Kind,
		b.Status,
		b.AccessLink,
		b.BookingDate,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// Update persists booking mutations by id.
func (r *BookingRepository) Update(ctx context.Context, q Querier, b *models.Booking) error {
	const query = `
		UPDATE bookings
		SET community_id = $2,
		    kind = $3,
		    status = $4,
		    access_link = NULLIF($5, ''),
		    booking_date = $6,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.ExecContext(ctx, query,
		b.ID,
		b.CommunityID,
		b.Kind,
		b.Status,
		b.AccessLink,
		b.BookingDate,
	)
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

// ListWaiting returns up to limit waiting bookings in FIFO order by booking date.
func (r *BookingRepository) ListWaiting(ctx context.Context, q Querier, sessionID string, limit int) ([]*models.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND status = $2
		ORDER BY booking_date ASC
		LIMIT $3
	`
	rows, err := q.QueryContext(ctx, query, sessionID, models.BookingStatusWaiting, limit)
	if err != nil {
		return nil, err
	}
	return scanBookingRows(rows)
}

// ListActiveByCommunity returns the non-cancelled bookings a community holds on a session.
func (r *BookingRepository) ListActiveByCommunity(ctx context.Context, q Querier, sessionID, communityID string) ([]*models.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND community_id = $2 AND status <> $3
		ORDER BY booking_date ASC
	`
	rows, err := q.QueryContext(ctx, query, sessionID, communityID, models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	return scanBookingRows(rows)
}

func scanBookingRow(row *sql.Row) (*models.Booking, error) {
	b, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBookingRows(rows *sql.Rows) ([]*models.Booking, error) {
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func scanBooking(scan func(dest ...any) error) (*models.Booking, error) {
	var b models.Booking
	var accessLink sql.NullString
	err := scan(
		&b.ID,
		&b.SessionID,
		&b.LearnerID,
		&b.CommunityID,
		&b.Kind,
		&b.Status,
		&accessLink,
		&b.Attended,
		&b.EntryTime,
		&b.ExitTime,
		&b.BookingDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.AccessLink = accessLink.String
	return &b, nil
}
