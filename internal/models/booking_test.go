package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"confirmed to cancelled", BookingStatusConfirmed, BookingStatusCancelled, true},
		{"confirmed to waiting is forbidden", BookingStatusConfirmed, BookingStatusWaiting, false},
		{"confirmed to confirmed is forbidden", BookingStatusConfirmed, BookingStatusConfirmed, false},
		{"waiting to confirmed (promotion)", BookingStatusWaiting, BookingStatusConfirmed, true},
		{"waiting to cancelled (departure)", BookingStatusWaiting, BookingStatusCancelled, true},
		{"waiting to waiting is forbidden", BookingStatusWaiting, BookingStatusWaiting, false},
		{"cancelled to confirmed (reactivation)", BookingStatusCancelled, BookingStatusConfirmed, true},
		{"cancelled to waiting (reactivation)", BookingStatusCancelled, BookingStatusWaiting, true},
		{"cancelled to cancelled is forbidden", BookingStatusCancelled, BookingStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestBookingTransitionStampsDateAndClearsLink(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	b := &Booking{
		Status:      BookingStatusConfirmed,
		AccessLink:  "https://rooms.example/abc",
		BookingDate: now,
	}

	require.NoError(t, b.Transition(BookingStatusCancelled, later))
	assert.Equal(t, BookingStatusCancelled, b.Status)
	assert.Equal(t, later, b.BookingDate)
	assert.Empty(t, b.AccessLink, "cancelled bookings must not retain the access link")
}

func TestBookingTransitionRejectsIllegalMove(t *testing.T) {
	b := &Booking{
		Status:      BookingStatusConfirmed,
		AccessLink:  "https://rooms.example/abc",
		BookingDate: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	err := b.Transition(BookingStatusWaiting, time.Now())

	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, BookingStatusConfirmed, transitionErr.From)
	assert.Equal(t, BookingStatusWaiting, transitionErr.To)
	assert.Equal(t, BookingStatusConfirmed, b.Status, "failed transition must not mutate the booking")
	assert.Equal(t, "https://rooms.example/abc", b.AccessLink)
}

func TestBookingActive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).Active())
	assert.True(t, (&Booking{Status: BookingStatusWaiting}).Active())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).Active())
}

func TestSessionGuards(t *testing.T) {
	assert.True(t, (&Session{Status: SessionStatusScheduled}).AcceptsBookings())
	assert.True(t, (&Session{Status: SessionStatusActive}).AcceptsBookings())
	assert.False(t, (&Session{Status: SessionStatusFinished}).AcceptsBookings())
	assert.False(t, (&Session{Status: SessionStatusCancelled}).AcceptsBookings())

	assert.True(t, (&Session{Status: SessionStatusScheduled}).CancellationOpen())
	assert.False(t, (&Session{Status: SessionStatusActive}).CancellationOpen())
	assert.False(t, (&Session{Status: SessionStatusFinished}).CancellationOpen())

	assert.True(t, (&Session{IsPremium: true, Cost: 10}).Chargeable())
	assert.False(t, (&Session{IsPremium: true, Cost: 0}).Chargeable())
	assert.False(t, (&Session{IsPremium: false, Cost: 10}).Chargeable())
}
