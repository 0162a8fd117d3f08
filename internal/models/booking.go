package models

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// Booking lifecycle states. No other states exist.
const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaiting   BookingStatus = "waiting"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingKind distinguishes individual admissions from community group admissions.
type BookingKind string

// Booking kinds.
const (
	BookingKindIndividual BookingKind = "individual"
	BookingKindGroup      BookingKind = "group"
)

// Booking is one learner's claim on one session occupancy. At most one
// non-cancelled booking exists per (session, learner) pair; a cancelled row is
// reactivated on a later attempt instead of inserting a duplicate.
type Booking struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	LearnerID   string        `json:"learner_id"`
	CommunityID *string       `json:"community_id,omitempty"`
	Kind        BookingKind   `json:"kind"`
	Status      BookingStatus `json:"status"`
	AccessLink  string        `json:"access_link,omitempty"`
	Attended    *bool         `json:"attended,omitempty"`
	EntryTime   *time.Time    `json:"entry_time,omitempty"`
	ExitTime    *time.Time    `json:"exit_time,omitempty"`
	BookingDate time.Time     `json:"booking_date"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Active reports whether the booking currently claims or queues for a seat.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusWaiting
}

// allowedTransitions encodes the booking state machine. Reactivation of a
// cancelled row is a fresh admission decision, so cancelled rows may move to
// either active state. A confirmed seat can never be demoted to waiting.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusWaiting:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusCancelled: {BookingStatusConfirmed, BookingStatusWaiting},
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a booking state change the lifecycle forbids.
type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking cannot transition from %s to %s", e.From, e.To)
}

// Transition moves the booking to next, stamping bookingDate with the time of
// the action that produced the new status. The access link is cleared for any
// non-confirmed state; confirming callers populate it from the session.
func (b *Booking) Transition(next BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{From: b.Status, To: next}
	}
	b.Status = next
	b.BookingDate = now
	if next != BookingStatusConfirmed {
		b.AccessLink = ""
	}
	return nil
}
