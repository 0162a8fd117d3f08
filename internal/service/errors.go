package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the booking domain. Handlers map these onto HTTP codes
// with errors.Is; structured variants below carry exact figures for callers.
var (
	ErrLearnerNotFound          = errors.New("learner profile not found")
	ErrSessionNotFound          = errors.New("session not found")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrCommunityNotFound        = errors.New("community not found")
	ErrCommunityInactive        = errors.New("community is not active")
	ErrNotCommunityMember       = errors.New("requester is not an active member of the community")
	ErrSessionNotBookable       = errors.New("session is not accepting bookings")
	ErrSessionMissingAccessLink = errors.New("session has no access link configured")
	ErrDuplicateBooking         = errors.New("an active booking for this session already exists")
	ErrNotBookingOwner          = errors.New("booking belongs to another learner")
	ErrBookingAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrCancellationClosed       = errors.New("session has already started, cancellation is closed")
	ErrWaitlistFull             = errors.New("waitlist is full")
	ErrSeatsStillAvailable      = errors.New("seats are still available, book the session instead of waiting")
	ErrNotOnWaitlist            = errors.New("booking is not on the waitlist")
)

// CapacityExhaustedError rejects an admission against a full session.
type CapacityExhaustedError struct {
	Confirmed int
	Capacity  int
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("session is fully booked (%d/%d seats confirmed)", e.Confirmed, e.Capacity)
}

// GroupCapacityError rejects a group admission that does not fit the free seats.
type GroupCapacityError struct {
	Available int
	Members   int
}

func (e *GroupCapacityError) Error() string {
	return fmt.Sprintf("community needs %d seats but only %d remain", e.Members, e.Available)
}

// InsufficientFundsError rejects a payment and reports the exact shortfall.
// LearnerEmail identifies the short member on group bookings.
type InsufficientFundsError struct {
	LearnerEmail string
	Balance      int64
	Cost         int64
	Deficit      int64
}

func (e *InsufficientFundsError) Error() string {
	if e.LearnerEmail != "" {
		return fmt.Sprintf("insufficient SkillCoin balance for %s: session costs %d, balance is %d (short %d)",
			e.LearnerEmail, e.Cost, e.Balance, e.Deficit)
	}
	return fmt.Sprintf("insufficient SkillCoin balance: session costs %d, balance is %d (short %d)",
		e.Cost, e.Balance, e.Deficit)
}
