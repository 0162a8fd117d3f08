package service

import (
	"context"
	"errors"

	"skillbridge/internal/models"
	"skillbridge/internal/repository"
)

// activateBooking gives the (session, learner) pair its target status, either
// by reactivating the pair's cancelled row or by inserting a fresh one. The
// uniqueness invariant over the pair survives cancel/rebook cycles because a
// cancelled row is never duplicated.
func activateBooking(ctx context.Context, q repository.Querier, store repository.BookingStore, existing, fresh *models.Booking) (*models.Booking, error) {
	if existing == nil {
		if err := store.Insert(ctx, q, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	if err := existing.Transition(fresh.Status, fresh.BookingDate); err != nil {
		return nil, err
	}
	existing.Kind = fresh.Kind
	existing.CommunityID = fresh.CommunityID
	existing.AccessLink = fresh.AccessLink
	if err := store.Update(ctx, q, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// pairBooking fetches the booking for a pair, mapping a missing row to nil.
func pairBooking(ctx context.Context, q repository.Querier, store repository.BookingStore, sessionID, learnerID string) (*models.Booking, error) {
	booking, err := store.GetByPair(ctx, q, sessionID, learnerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}
