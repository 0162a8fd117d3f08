package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"skillbridge/internal/common/clock"
	"skillbridge/internal/common/uuid"
	"skillbridge/internal/metrics"
	"skillbridge/internal/models"
	"skillbridge/internal/notify"
	"skillbridge/internal/repository"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_promoter.go skillbridge/internal/service WaitlistPromoter

// MaxWaitlistSize bounds the number of concurrently waiting bookings per session.
const MaxWaitlistSize = 20

// WaitlistPromoter backfills freed seats from the waitlist. Implemented by
// WaitlistService; the cancellation coordinator depends on this seam.
type WaitlistPromoter interface {
	Process(ctx context.Context, sessionID string) ([]*models.Booking, error)
}

// WaitlistService owns the FIFO queue of waiting bookings per session.
// Promotion never touches the ledger: a learner promoted into a premium
// session is not charged at promotion time.
type WaitlistService struct {
	txr      repository.TxRunner
	users    repository.UserStore
	sessions repository.SessionStore
	bookings repository.BookingStore
	queue    notify.Enqueuer
	clock    clock.Clock
	ids      uuid.Generator
	logger   *zap.Logger
}

// NewWaitlistService builds service.
func NewWaitlistService(
	txr repository.TxRunner,
	users repository.UserStore,
	sessions repository.SessionStore,
	bookings repository.BookingStore,
	queue notify.Enqueuer,
	clk clock.Clock,
	ids uuid.Generator,
	logger *zap.Logger,
) *WaitlistService {
	return &WaitlistService{
		txr:      txr,
		users:    users,
		sessions: sessions,
		bookings: bookings,
		queue:    queue,
		clock:    clk,
		ids:      ids,
		logger:   logger,
	}
}

// Join places a learner on the waitlist. Joining is only allowed once every
// seat is confirmed; while seats remain the learner must book directly.
func (s *WaitlistService) Join(ctx context.Context, sessionID, learnerEmail string) (*models.Booking, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("join_waitlist"))
	defer timer.ObserveDuration()

	var booking *models.Booking
	var session *models.Session

	err := s.txr.InTx(ctx, func(q repository.Querier) error {
		learner, err := s.users.GetByEmail(ctx, q, learnerEmail)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLearnerNotFound
		}
		if err != nil {
			return err
		}

		session, err = s.sessions.GetForUpdate(ctx, q, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if !session.AcceptsBookings() {
			return ErrSessionNotBookable
		}

		existing, err := pairBooking(ctx, q, s.bookings, sessionID, learner.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Active() {
			return ErrDuplicateBooking
		}

		confirmed, err := s.bookings.CountByStatus(ctx, q, sessionID, models.BookingStatusConfirmed)
		if err != nil {
			return err
		}
		if confirmed < session.MaxCapacity {
			return ErrSeatsStillAvailable
		}

		waiting, err := s.bookings.CountByStatus(ctx, q, sessionID, models.BookingStatusWaiting)
		if err != nil {
			return err
		}
		if waiting >= MaxWaitlistSize {
			return ErrWaitlistFull
		}

		booking, err = activateBooking(ctx, q, s.bookings, existing, &models.Booking{
			ID:          s.ids.NewID(),
			SessionID:   sessionID,
			LearnerID:   learner.ID,
			Kind:        models.BookingKindIndividual,
			Status:      models.BookingStatusWaiting,
			BookingDate: s.clock.Now(),
		})
		return err
	})
	if err != nil {
		metrics.WaitlistJoinsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, err
	}

	metrics.WaitlistJoinsTotal.WithLabelValues(metrics.ResultOK).Inc()
	s.logger.Info("learner joined waitlist",
		zap.String("session_id", sessionID),
		zap.String("booking_id", booking.ID),
	)

	s.enqueue(ctx, notify.Task{
		Kind:         notify.KindWaitlistJoined,
		BookingID:    booking.ID,
		SessionID:    session.ID,
		SessionTitle: session.Title,
		UserID:       booking.LearnerID,
		UserEmail:    learnerEmail,
	})
	return booking, nil
}

// Leave cancels a waiting booking voluntarily. No seat was held, so no
// promotion runs.
func (s *WaitlistService) Leave(ctx context.Context, bookingID, learnerEmail string) error {
	return s.txr.InTx(ctx, func(q repository.Querier) error {
		learner, err := s.users.GetByEmail(ctx, q, learnerEmail)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLearnerNotFound
		}
		if err != nil {
			return err
		}

		booking, err := s.bookings.Get(ctx, q, bookingID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		if booking.LearnerID != learner.ID {
			return ErrNotBookingOwner
		}
		if booking.Status != models.BookingStatusWaiting {
			return ErrNotOnWaitlist
		}

		if err := booking.Transition(models.BookingStatusCancelled, s.clock.Now()); err != nil {
			return err
		}
		return s.bookings.Update(ctx, q, booking)
	})
}

// Process promotes the earliest-joined waiting bookings into any free seats.
// A no-op when the session is full, has no waitlist, or no longer accepts
// occupants. Promoted bookings get the session access link; the ledger is
// never consulted.
func (s *WaitlistService) Process(ctx context.Context, sessionID string) ([]*models.Booking, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("process_waitlist"))
	defer timer.ObserveDuration()

	var promoted []*models.Booking
	var session *models.Session

	err := s.txr.InTx(ctx, func(q repository.Querier) error {
		var err error
		session, err = s.sessions.GetForUpdate(ctx, q, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if !session.AcceptsBookings() {
			return nil
		}

		confirmed, err := s.bookings.CountByStatus(ctx, q, sessionID, models.BookingStatusConfirmed)
		if err != nil {
			return err
		}
		available := session.MaxCapacity - confirmed
		if available <= 0 {
			return nil
		}

		waiting, err := s.bookings.ListWaiting(ctx, q, sessionID, available)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, booking := range waiting {
			if err := booking.Transition(models.BookingStatusConfirmed, now); err != nil {
				return err
			}
			booking.AccessLink = session.AccessLink
			if err := s.bookings.Update(ctx, q, booking); err != nil {
				return err
			}
			promoted = append(promoted, booking)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, booking := range promoted {
		metrics.PromotionsTotal.Inc()
		s.enqueue(ctx, notify.Task{
			Kind:         notify.KindSpotAvailable,
			BookingID:    booking.ID,
			SessionID:    session.ID,
			SessionTitle: session.Title,
			UserID:       booking.LearnerID,
		})
	}
	if len(promoted) > 0 {
		s.logger.Info("waitlist promotions applied",
			zap.String("session_id", sessionID),
			zap.Int("promoted", len(promoted)),
		)
	}
	return promoted, nil
}

func (s *WaitlistService) enqueue(ctx context.Context, task notify.Task) {
	task.EnqueuedAt = s.clock.Now()
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("kind", string(task.Kind)),
			zap.String("session_id", task.SessionID),
			zap.Error(err),
		)
	}
}
