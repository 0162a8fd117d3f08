package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"skillbridge/internal/common/clock"
	"skillbridge/internal/metrics"
	"skillbridge/internal/models"
	"skillbridge/internal/notify"
	"skillbridge/internal/repository"
)

// CancellationService reverses bookings, issues symmetric refunds and
// backfills freed seats from the waitlist. The booking-state change is
// authoritative: refund, promotion and notification failures are logged,
// never allowed to undo a cancellation.
type CancellationService struct {
	txr      repository.TxRunner
	users    repository.UserStore
	sessions repository.SessionStore
	bookings repository.BookingStore
	ledger   *LedgerService
	waitlist WaitlistPromoter
	queue    notify.Enqueuer
	clock    clock.Clock
	logger   *zap.Logger
}

// NewCancellationService builds service.
func NewCancellationService(
	txr repository.TxRunner,
	users repository.UserStore,
	sessions repository.SessionStore,
	bookings repository.BookingStore,
	ledger *LedgerService,
	waitlist WaitlistPromoter,
	queue notify.Enqueuer,
	clk clock.Clock,
	logger *zap.Logger,
) *CancellationService {
	return &CancellationService{
		txr:      txr,
		users:    users,
		sessions: sessions,
		bookings: bookings,
		ledger:   ledger,
		waitlist: waitlist,
		queue:    queue,
		clock:    clk,
		logger:   logger,
	}
}

// Cancel reverses the requester's booking. An individual booking frees its
// one seat; a group booking cancels and refunds every active member booking
// of the same (session, community) pair. The freed seats are then offered to
// the waitlist.
func (s *CancellationService) Cancel(ctx context.Context, bookingID, requesterEmail string) (*models.Booking, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("cancel"))
	defer timer.ObserveDuration()

	var cancelled *models.Booking
	var session *models.Session
	var tasks []notify.Task
	var kind models.BookingKind
	spotsFreed := 0

	err := s.txr.InTx(ctx, func(q repository.Querier) error {
		requester, err := s.users.GetByEmail(ctx, q, requesterEmail)
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
		if booking.LearnerID != requester.ID {
			return ErrNotBookingOwner
		}
		if booking.Status == models.BookingStatusCancelled {
			return ErrBookingAlreadyCancelled
		}
		kind = booking.Kind

		session, err = s.sessions.GetForUpdate(ctx, q, booking.SessionID)
		if err != nil {
			return err
		}
		if !session.CancellationOpen() {
			return ErrCancellationClosed
		}

		if booking.Kind == models.BookingKindGroup && booking.CommunityID != nil {
			group, err := s.bookings.ListActiveByCommunity(ctx, q, session.ID, *booking.CommunityID)
			if err != nil {
				return err
			}
			for _, member := range group {
				freed, err := s.cancelOne(ctx, q, member, session)
				if err != nil {
					return err
				}
				if freed {
					spotsFreed++
				}
				tasks = append(tasks, notify.Task{
					Kind:         notify.KindBookingCancelled,
					BookingID:    member.ID,
					SessionID:    session.ID,
					SessionTitle: session.Title,
					UserID:       member.LearnerID,
				})
				if member.ID == booking.ID {
					cancelled = member
				}
			}
			return nil
		}

		freed, err := s.cancelOne(ctx, q, booking, session)
		if err != nil {
			return err
		}
		if freed {
			spotsFreed = 1
		}
		tasks = append(tasks, notify.Task{
			Kind:         notify.KindBookingCancelled,
			BookingID:    booking.ID,
			SessionID:    session.ID,
			SessionTitle: session.Title,
			UserID:       booking.LearnerID,
			UserEmail:    requesterEmail,
		})
		cancelled = booking
		return nil
	})
	if err != nil {
		metrics.CancellationsTotal.WithLabelValues(string(kind), metrics.ResultRejected).Inc()
		return nil, err
	}

	metrics.CancellationsTotal.WithLabelValues(string(cancelled.Kind), metrics.ResultOK).Inc()
	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("session_id", session.ID),
		zap.String("kind", string(cancelled.Kind)),
		zap.Int("spots_freed", spotsFreed),
	)

	for _, task := range tasks {
		s.enqueue(ctx, task)
	}
	s.enqueue(ctx, notify.Task{
		Kind:       notify.KindInstructorCancellation,
		SessionID:  session.ID,
		UserID:     session.InstructorID,
		SpotsFreed: spotsFreed,
	})

	// Backfill freed seats. A promotion failure never unwinds the cancellation.
	if _, err := s.waitlist.Process(ctx, session.ID); err != nil {
		s.logger.Error("waitlist promotion after cancellation failed",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
	return cancelled, nil
}

// cancelOne transitions a single booking to cancelled and refunds the seat if
// it was confirmed and paid. A refund failure is logged and skipped so the
// remaining group members still get processed.
func (s *CancellationService) cancelOne(ctx context.Context, q repository.Querier, booking *models.Booking, session *models.Session) (freedSeat bool, err error) {
	wasConfirmed := booking.Status == models.BookingStatusConfirmed

	if err := booking.Transition(models.BookingStatusCancelled, s.clock.Now()); err != nil {
		return false, err
	}
	if err := s.bookings.Update(ctx, q, booking); err != nil {
		return false, err
	}

	if wasConfirmed {
		if err := s.ledger.Refund(ctx, q, booking.LearnerID, session); err != nil {
			s.logger.Error("refund failed during cancellation",
				zap.String("booking_id", booking.ID),
				zap.String("learner_id", booking.LearnerID),
				zap.Error(err),
			)
		}
	}
	return wasConfirmed, nil
}

func (s *CancellationService) enqueue(ctx context.Context, task notify.Task) {
	task.EnqueuedAt = s.clock.Now()
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("kind", string(task.Kind)),
			zap.String("session_id", task.SessionID),
			zap.Error(err),
		)
	}
}
