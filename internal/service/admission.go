package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"skillbridge/internal/common/clock"
	"skillbridge/internal/common/uuid"
	"skillbridge/internal/metrics"
	"skillbridge/internal/models"
	"skillbridge/internal/notify"
	"skillbridge/internal/repository"
)

// AdmissionService decides whether a learner, or an entire community, may
// occupy seats in a session. Every decision runs inside one transaction that
// holds the session row lock, so the capacity check and the booking write are
// linearizable across concurrent requests.
type AdmissionService struct {
	txr         repository.TxRunner
	users       repository.UserStore
	sessions    repository.SessionStore
	bookings    repository.BookingStore
	communities repository.CommunityStore
	ledger      *LedgerService
	queue       notify.Enqueuer
	clock       clock.Clock
	ids         uuid.Generator
	logger      *zap.Logger
}

// NewAdmissionService builds service.
func NewAdmissionService(
	txr repository.TxRunner,
	users repository.UserStore,
	sessions repository.SessionStore,
	bookings repository.BookingStore,
	communities repository.CommunityStore,
	ledger *LedgerService,
	queue notify.Enqueuer,
	clk clock.Clock,
	ids uuid.Generator,
	logger *zap.Logger,
) *AdmissionService {
	return &AdmissionService{
		txr:         txr,
		users:       users,
		sessions:    sessions,
		bookings:    bookings,
		communities: communities,
		ledger:      ledger,
		queue:       queue,
		clock:       clk,
		ids:         ids,
		logger:      logger,
	}
}

// BookIndividual admits one learner into a session, charging the SkillCoin
// cost for premium sessions. A previously cancelled row for the pair is
// reactivated instead of inserting a duplicate.
func (s *AdmissionService) BookIndividual(ctx context.Context, sessionID, learnerEmail string) (*models.Booking, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("book_individual"))
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
		if confirmed >= session.MaxCapacity {
			return &CapacityExhaustedError{Confirmed: confirmed, Capacity: session.MaxCapacity}
		}

		if session.AccessLink == "" {
			return ErrSessionMissingAccessLink
		}

		if err := s.ledger.Pay(ctx, q, learner, session); err != nil {
			return err
		}

		booking, err = activateBooking(ctx, q, s.bookings, existing, &models.Booking{
			ID:          s.ids.NewID(),
			SessionID:   sessionID,
			LearnerID:   learner.ID,
			Kind:        models.BookingKindIndividual,
			Status:      models.BookingStatusConfirmed,
			AccessLink:  session.AccessLink,
			BookingDate: s.clock.Now(),
		})
		return err
	})
	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues(string(models.BookingKindIndividual), admissionResult(err)).Inc()
		return nil, err
	}

	metrics.AdmissionsTotal.WithLabelValues(string(models.BookingKindIndividual), metrics.ResultOK).Inc()
	s.logger.Info("individual booking confirmed",
		zap.String("session_id", sessionID),
		zap.String("booking_id", booking.ID),
	)

	s.enqueue(ctx, notify.Task{
		Kind:         notify.KindBookingConfirmed,
		BookingID:    booking.ID,
		SessionID:    session.ID,
		SessionTitle: session.Title,
		UserID:       booking.LearnerID,
		UserEmail:    learnerEmail,
	})
	return booking, nil
}

// BookGroup admits every active member of a community, all-or-nothing: every
// member ends up confirmed and paid, or nothing changes.
func (s *AdmissionService) BookGroup(ctx context.Context, sessionID, communityID, requesterEmail string) ([]*models.Booking, error) {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues("book_group"))
	defer timer.ObserveDuration()

	var bookings []*models.Booking
	var members []*models.User
	var session *models.Session

	err := s.txr.InTx(ctx, func(q repository.Querier) error {
		requester, err := s.users.GetByEmail(ctx, q, requesterEmail)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLearnerNotFound
		}
		if err != nil {
			return err
		}

		community, err := s.communities.Get(ctx, q, communityID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommunityNotFound
		}
		if err != nil {
			return err
		}
		if !community.IsActive {
			return ErrCommunityInactive
		}

		members, err = s.communities.ListActiveMembers(ctx, q, communityID)
		if err != nil {
			return err
		}
		if !containsUser(members, requester.ID) {
			return ErrNotCommunityMember
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

		existingByMember := make(map[string]*models.Booking, len(members))
		for _, member := range members {
			existing, err := pairBooking(ctx, q, s.bookings, sessionID, member.ID)
			if err != nil {
				return err
			}
			if existing != nil && existing.Active() {
				return fmt.Errorf("%s: %w", member.Email, ErrDuplicateBooking)
			}
			existingByMember[member.ID] = existing
		}

		confirmed, err := s.bookings.CountByStatus(ctx, q, sessionID, models.BookingStatusConfirmed)
		if err != nil {
			return err
		}
		if available := session.MaxCapacity - confirmed; available < len(members) {
			return &GroupCapacityError{Available: available, Members: len(members)}
		}

		if session.AccessLink == "" {
			return ErrSessionMissingAccessLink
		}

		// Every member's balance is verified before the first debit lands.
		if err := s.ledger.PayGroup(ctx, q, members, session); err != nil {
			return err
		}

		now := s.clock.Now()
		bookings = make([]*models.Booking, 0, len(members))
		for _, member := range members {
			cid := communityID
			booking, err := activateBooking(ctx, q, s.bookings, existingByMember[member.ID], &models.Booking{
				ID:          s.ids.NewID(),
				SessionID:   sessionID,
				LearnerID:   member.ID,
				CommunityID: &cid,
				Kind:        models.BookingKindGroup,
				Status:      models.BookingStatusConfirmed,
				AccessLink:  session.AccessLink,
				BookingDate: now,
			})
			if err != nil {
				return err
			}
			bookings = append(bookings, booking)
		}
		return nil
	})
	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues(string(models.BookingKindGroup), admissionResult(err)).Inc()
		return nil, err
	}

	metrics.AdmissionsTotal.WithLabelValues(string(models.BookingKindGroup), metrics.ResultOK).Inc()
	s.logger.Info("group booking confirmed",
		zap.String("session_id", sessionID),
		zap.String("community_id", communityID),
		zap.Int("members", len(bookings)),
	)

	for i, booking := range bookings {
		s.enqueue(ctx, notify.Task{
			Kind:         notify.KindBookingConfirmed,
			BookingID:    booking.ID,
			SessionID:    session.ID,
			SessionTitle: session.Title,
			UserID:       booking.LearnerID,
			UserEmail:    members[i].Email,
		})
	}
	return bookings, nil
}

func (s *AdmissionService) enqueue(ctx context.Context, task notify.Task) {
	task.EnqueuedAt = s.clock.Now()
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("kind", string(task.Kind)),
			zap.String("session_id", task.SessionID),
			zap.Error(err),
		)
	}
}

func containsUser(users []*models.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// admissionResult buckets an admission error for metrics: domain rejections
// versus infrastructure failures.
func admissionResult(err error) string {
	var capacity *CapacityExhaustedError
	var groupCapacity *GroupCapacityError
	var funds *InsufficientFundsError
	switch {
	case errors.As(err, &capacity), errors.As(err, &groupCapacity), errors.As(err, &funds),
		errors.Is(err, ErrDuplicateBooking), errors.Is(err, ErrSessionNotBookable),
		errors.Is(err, ErrLearnerNotFound), errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrCommunityNotFound), errors.Is(err, ErrCommunityInactive),
		errors.Is(err, ErrNotCommunityMember), errors.Is(err, ErrSessionMissingAccessLink):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
