package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	clockmocks "skillbridge/internal/common/clock/mocks"
	uuidmocks "skillbridge/internal/common/uuid/mocks"
	"skillbridge/internal/models"
	"skillbridge/internal/notify"
	notifymocks "skillbridge/internal/notify/mocks"
	"skillbridge/internal/repository"
	repomocks "skillbridge/internal/repository/mocks"
)

type WaitlistSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	txr      *repomocks.MockTxRunner
	users    *repomocks.MockUserStore
	sessions *repomocks.MockSessionStore
	bookings *repomocks.MockBookingStore
	queue    *notifymocks.MockEnqueuer
	clock    *clockmocks.MockClock
	ids      *uuidmocks.MockGenerator

	svc *WaitlistService
	ctx context.Context
	now time.Time

	session *models.Session
	learner *models.User
}

func TestWaitlistSuite(t *testing.T) {
	suite.Run(t, new(WaitlistSuite))
}

func (s *WaitlistSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.txr = repomocks.NewMockTxRunner(s.ctrl)
	s.users = repomocks.NewMockUserStore(s.ctrl)
	s.sessions = repomocks.NewMockSessionStore(s.ctrl)
	s.bookings = repomocks.NewMockBookingStore(s.ctrl)
	s.queue = notifymocks.NewMockEnqueuer(s.ctrl)
	s.clock = clockmocks.NewMockClock(s.ctrl)
	s.ids = uuidmocks.NewMockGenerator(s.ctrl)

	s.svc = NewWaitlistService(
		s.txr, s.users, s.sessions, s.bookings,
		s.queue, s.clock, s.ids, zap.NewNop(),
	)

	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()

	s.session = &models.Session{
		ID:           "session-1",
		Title:        "Intro to Watercolors",
		InstructorID: "user-instructor",
		Status:       models.SessionStatusScheduled,
		MaxCapacity:  2,
		AccessLink:   "https://rooms.example/abc",
	}
	s.learner = &models.User{ID: "user-learner", Email: "ada@example.com"}
}

func (s *WaitlistSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WaitlistSuite) expectTx() {
	s.txr.EXPECT().InTx(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(repository.Querier) error) error {
			return fn(nil)
		})
}

func (s *WaitlistSuite) TestJoinFullSession() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(2, nil)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusWaiting).
		Return(5, nil)
	s.ids.EXPECT().NewID().Return("booking-1")

	var inserted *models.Booking
	s.bookings.EXPECT().Insert(s.ctx, nil, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, b *models.Booking) error {
			inserted = b
			return nil
		})

	var task notify.Task
	s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, t notify.Task) error {
			task = t
			return nil
		})

	booking, err := s.svc.Join(s.ctx, "session-1", "ada@example.com")
	s.Require().NoError(err)
	s.Equal("booking-1", booking.ID)

	s.Equal(models.BookingStatusWaiting, inserted.Status)
	s.Empty(inserted.AccessLink, "waiting bookings get no access link")
	s.Equal(notify.KindWaitlistJoined, task.Kind)
}

func (s *WaitlistSuite) TestJoinRejectedWhileSeatsRemain() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(1, nil)

	_, err := s.svc.Join(s.ctx, "session-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrSeatsStillAvailable)
}

func (s *WaitlistSuite) TestJoinRejectedWhenWaitlistFull() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(2, nil)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusWaiting).
		Return(MaxWaitlistSize, nil)

	_, err := s.svc.Join(s.ctx, "session-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrWaitlistFull)
}

func (s *WaitlistSuite) TestJoinRejectsDuplicateActiveBooking() {
	active := &models.Booking{ID: "booking-old", Status: models.BookingStatusConfirmed}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").Return(active, nil)

	_, err := s.svc.Join(s.ctx, "session-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrDuplicateBooking)
}

func (s *WaitlistSuite) TestLeaveCancelsWaitingBooking() {
	waiting := &models.Booking{
		ID:        "booking-1",
		SessionID: "session-1",
		LearnerID: "user-learner",
		Status:    models.BookingStatusWaiting,
	}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.bookings.EXPECT().Get(s.ctx, nil, "booking-1").Return(waiting, nil)

	var updated *models.Booking
	s.bookings.EXPECT().Update(s.ctx, nil, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, b *models.Booking) error {
			updated = b
			return nil
		})

	s.Require().NoError(s.svc.Leave(s.ctx, "booking-1", "ada@example.com"))
	s.Equal(models.BookingStatusCancelled, updated.Status)
}

func (s *WaitlistSuite) TestLeaveRejectsOtherLearnersBooking() {
	waiting := &models.Booking{
		ID:        "booking-1",
		LearnerID: "user-someone-else",
		Status:    models.BookingStatusWaiting,
	}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.bookings.EXPECT().Get(s.ctx, nil, "booking-1").Return(waiting, nil)

	err := s.svc.Leave(s.ctx, "booking-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrNotBookingOwner)
}

func (s *WaitlistSuite) TestLeaveRejectsConfirmedBooking() {
	confirmed := &models.Booking{
		ID:        "booking-1",
		LearnerID: "user-learner",
		Status:    models.BookingStatusConfirmed,
	}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.bookings.EXPECT().Get(s.ctx, nil, "booking-1").Return(confirmed, nil)

	err := s.svc.Leave(s.ctx, "booking-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrNotOnWaitlist)
}

func (s *WaitlistSuite) TestProcessPromotesOldestWaitersIntoFreeSeats() {
	waiting := []*models.Booking{
		{ID: "booking-w1", SessionID: "session-1", LearnerID: "user-a", Status: models.BookingStatusWaiting},
		{ID: "booking-w2", SessionID: "session-1", LearnerID: "user-b", Status: models.BookingStatusWaiting},
	}

	s.expectTx()
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)
	s.bookings.EXPECT().ListWaiting(s.ctx, nil, "session-1", 2).Return(waiting, nil)

	var updated []*models.Booking
	s.bookings.EXPECT().Update(s.ctx, nil, gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, _ any, b *models.Booking) error {
			updated = append(updated, b)
			return nil
		})

	var tasks []notify.Task
	s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, t notify.Task) error {
			tasks = append(tasks, t)
			return nil
		})

	promoted, err := s.svc.Process(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Require().Len(promoted, 2)

	for _, b := range updated {
		s.Equal(models.BookingStatusConfirmed, b.Status)
		s.Equal("https://rooms.example/abc", b.AccessLink, "promotion hands out the access link")
	}
	s.Equal("booking-w1", promoted[0].ID, "promotion is first-come-first-served")
	s.Equal(notify.KindSpotAvailable, tasks[0].Kind)
	s.Equal("user-a", tasks[0].UserID)
}

func (s *WaitlistSuite) TestProcessNoOpWhenSessionStillFull() {
	s.expectTx()
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(2, nil)

	promoted, err := s.svc.Process(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Empty(promoted)
}

func (s *WaitlistSuite) TestProcessNoOpWhenSessionClosed() {
	s.session.Status = models.SessionStatusFinished

	s.expectTx()
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)

	promoted, err := s.svc.Process(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Empty(promoted)
}

func (s *WaitlistSuite) TestProcessEmptyWaitlist() {
	s.expectTx()
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(1, nil)
	s.bookings.EXPECT().ListWaiting(s.ctx, nil, "session-1", 1).Return(nil, nil)

	promoted, err := s.svc.Process(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Empty(promoted)
}
