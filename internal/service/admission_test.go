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

type AdmissionSuite struct {
	suite.Suite

	ctrl        *gomock.Controller
	txr         *repomocks.MockTxRunner
	users       *repomocks.MockUserStore
	sessions    *repomocks.MockSessionStore
	bookings    *repomocks.MockBookingStore
	communities *repomocks.MockCommunityStore
	ledger      *repomocks.MockLedgerStore
	queue       *notifymocks.MockEnqueuer
	clock       *clockmocks.MockClock
	ids         *uuidmocks.MockGenerator

	svc *AdmissionService
	ctx context.Context
	now time.Time

	session *models.Session
	learner *models.User
}

func TestAdmissionSuite(t *testing.T) {
	suite.Run(t, new(AdmissionSuite))
}

func (s *AdmissionSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.txr = repomocks.NewMockTxRunner(s.ctrl)
	s.users = repomocks.NewMockUserStore(s.ctrl)
	s.sessions = repomocks.NewMockSessionStore(s.ctrl)
	s.bookings = repomocks.NewMockBookingStore(s.ctrl)
	s.communities = repomocks.NewMockCommunityStore(s.ctrl)
	s.ledger = repomocks.NewMockLedgerStore(s.ctrl)
	s.queue = notifymocks.NewMockEnqueuer(s.ctrl)
	s.clock = clockmocks.NewMockClock(s.ctrl)
	s.ids = uuidmocks.NewMockGenerator(s.ctrl)

	logger := zap.NewNop()
	ledgerSvc := NewLedgerService(s.ledger, s.ids, logger)
	s.svc = NewAdmissionService(
		s.txr, s.users, s.sessions, s.bookings, s.communities,
		ledgerSvc, s.queue, s.clock, s.ids, logger,
	)

	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()

	s.session = &models.Session{
		ID:           "session-1",
		Title:        "Intro to Watercolors",
		InstructorID: "user-instructor",
		Status:       models.SessionStatusScheduled,
		MaxCapacity:  3,
		AccessLink:   "https://rooms.example/abc",
	}
	s.learner = &models.User{ID: "user-learner", Email: "ada@example.com"}
}

func (s *AdmissionSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AdmissionSuite) expectTx() {
	s.txr.EXPECT().InTx(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(repository.Querier) error) error {
			return fn(nil)
		})
}

func (s *AdmissionSuite) TestBookIndividualFreeSession() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(1, nil)
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

	booking, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(booking)

	s.Equal("booking-1", inserted.ID)
	s.Equal(models.BookingStatusConfirmed, inserted.Status)
	s.Equal(models.BookingKindIndividual, inserted.Kind)
	s.Equal("https://rooms.example/abc", inserted.AccessLink)
	s.Equal(s.now, inserted.BookingDate)

	s.Equal(notify.KindBookingConfirmed, task.Kind)
	s.Equal("booking-1", task.BookingID)
	s.Equal("Intro to Watercolors", task.SessionTitle)
	s.Equal("ada@example.com", task.UserEmail)
}

func (s *AdmissionSuite) TestBookIndividualPremiumChargesLearner() {
	s.session.IsPremium = true
	s.session.Cost = 50

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)

	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-instructor").
		Return(&models.Account{UserID: "user-instructor", Balance: 0}, nil)
	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-learner").
		Return(&models.Account{UserID: "user-learner", Balance: 100}, nil)
	s.ledger.EXPECT().AddToBalance(s.ctx, nil, "user-learner", int64(-50)).Return(nil)
	s.ledger.EXPECT().AddToBalance(s.ctx, nil, "user-instructor", int64(50)).Return(nil)
	s.ledger.EXPECT().InsertTransaction(s.ctx, nil, gomock.Any()).Return(nil).Times(2)

	s.ids.EXPECT().NewID().Return("tx-1")
	s.ids.EXPECT().NewID().Return("tx-2")
	s.ids.EXPECT().NewID().Return("booking-1")

	s.bookings.EXPECT().Insert(s.ctx, nil, gomock.Any()).Return(nil)
	s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).Return(nil)

	booking, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().NoError(err)
	s.Equal("booking-1", booking.ID)
}

func (s *AdmissionSuite) TestBookIndividualShortBalanceWritesNothing() {
	s.session.IsPremium = true
	s.session.Cost = 50

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)

	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-instructor").
		Return(&models.Account{UserID: "user-instructor", Balance: 0}, nil)
	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-learner").
		Return(&models.Account{UserID: "user-learner", Balance: 10}, nil)

	booking, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().Nil(booking)

	var funds *InsufficientFundsError
	s.Require().ErrorAs(err, &funds)
	s.Equal(int64(40), funds.Deficit)
}

func (s *AdmissionSuite) TestBookIndividualReactivatesCancelledRow() {
	cancelled := &models.Booking{
		ID:        "booking-old",
		SessionID: "session-1",
		LearnerID: "user-learner",
		Kind:      models.BookingKindIndividual,
		Status:    models.BookingStatusCancelled,
	}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").Return(cancelled, nil)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)
	s.ids.EXPECT().NewID().Return("booking-unused")

	var updated *models.Booking
	s.bookings.EXPECT().Update(s.ctx, nil, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, b *models.Booking) error {
			updated = b
			return nil
		})
	s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).Return(nil)

	booking, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().NoError(err)

	s.Equal("booking-old", booking.ID, "the existing row is reused, never duplicated")
	s.Equal(models.BookingStatusConfirmed, updated.Status)
	s.Equal("https://rooms.example/abc", updated.AccessLink)
	s.Equal(s.now, updated.BookingDate)
}

func (s *AdmissionSuite) TestBookIndividualDuplicateActiveBooking() {
	active := &models.Booking{ID: "booking-old", Status: models.BookingStatusWaiting}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").Return(active, nil)

	_, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrDuplicateBooking)
}

func (s *AdmissionSuite) TestBookIndividualCapacityExhausted() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(3, nil)

	_, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")

	var capacity *CapacityExhaustedError
	s.Require().ErrorAs(err, &capacity)
	s.Equal(3, capacity.Confirmed)
	s.Equal(3, capacity.Capacity)
}

func (s *AdmissionSuite) TestBookIndividualUnknownLearner() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ghost@example.com").
		Return(nil, repository.ErrNotFound)

	_, err := s.svc.BookIndividual(s.ctx, "session-1", "ghost@example.com")
	s.Require().ErrorIs(err, ErrLearnerNotFound)
}

func (s *AdmissionSuite) TestBookIndividualUnknownSession() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-404").
		Return(nil, repository.ErrNotFound)

	_, err := s.svc.BookIndividual(s.ctx, "session-404", "ada@example.com")
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *AdmissionSuite) TestBookIndividualFinishedSession() {
	s.session.Status = models.SessionStatusFinished

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)

	_, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrSessionNotBookable)
}

func (s *AdmissionSuite) TestBookIndividualMissingAccessLink() {
	s.session.AccessLink = ""

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)

	_, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrSessionMissingAccessLink)
}

func (s *AdmissionSuite) TestBookIndividualEnqueueFailureDoesNotFailBooking() {
	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)
	s.ids.EXPECT().NewID().Return("booking-1")
	s.bookings.EXPECT().Insert(s.ctx, nil, gomock.Any()).Return(nil)
	s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).Return(context.DeadlineExceeded)

	booking, err := s.svc.BookIndividual(s.ctx, "session-1", "ada@example.com")
	s.Require().NoError(err)
	s.Equal("booking-1", booking.ID)
}

func (s *AdmissionSuite) groupFixture() (*models.Community, []*models.User) {
	community := &models.Community{ID: "community-1", Name: "Study Circle", IsActive: true}
	members := []*models.User{
		s.learner,
		{ID: "user-peer", Email: "bob@example.com"},
	}
	return community, members
}

func (s *AdmissionSuite) TestBookGroupAdmitsEveryMember() {
	community, members := s.groupFixture()

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.communities.EXPECT().Get(s.ctx, nil, "community-1").Return(community, nil)
	s.communities.EXPECT().ListActiveMembers(s.ctx, nil, "community-1").Return(members, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-peer").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(1, nil)

	s.ids.EXPECT().NewID().Return("booking-1")
	s.ids.EXPECT().NewID().Return("booking-2")

	var inserted []*models.Booking
	s.bookings.EXPECT().Insert(s.ctx, nil, gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, _ any, b *models.Booking) error {
			inserted = append(inserted, b)
			return nil
		})

	var tasks []notify.Task
	s.queue.EXPECT().Enqueue(s.ctx, gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, t notify.Task) error {
			tasks = append(tasks, t)
			return nil
		})

	bookings, err := s.svc.BookGroup(s.ctx, "session-1", "community-1", "ada@example.com")
	s.Require().NoError(err)
	s.Require().Len(bookings, 2)

	for _, b := range inserted {
		s.Equal(models.BookingKindGroup, b.Kind)
		s.Equal(models.BookingStatusConfirmed, b.Status)
		s.Require().NotNil(b.CommunityID)
		s.Equal("community-1", *b.CommunityID)
	}
	s.Equal("ada@example.com", tasks[0].UserEmail)
	s.Equal("bob@example.com", tasks[1].UserEmail)
}

func (s *AdmissionSuite) TestBookGroupRejectsNonMember() {
	community, _ := s.groupFixture()
	members := []*models.User{{ID: "user-peer", Email: "bob@example.com"}}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.communities.EXPECT().Get(s.ctx, nil, "community-1").Return(community, nil)
	s.communities.EXPECT().ListActiveMembers(s.ctx, nil, "community-1").Return(members, nil)

	_, err := s.svc.BookGroup(s.ctx, "session-1", "community-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrNotCommunityMember)
}

func (s *AdmissionSuite) TestBookGroupInactiveCommunity() {
	community := &models.Community{ID: "community-1", IsActive: false}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.communities.EXPECT().Get(s.ctx, nil, "community-1").Return(community, nil)

	_, err := s.svc.BookGroup(s.ctx, "session-1", "community-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrCommunityInactive)
}

func (s *AdmissionSuite) TestBookGroupTooLargeForFreeSeats() {
	community, members := s.groupFixture()

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.communities.EXPECT().Get(s.ctx, nil, "community-1").Return(community, nil)
	s.communities.EXPECT().ListActiveMembers(s.ctx, nil, "community-1").Return(members, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-peer").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(2, nil)

	_, err := s.svc.BookGroup(s.ctx, "session-1", "community-1", "ada@example.com")

	var capacity *GroupCapacityError
	s.Require().ErrorAs(err, &capacity)
	s.Equal(1, capacity.Available)
	s.Equal(2, capacity.Members)
}

func (s *AdmissionSuite) TestBookGroupNamesMemberWithActiveBooking() {
	community, members := s.groupFixture()
	active := &models.Booking{ID: "booking-old", Status: models.BookingStatusConfirmed}

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.communities.EXPECT().Get(s.ctx, nil, "community-1").Return(community, nil)
	s.communities.EXPECT().ListActiveMembers(s.ctx, nil, "community-1").Return(members, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-peer").Return(active, nil)

	_, err := s.svc.BookGroup(s.ctx, "session-1", "community-1", "ada@example.com")
	s.Require().ErrorIs(err, ErrDuplicateBooking)
	s.Contains(err.Error(), "bob@example.com")
}

func (s *AdmissionSuite) TestBookGroupShortMemberAbortsEverything() {
	s.session.IsPremium = true
	s.session.Cost = 50
	community, members := s.groupFixture()

	s.expectTx()
	s.users.EXPECT().GetByEmail(s.ctx, nil, "ada@example.com").Return(s.learner, nil)
	s.communities.EXPECT().Get(s.ctx, nil, "community-1").Return(community, nil)
	s.communities.EXPECT().ListActiveMembers(s.ctx, nil, "community-1").Return(members, nil)
	s.sessions.EXPECT().GetForUpdate(s.ctx, nil, "session-1").Return(s.session, nil)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-learner").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().GetByPair(s.ctx, nil, "session-1", "user-peer").
		Return(nil, repository.ErrNotFound)
	s.bookings.EXPECT().CountByStatus(s.ctx, nil, "session-1", models.BookingStatusConfirmed).
		Return(0, nil)

	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-instructor").
		Return(&models.Account{UserID: "user-instructor", Balance: 0}, nil)
	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-learner").
		Return(&models.Account{UserID: "user-learner", Balance: 100}, nil)
	s.ledger.EXPECT().GetAccountForUpdate(s.ctx, nil, "user-peer").
		Return(&models.Account{UserID: "user-peer", Balance: 20}, nil)

	_, err := s.svc.BookGroup(s.ctx, "session-1", "community-1", "ada@example.com")

	var funds *InsufficientFundsError
	s.Require().ErrorAs(err, &funds)
	s.Equal("bob@example.com", funds.LearnerEmail)
	s.Equal(int64(30), funds.Deficit)
}
