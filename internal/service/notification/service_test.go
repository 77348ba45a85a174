package notification

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/queue"
	"github.com/kirinyoku/eventix/internal/repository"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, lane queue.Lane, job queue.NotificationJob) error {
	args := m.Called(ctx, lane, job)
	return args.Error(0)
}

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	args := m.Called(ctx, n)
	out, _ := args.Get(0).(*domain.Notification)
	return out, args.Error(1)
}

func (m *MockNotificationStore) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	out, _ := args.Get(0).([]domain.Notification)
	return out, args.Error(1)
}

type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) Get(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(*domain.Event)
	return ev, args.Error(1)
}

func (m *MockEventSource) ListStartingWithin(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, from, to)
	out, _ := args.Get(0).([]domain.Event)
	return out, args.Error(1)
}

type MockBookingSource struct {
	mock.Mock
}

func (m *MockBookingSource) ListUserIDs(ctx context.Context, eventID int64) ([]int64, error) {
	args := m.Called(ctx, eventID)
	out, _ := args.Get(0).([]int64)
	return out, args.Error(1)
}

// memIdem is an in-memory nonce set with the same first-claim-wins contract
// as the Redis store.
type memIdem struct {
	mu     sync.Mutex
	seen   map[string]bool
	failOn string
}

func newMemIdem() *memIdem {
	return &memIdem{seen: make(map[string]bool)}
}

func (s *memIdem) Claim(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[nonce] {
		return false, nil
	}
	s.seen[nonce] = true
	return true, nil
}

func (s *memIdem) Release(ctx context.Context, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, nonce)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestHandleJobDedupesOnNonce(t *testing.T) {
	store := new(MockNotificationStore)
	events := new(MockEventSource)
	idem := newMemIdem()

	eventID := int64(1)
	events.On("Get", mock.Anything, eventID).Return(&domain.Event{ID: 1}, nil)
	store.On("Insert", mock.Anything, mock.Anything).
		Return(&domain.Notification{ID: 1}, nil).Once()

	svc := New(nil, store, events, new(MockBookingSource), idem, discardLogger())

	job := queue.NotificationJob{
		UserID:  42,
		EventID: &eventID,
		Type:    domain.NotifyBooking,
		Message: "booked",
		Nonce:   "nonce-1",
	}

	// redelivery of the same job inserts exactly once
	require.NoError(t, svc.HandleJob(context.Background(), job))
	require.NoError(t, svc.HandleJob(context.Background(), job))

	store.AssertNumberOfCalls(t, "Insert", 1)
}

func TestHandleJobReleasesNonceOnFailure(t *testing.T) {
	store := new(MockNotificationStore)
	events := new(MockEventSource)
	idem := newMemIdem()

	eventID := int64(1)
	events.On("Get", mock.Anything, eventID).Return(&domain.Event{ID: 1}, nil)
	store.On("Insert", mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded).Once()
	store.On("Insert", mock.Anything, mock.Anything).
		Return(&domain.Notification{ID: 1}, nil).Once()

	svc := New(nil, store, events, new(MockBookingSource), idem, discardLogger())

	job := queue.NotificationJob{
		UserID:  42,
		EventID: &eventID,
		Type:    domain.NotifyBooking,
		Nonce:   "nonce-1",
	}

	// first attempt fails, nonce is released so the redelivery can land
	require.Error(t, svc.HandleJob(context.Background(), job))
	require.NoError(t, svc.HandleJob(context.Background(), job))

	store.AssertNumberOfCalls(t, "Insert", 2)
}

func TestHandleJobDeletedEventKeepsNotification(t *testing.T) {
	store := new(MockNotificationStore)
	events := new(MockEventSource)

	eventID := int64(9)
	events.On("Get", mock.Anything, eventID).Return(nil, repository.ErrNotFound)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.EventID == nil && n.Message == "booked"
	})).Return(&domain.Notification{ID: 1}, nil)

	svc := New(nil, store, events, new(MockBookingSource), newMemIdem(), discardLogger())

	err := svc.HandleJob(context.Background(), queue.NotificationJob{
		UserID:  42,
		EventID: &eventID,
		Type:    domain.NotifyBooking,
		Message: "booked",
		Nonce:   "nonce-9",
	})
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestRemindFansOutPerBooking(t *testing.T) {
	pub := new(MockPublisher)
	events := new(MockEventSource)
	bookings := new(MockBookingSource)

	start := testNow.Add(30 * time.Minute)
	events.On("ListStartingWithin", mock.Anything, testNow, testNow.Add(domain.ReminderWindow)).
		Return([]domain.Event{
			{ID: 1, Title: "Conf", Status: domain.EventUpcoming, StartTime: start},
		}, nil)
	bookings.On("ListUserIDs", mock.Anything, int64(1)).Return([]int64{10, 11, 12}, nil)

	pub.On("Publish", mock.Anything, queue.LaneLow, mock.MatchedBy(func(j queue.NotificationJob) bool {
		return j.Type == domain.NotifyReminder &&
			j.Nonce == domain.ReminderNonce(1, j.UserID, start)
	})).Return(nil).Times(3)

	svc := New(pub, new(MockNotificationStore), events, bookings, newMemIdem(), discardLogger())
	svc.now = func() time.Time { return testNow }

	n, err := svc.Remind(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	pub.AssertExpectations(t)
}

func TestRemindNonceStableAcrossSweeps(t *testing.T) {
	pub := new(MockPublisher)
	events := new(MockEventSource)
	bookings := new(MockBookingSource)

	start := testNow.Add(45 * time.Minute)
	events.On("ListStartingWithin", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{
			{ID: 1, Title: "Conf", Status: domain.EventUpcoming, StartTime: start},
		}, nil)
	bookings.On("ListUserIDs", mock.Anything, int64(1)).Return([]int64{10}, nil)

	var nonces []string
	pub.On("Publish", mock.Anything, queue.LaneLow, mock.Anything).
		Run(func(args mock.Arguments) {
			nonces = append(nonces, args.Get(2).(queue.NotificationJob).Nonce)
		}).Return(nil)

	svc := New(pub, new(MockNotificationStore), events, bookings, newMemIdem(), discardLogger())
	svc.now = func() time.Time { return testNow }

	// two sweep runs while the event stays inside the window produce the
	// same nonce, so the consumer-side claim collapses them to one row
	_, err := svc.Remind(context.Background())
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow.Add(10 * time.Minute) }
	_, err = svc.Remind(context.Background())
	require.NoError(t, err)

	require.Len(t, nonces, 2)
	require.Equal(t, nonces[0], nonces[1])
}

func TestListForUserClampsLimit(t *testing.T) {
	store := new(MockNotificationStore)
	store.On("ListForUser", mock.Anything, int64(42), 50, 0).
		Return([]domain.Notification{}, nil).Times(2)

	svc := New(nil, store, new(MockEventSource), new(MockBookingSource), nil, discardLogger())

	_, err := svc.ListForUser(context.Background(), 42, 0, 0)
	require.NoError(t, err)

	_, err = svc.ListForUser(context.Background(), 42, 500, 0)
	require.NoError(t, err)

	store.AssertExpectations(t)
}
