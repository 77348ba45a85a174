package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/repository"
)

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Create(ctx context.Context, e *domain.Event, tagIDs []int64) (*domain.Event, error) {
	args := m.Called(ctx, e, tagIDs)
	ev, _ := args.Get(0).(*domain.Event)
	return ev, args.Error(1)
}

func (m *MockEventStore) Get(ctx context.Context, id int64) (*domain.Event, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(*domain.Event)
	return ev, args.Error(1)
}

func (m *MockEventStore) Summary(ctx context.Context, id int64) (*domain.EventSummary, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.EventSummary)
	return s, args.Error(1)
}

func (m *MockEventStore) List(ctx context.Context, f domain.EventFilter) ([]domain.EventSummary, error) {
	args := m.Called(ctx, f)
	out, _ := args.Get(0).([]domain.EventSummary)
	return out, args.Error(1)
}

func (m *MockEventStore) ListBookedUpcoming(ctx context.Context, userID int64, now time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, userID, now)
	out, _ := args.Get(0).([]domain.Event)
	return out, args.Error(1)
}

func (m *MockEventStore) Update(ctx context.Context, e *domain.Event, tagIDs []int64) error {
	args := m.Called(ctx, e, tagIDs)
	return args.Error(0)
}

func (m *MockEventStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventStore) FinishStale(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	args := m.Called(ctx, now, grace)
	return args.Get(0).(int64), args.Error(1)
}

type MockTagStore struct {
	mock.Mock
}

func (m *MockTagStore) Create(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	t, _ := args.Get(0).(*domain.Tag)
	return t, args.Error(1)
}

func (m *MockTagStore) List(ctx context.Context) ([]domain.Tag, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Tag)
	return out, args.Error(1)
}

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store *MockEventStore, tags *MockTagStore) *Service {
	svc := New(store, tags, nil, Config{}, discardLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateForcesOrganizerAndStatus(t *testing.T) {
	store := new(MockEventStore)

	store.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
		return e.OrganizerID == 7 && e.Status == domain.EventUpcoming
	}), []int64{1, 2}).Return(&domain.Event{ID: 10, OrganizerID: 7, Status: domain.EventUpcoming}, nil)

	svc := newTestService(store, new(MockTagStore))

	created, err := svc.Create(context.Background(), 7, domain.Event{
		Title: "Conf", Status: domain.EventFinished, OrganizerID: 999,
	}, []int64{1, 2})
	require.NoError(t, err)
	require.EqualValues(t, 10, created.ID)

	store.AssertExpectations(t)
}

func TestUpdateRequiresOrganizer(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{ID: 10, OrganizerID: 7}, nil)

	svc := newTestService(store, new(MockTagStore))

	_, err := svc.Update(context.Background(), 8, 10, domain.EventPatch{}, nil)
	require.ErrorIs(t, err, ErrNotOrganizer)
}

func TestUpdateTerminalStatesStayTerminal(t *testing.T) {
	for _, status := range []domain.EventStatus{domain.EventCancelled, domain.EventFinished} {
		t.Run(string(status), func(t *testing.T) {
			store := new(MockEventStore)
			store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
				ID:          10,
				OrganizerID: 7,
				Status:      status,
			}, nil)

			svc := newTestService(store, new(MockTagStore))

			title := "New title"
			_, err := svc.Update(context.Background(), 7, 10, domain.EventPatch{Title: &title}, nil)
			require.ErrorIs(t, err, ErrEventNotEditable)
			store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateOrganizerCancels(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
		ID:          10,
		Title:       "Conf",
		OrganizerID: 7,
		Status:      domain.EventUpcoming,
	}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
		return e.Status == domain.EventCancelled && e.Title == "Conf"
	}), mock.Anything).Return(nil)

	svc := newTestService(store, new(MockTagStore))

	st := domain.EventCancelled
	updated, err := svc.Update(context.Background(), 7, 10, domain.EventPatch{Status: &st}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.EventCancelled, updated.Status)

	store.AssertExpectations(t)
}

func TestUpdatePartialPreservesUnsetFields(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
		ID:          10,
		Title:       "Old title",
		Location:    "Kyiv",
		Seats:       50,
		OrganizerID: 7,
		Status:      domain.EventUpcoming,
	}, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
		return e.Title == "New title" &&
			e.Location == "Kyiv" &&
			e.Seats == 50 &&
			e.Status == domain.EventUpcoming
	}), mock.Anything).Return(nil)

	svc := newTestService(store, new(MockTagStore))

	title := "New title"
	_, err := svc.Update(context.Background(), 7, 10, domain.EventPatch{Title: &title}, nil)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestUpdateRejectsFinishedTarget(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
		ID:          10,
		OrganizerID: 7,
		Status:      domain.EventUpcoming,
	}, nil)

	svc := newTestService(store, new(MockTagStore))

	// finished is reached only through the status sweep, never by request
	st := domain.EventFinished
	_, err := svc.Update(context.Background(), 7, 10, domain.EventPatch{Status: &st}, nil)
	require.ErrorIs(t, err, ErrInvalidStatus)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteWithinGrace(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
		ID:          10,
		OrganizerID: 7,
		CreatedAt:   testNow.Add(-5 * time.Minute),
	}, nil)
	store.On("Delete", mock.Anything, int64(10)).Return(nil)

	svc := newTestService(store, new(MockTagStore))

	require.NoError(t, svc.Delete(context.Background(), 7, 10))
	store.AssertExpectations(t)
}

func TestDeleteAfterGraceRejected(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
		ID:          10,
		OrganizerID: 7,
		CreatedAt:   testNow.Add(-2 * time.Hour),
	}, nil)

	svc := newTestService(store, new(MockTagStore))

	err := svc.Delete(context.Background(), 7, 10)
	require.ErrorIs(t, err, ErrDeletionWindow)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteRequiresOrganizer(t *testing.T) {
	store := new(MockEventStore)
	store.On("Get", mock.Anything, int64(10)).Return(&domain.Event{
		ID:          10,
		OrganizerID: 7,
		CreatedAt:   testNow,
	}, nil)

	svc := newTestService(store, new(MockTagStore))

	err := svc.Delete(context.Background(), 8, 10)
	require.ErrorIs(t, err, ErrNotOrganizer)
}

func TestFinishStalePassesGrace(t *testing.T) {
	store := new(MockEventStore)
	store.On("FinishStale", mock.Anything, testNow, domain.FinishGrace).Return(int64(3), nil)

	svc := newTestService(store, new(MockTagStore))

	n, err := svc.FinishStale(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	// a second run with nothing left to sweep is a no-op, not an error
	store.ExpectedCalls = nil
	store.On("FinishStale", mock.Anything, testNow, domain.FinishGrace).Return(int64(0), nil)

	n, err = svc.FinishStale(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCreateTagConflict(t *testing.T) {
	tags := new(MockTagStore)
	tags.On("Create", mock.Anything, "music").Return(nil, repository.ErrConflict)

	svc := newTestService(new(MockEventStore), tags)

	_, err := svc.CreateTag(context.Background(), "music")
	require.ErrorIs(t, err, ErrTagConflict)
}
