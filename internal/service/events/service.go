package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/eventix/internal/domain"
	redisx "github.com/kirinyoku/eventix/internal/redis"
	"github.com/kirinyoku/eventix/internal/repository"
	redisrepo "github.com/kirinyoku/eventix/internal/repository/redis"
)

type EventStore interface {
	Create(ctx context.Context, e *domain.Event, tagIDs []int64) (*domain.Event, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	Summary(ctx context.Context, id int64) (*domain.EventSummary, error)
	List(ctx context.Context, f domain.EventFilter) ([]domain.EventSummary, error)
	ListBookedUpcoming(ctx context.Context, userID int64, now time.Time) ([]domain.Event, error)
	Update(ctx context.Context, e *domain.Event, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	FinishStale(ctx context.Context, now time.Time, grace time.Duration) (int64, error)
}

type TagStore interface {
	Create(ctx context.Context, name string) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}

type Config struct {
	SummaryTTL time.Duration
}

type Service struct {
	store  EventStore
	tags   TagStore
	cache  *redisrepo.Cache
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func New(store EventStore, tags TagStore, cache *redisrepo.Cache, cfg Config, logger *slog.Logger) *Service {
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 30 * time.Second
	}

	return &Service{
		store:  store,
		tags:   tags,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a new event owned by the calling user. Status always starts
// as upcoming.
func (s *Service) Create(ctx context.Context, organizerID int64, e domain.Event, tagIDs []int64) (*domain.Event, error) {
	const op = "service.events.Create"

	e.OrganizerID = organizerID
	e.Status = domain.EventUpcoming

	created, err := s.store.Create(ctx, &e, tagIDs)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return created, nil
}

// Get returns the event with derived free_seats/avg_rating, served through
// a short-TTL cache.
func (s *Service) Get(ctx context.Context, id int64) (*domain.EventSummary, error) {
	const op = "service.events.Get"

	load := func(ctx context.Context) (domain.EventSummary, error) {
		sum, err := s.store.Summary(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.EventSummary{}, ErrEventNotFound
			}
			return domain.EventSummary{}, err
		}
		return *sum, nil
	}

	if s.cache == nil {
		sum, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return &sum, nil
	}

	sum, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyEventSummary(id), s.cfg.SummaryTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &sum, nil
}

func (s *Service) List(ctx context.Context, f domain.EventFilter) ([]domain.EventSummary, error) {
	const op = "service.events.List"

	out, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// MyUpcoming returns the caller's booked events that have not started yet.
func (s *Service) MyUpcoming(ctx context.Context, userID int64) ([]domain.Event, error) {
	const op = "service.events.MyUpcoming"

	out, err := s.store.ListBookedUpcoming(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Update applies organizer edits. Only the organizer may mutate the event,
// and only while it is still upcoming: finished and cancelled are terminal
// states. The one status transition an organizer can request is upcoming to
// cancelled.
func (s *Service) Update(ctx context.Context, callerID, eventID int64, p domain.EventPatch, tagIDs []int64) (*domain.Event, error) {
	const op = "service.events.Update"

	current, err := s.store.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if current.OrganizerID != callerID {
		return nil, fmt.Errorf("%s:%w", op, ErrNotOrganizer)
	}

	if current.Status != domain.EventUpcoming {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotEditable)
	}

	e := *current
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Seats != nil {
		e.Seats = *p.Seats
	}
	if p.Status != nil {
		switch *p.Status {
		case domain.EventUpcoming:
			// no-op
		case domain.EventCancelled:
			e.Status = domain.EventCancelled
		default:
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
		}
	}

	if err := s.store.Update(ctx, &e, tagIDs); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, e.ID)
	}

	return &e, nil
}

// Delete removes the event. Allowed only for the organizer and only within
// the one-hour grace window after creation.
func (s *Service) Delete(ctx context.Context, callerID, eventID int64) error {
	const op = "service.events.Delete"

	current, err := s.store.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if current.OrganizerID != callerID {
		return fmt.Errorf("%s:%w", op, ErrNotOrganizer)
	}

	if !domain.WithinDeletionGrace(current.CreatedAt, s.now()) {
		return fmt.Errorf("%s:%w", op, ErrDeletionWindow)
	}

	if err := s.store.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}

	return nil
}

// FinishStale is the status sweep: upcoming events that started more than
// the grace interval ago become finished. Idempotent and safe to run
// concurrently: rows already finished no longer match.
func (s *Service) FinishStale(ctx context.Context) (int64, error) {
	const op = "service.events.FinishStale"

	n, err := s.store.FinishStale(ctx, s.now(), domain.FinishGrace)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	if n > 0 {
		s.logger.Info("status sweep finished events", "count", n)
	}

	return n, nil
}

func (s *Service) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	const op = "service.events.CreateTag"

	t, err := s.tags.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s:%w", op, ErrTagConflict)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}

func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	const op = "service.events.ListTags"

	out, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
