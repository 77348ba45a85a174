package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/repository"
)

type EventGetter interface {
	Get(ctx context.Context, id int64) (*domain.Event, error)
}

type BookingChecker interface {
	Exists(ctx context.Context, tx repository.Tx, userID, eventID int64) (bool, error)
}

type RatingStore interface {
	Upsert(ctx context.Context, userID, eventID int64, score int) (*domain.Rating, error)
}

type Cache interface {
	InvalidateEvent(ctx context.Context, eventID int64) error
}

type Service struct {
	events   EventGetter
	bookings BookingChecker
	ratings  RatingStore
	cache    Cache
	now      func() time.Time
}

func New(events EventGetter, bookings BookingChecker, ratings RatingStore, cache Cache) *Service {
	return &Service{
		events:   events,
		bookings: bookings,
		ratings:  ratings,
		cache:    cache,
		now:      time.Now,
	}
}

// Rate upserts the user's score for an attended event.
//
// Score bounds are 1..5 inclusive and checked here, before storage, so the
// CHECK constraint never fires on well-behaved callers. Rating is allowed
// only once the event has started and only for users holding a booking.
//
// Returns:
//   - *domain.Rating: the stored rating, overwritten on repeat calls.
//   - error: rating.ErrEventNotFound, rating.ErrNotStarted,
//     rating.ErrNotAttendee or rating.ErrInvalidScore.
func (s *Service) Rate(ctx context.Context, userID, eventID int64, score int) (*domain.Rating, error) {
	const op = "service.rating.Rate"

	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !ev.Started(s.now()) {
		return nil, fmt.Errorf("%s:%w", op, ErrNotStarted)
	}

	attended, err := s.bookings.Exists(ctx, nil, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !attended {
		return nil, fmt.Errorf("%s:%w", op, ErrNotAttendee)
	}

	if !domain.ValidScore(score) {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidScore)
	}

	rt, err := s.ratings.Upsert(ctx, userID, eventID, score)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}

	return rt, nil
}
