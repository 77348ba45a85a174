package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/queue"
	"github.com/kirinyoku/eventix/internal/repository"
	"github.com/kirinyoku/eventix/internal/uow"
)

// TxRunner serializes the check-then-act sequence. The postgres
// implementation wraps everything in one transaction and runs the after
// hooks only once the commit released the event row lock.
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error) error
}

// EventLocker reads the event under an exclusive per-event lock.
type EventLocker interface {
	ForUpdate(ctx context.Context, tx repository.Tx, id int64) (*domain.Event, error)
	ActiveBookings(ctx context.Context, tx repository.Tx, eventID int64) (int64, error)
}

type BookingStore interface {
	Exists(ctx context.Context, tx repository.Tx, userID, eventID int64) (bool, error)
	Insert(ctx context.Context, tx repository.Tx, userID, eventID int64) (*domain.Booking, error)
	Delete(ctx context.Context, tx repository.Tx, userID, eventID int64) error
}

type Notifier interface {
	Dispatch(ctx context.Context, lane queue.Lane, job queue.NotificationJob) error
}

type Cache interface {
	InvalidateEvent(ctx context.Context, eventID int64) error
}

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Duration, error)
}

type Service struct {
	txr      TxRunner
	events   EventLocker
	bookings BookingStore
	notifier Notifier
	cache    Cache
	limiter  Limiter
	logger   *slog.Logger
}

func New(
	txr TxRunner,
	events EventLocker,
	bookings BookingStore,
	notifier Notifier,
	cache Cache,
	limiter Limiter,
	logger *slog.Logger,
) *Service {
	return &Service{
		txr:      txr,
		events:   events,
		bookings: bookings,
		notifier: notifier,
		cache:    cache,
		limiter:  limiter,
		logger:   logger,
	}
}

// Reserve books a seat for the user.
//
// The whole decision sequence (status check, seat count, duplicate check,
// insert) runs under the event row lock, so two concurrent attempts at the
// last seat serialize and exactly one wins. The confirmation
// notification is enqueued only after the transaction commits; a failed
// enqueue is logged and never fails the booking.
//
// Returns:
//   - *domain.Booking: the created booking.
//   - string: the confirmation message shown to the user.
//   - error: booking.ErrEventNotFound, booking.ErrEventNotOpen,
//     booking.ErrNoFreeSeats, booking.ErrAlreadyBooked or
//     booking.ErrRateLimited.
func (s *Service) Reserve(ctx context.Context, userID, eventID int64, rlKey string) (*domain.Booking, string, error) {
	const op = "service.booking.Reserve"

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, "", fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, "", fmt.Errorf("%s: retry in %s: %w", op, retry, ErrRateLimited)
		}
	}

	var (
		b       *domain.Booking
		message string
	)

	err := s.txr.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		ev, err := s.events.ForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if !ev.Bookable() {
			return fmt.Errorf("%s:%w", op, ErrEventNotOpen)
		}

		active, err := s.events.ActiveBookings(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if domain.FreeSeats(ev.Seats, active) <= 0 {
			return fmt.Errorf("%s:%w", op, ErrNoFreeSeats)
		}

		exists, err := s.bookings.Exists(ctx, tx, userID, eventID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if exists {
			return fmt.Errorf("%s:%w", op, ErrAlreadyBooked)
		}

		created, err := s.bookings.Insert(ctx, tx, userID, eventID)
		if err != nil {
			// unique constraint caught a race the lock should have excluded
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrAlreadyBooked)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		b = created
		message = domain.BookingMessage(ev)

		after(func(ctx context.Context) {
			s.dispatch(ctx, queue.LaneDefault, queue.NotificationJob{
				UserID:  userID,
				EventID: &ev.ID,
				Type:    domain.NotifyBooking,
				Message: domain.BookingMessage(ev),
				Nonce:   uuid.NewString(),
			})
			if s.cache != nil {
				_ = s.cache.InvalidateEvent(ctx, eventID)
			}
		})

		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return b, message, nil
}

// Cancel removes the user's booking. Holds the same event row lock as
// Reserve so seat counts stay consistent with concurrent reservations.
//
// Returns:
//   - error: booking.ErrEventNotFound or booking.ErrNotRegistered.
func (s *Service) Cancel(ctx context.Context, userID, eventID int64) error {
	const op = "service.booking.Cancel"

	return s.txr.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		ev, err := s.events.ForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.bookings.Delete(ctx, tx, userID, eventID); err != nil {
			if errors.Is(err, repository.ErrNotBooked) {
				return fmt.Errorf("%s:%w", op, ErrNotRegistered)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			s.dispatch(ctx, queue.LaneDefault, queue.NotificationJob{
				UserID:  userID,
				EventID: &ev.ID,
				Type:    domain.NotifyCancel,
				Message: domain.CancelMessage(ev),
				Nonce:   uuid.NewString(),
			})
			if s.cache != nil {
				_ = s.cache.InvalidateEvent(ctx, eventID)
			}
		})

		return nil
	})
}

// dispatch is fire-and-forget: delivery failures must never surface to the
// request that triggered them.
func (s *Service) dispatch(ctx context.Context, lane queue.Lane, job queue.NotificationJob) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, lane, job); err != nil {
		s.logger.Error("notification enqueue failed",
			"error", err, "type", job.Type, "user_id", job.UserID)
	}
}
