// Package notification dispatches and records user notifications. Jobs are
// enqueued fire-and-forget, consumed asynchronously, deduplicated on their
// nonce and persisted as immutable rows.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/queue"
	"github.com/kirinyoku/eventix/internal/repository"
)

type Publisher interface {
	Publish(ctx context.Context, lane queue.Lane, job queue.NotificationJob) error
}

type NotificationStore interface {
	Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
}

type EventSource interface {
	Get(ctx context.Context, id int64) (*domain.Event, error)
	ListStartingWithin(ctx context.Context, from, to time.Time) ([]domain.Event, error)
}

type BookingSource interface {
	ListUserIDs(ctx context.Context, eventID int64) ([]int64, error)
}

// Idem claims job nonces so at-least-once delivery cannot produce duplicate
// notification rows.
type Idem interface {
	Claim(ctx context.Context, nonce string) (bool, error)
	Release(ctx context.Context, nonce string) error
}

type Service struct {
	pub      Publisher
	store    NotificationStore
	events   EventSource
	bookings BookingSource
	idem     Idem
	logger   *slog.Logger
	now      func() time.Time
}

func New(
	pub Publisher,
	store NotificationStore,
	events EventSource,
	bookings BookingSource,
	idem Idem,
	logger *slog.Logger,
) *Service {
	return &Service{
		pub:      pub,
		store:    store,
		events:   events,
		bookings: bookings,
		idem:     idem,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch submits the job to its lane. Callers treat failures as
// non-fatal; the triggering request has already succeeded.
func (s *Service) Dispatch(ctx context.Context, lane queue.Lane, job queue.NotificationJob) error {
	const op = "service.notification.Dispatch"

	if err := s.pub.Publish(ctx, lane, job); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// HandleJob is the queue consumer callback. It claims the job's nonce,
// verifies the referenced event still exists (deleted events leave the
// notification with a nil event reference) and appends the record.
func (s *Service) HandleJob(ctx context.Context, job queue.NotificationJob) error {
	const op = "service.notification.HandleJob"

	if job.Nonce != "" && s.idem != nil {
		first, err := s.idem.Claim(ctx, job.Nonce)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
		if !first {
			s.logger.Debug("duplicate notification job skipped", "nonce", job.Nonce)
			return nil
		}
	}

	eventID := job.EventID
	if eventID != nil {
		if _, err := s.events.Get(ctx, *eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				eventID = nil
			} else {
				s.release(ctx, job.Nonce)
				return fmt.Errorf("%s:%w", op, err)
			}
		}
	}

	if _, err := s.store.Insert(ctx, &domain.Notification{
		UserID:  job.UserID,
		EventID: eventID,
		Type:    job.Type,
		Message: job.Message,
	}); err != nil {
		s.release(ctx, job.Nonce)
		return fmt.Errorf("%s:%w", op, err)
	}

	s.logger.Info("notification delivered", "user_id", job.UserID, "type", job.Type)

	return nil
}

// Remind is the reminder sweep: every active booking on an upcoming event
// starting within the next hour gets one reminder job on the low lane. The
// nonce is derived from (event, user, start time), so a user still inside
// the window on the next sweep run is not notified twice.
func (s *Service) Remind(ctx context.Context) (int, error) {
	const op = "service.notification.Remind"

	now := s.now()
	events, err := s.events.ListStartingWithin(ctx, now, now.Add(domain.ReminderWindow))
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	var submitted int
	for i := range events {
		ev := &events[i]

		userIDs, err := s.bookings.ListUserIDs(ctx, ev.ID)
		if err != nil {
			s.logger.Error("reminder sweep: listing bookings failed", "error", err, "event_id", ev.ID)
			continue
		}

		for _, uid := range userIDs {
			job := queue.NotificationJob{
				UserID:  uid,
				EventID: &ev.ID,
				Type:    domain.NotifyReminder,
				Message: domain.ReminderMessage(ev),
				Nonce:   domain.ReminderNonce(ev.ID, uid, ev.StartTime),
			}
			if err := s.pub.Publish(ctx, queue.LaneLow, job); err != nil {
				s.logger.Error("reminder enqueue failed", "error", err, "event_id", ev.ID, "user_id", uid)
				continue
			}
			submitted++
		}
	}

	return submitted, nil
}

// ListForUser returns the user's notification log, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	const op = "service.notification.ListForUser"

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	out, err := s.store.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (s *Service) release(ctx context.Context, nonce string) {
	if nonce == "" || s.idem == nil {
		return
	}
	if err := s.idem.Release(ctx, nonce); err != nil {
		s.logger.Error("nonce release failed", "error", err, "nonce", nonce)
	}
}
