// Package sweep runs the periodic maintenance jobs: marking events that
// finished their grace period and fanning out reminders for events that
// start soon.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

type Config struct {
	StatusInterval   time.Duration
	ReminderInterval time.Duration
}

type EventSweeper interface {
	FinishStale(ctx context.Context) (int64, error)
}

type Reminder interface {
	Remind(ctx context.Context) (int, error)
}

type Sweeper struct {
	cfg      Config
	events   EventSweeper
	reminder Reminder
	logger   *slog.Logger
}

func New(cfg Config, events EventSweeper, reminder Reminder, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		events:   events,
		reminder: reminder,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, then shuts the scheduler down.
func (s *Sweeper) Run(ctx context.Context) error {
	const op = "sweep.Run"

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.StatusInterval),
		gocron.NewTask(func() {
			if _, err := s.events.FinishStale(ctx); err != nil {
				s.logger.Error("status sweep failed", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.ReminderInterval),
		gocron.NewTask(func() {
			n, err := s.reminder.Remind(ctx)
			if err != nil {
				s.logger.Error("reminder sweep failed", "error", err)
				return
			}
			if n > 0 {
				s.logger.Info("reminders enqueued", "count", n)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	scheduler.Start()
	s.logger.Info("sweep scheduler started",
		"status_interval", s.cfg.StatusInterval,
		"reminder_interval", s.cfg.ReminderInterval,
	)

	<-ctx.Done()
	return scheduler.Shutdown()
}
