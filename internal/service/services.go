package service

import (
	"log/slog"

	"github.com/kirinyoku/eventix/internal/queue"
	postgres "github.com/kirinyoku/eventix/internal/repository/postgres"
	redis "github.com/kirinyoku/eventix/internal/repository/redis"
	"github.com/kirinyoku/eventix/internal/service/booking"
	"github.com/kirinyoku/eventix/internal/service/events"
	"github.com/kirinyoku/eventix/internal/service/notification"
	"github.com/kirinyoku/eventix/internal/service/rating"
	"github.com/kirinyoku/eventix/internal/uow"
)

type Services struct {
	Booking      *booking.Service
	Events       *events.Service
	Rating       *rating.Service
	Notification *notification.Service
}

type Config struct {
	Events events.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	limiter *redis.SlidingWindowLimiter,
	idem *redis.IdempotencyStore,
	pub *queue.Publisher,
	cfg Config,
	logger *slog.Logger,
) *Services {
	notif := notification.New(pub, store.Notifications(), store.Events(), store.Bookings(), idem, logger)

	return &Services{
		Booking: booking.New(
			uow.NewUoW(store),
			store.Events(),
			store.Bookings(),
			notif,
			cache,
			limiter,
			logger,
		),
		Events:       events.New(store.Events(), store.Tags(), cache, cfg.Events, logger),
		Rating:       rating.New(store.Events(), store.Bookings(), store.Ratings(), cache),
		Notification: notif,
	}
}
