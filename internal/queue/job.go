// Package queue moves notification jobs over RabbitMQ. Jobs are published
// to one of three durable lanes and consumed by a background worker that
// persists the notification record.
package queue

import (
	"github.com/kirinyoku/eventix/internal/domain"
)

// Lane names a priority queue. Booking/cancel confirmations ride the
// default lane, reminders the low one; high is reserved for operator pushes.
type Lane string

const (
	LaneHigh    Lane = "eventix.notify.high"
	LaneDefault Lane = "eventix.notify.default"
	LaneLow     Lane = "eventix.notify.low"
)

func Lanes() []Lane {
	return []Lane{LaneHigh, LaneDefault, LaneLow}
}

// NotificationJob is the wire payload of a queued notification. Nonce keys
// the job for at-least-once delivery without duplicate rows: the consumer
// claims it in the idempotency store before inserting.
type NotificationJob struct {
	UserID  int64                   `json:"user_id"`
	EventID *int64                  `json:"event_id,omitempty"`
	Type    domain.NotificationType `json:"type"`
	Message string                  `json:"message"`
	Nonce   string                  `json:"nonce"`
}
