package domain

import "time"

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCancelled EventStatus = "cancelled"
	EventFinished  EventStatus = "finished"
)

// Display returns the human-readable label for the status.
func (s EventStatus) Display() string {
	switch s {
	case EventUpcoming:
		return "Upcoming"
	case EventCancelled:
		return "Cancelled"
	case EventFinished:
		return "Finished"
	}
	return string(s)
}

type NotificationType string

const (
	NotifyBooking  NotificationType = "booking"
	NotifyCancel   NotificationType = "cancel"
	NotifyReminder NotificationType = "reminder"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Event struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartTime   time.Time   `json:"start_time"`
	Location    string      `json:"location"`
	Seats       int         `json:"seats"`
	Status      EventStatus `json:"status"`
	OrganizerID int64       `json:"organizer_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EventSummary is an Event plus the fields derived at read time.
// free_seats and avg_rating are computed, never stored.
type EventSummary struct {
	Event
	Organizer  User    `json:"organizer"`
	Tags       []Tag   `json:"tags"`
	FreeSeats  int64   `json:"free_seats"`
	AvgRating  float64 `json:"avg_rating"`
	StatusText string  `json:"status_display"`
}

type Booking struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	EventID  int64     `json:"event_id"`
	BookedAt time.Time `json:"booked_at"`
}

type Rating struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	EventID int64     `json:"event_id"`
	Score   int       `json:"score"`
	RatedAt time.Time `json:"rated_at"`
}

// Notification is an append-only record of a delivered message.
// EventID is nil when the referenced event has been deleted.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	EventID   *int64           `json:"event_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// EventPatch carries organizer edits. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	Location    *string
	Seats       *int
	Status      *EventStatus
}

// EventFilter carries the list-endpoint filters. Zero values mean "not set".
type EventFilter struct {
	Location     string
	Status       string
	StartDate    *time.Time // matches the calendar date of start_time
	Tag          string     // substring match on tag name
	OnlyFree     bool       // only events with free seats left
	AvgRatingGTE *float64
	AvgRatingLTE *float64
	Search       string // free text across title/description/tag names
	Limit        int
	Offset       int
}
