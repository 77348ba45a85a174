package domain

import (
	"fmt"
	"time"
)

const (
	// DeletionGrace is the window after creation during which the organizer
	// may delete an event.
	DeletionGrace = time.Hour

	// FinishGrace is how long after start_time an upcoming event waits
	// before the status sweep marks it finished.
	FinishGrace = 2 * time.Hour

	// ReminderWindow is how far ahead the reminder sweep looks for events
	// whose attendees should be notified.
	ReminderWindow = time.Hour
)

// FreeSeats derives the number of seats still available.
func FreeSeats(seats int, activeBookings int64) int64 {
	return int64(seats) - activeBookings
}

// Bookable reports whether an event can accept a new booking right now,
// seat availability aside.
func (e *Event) Bookable() bool {
	return e.Status == EventUpcoming
}

// Started reports whether the event's start time has already passed.
func (e *Event) Started(now time.Time) bool {
	return !e.StartTime.After(now)
}

// FinishDue reports whether the status sweep should move the event to
// finished: still upcoming and started more than FinishGrace ago.
func (e *Event) FinishDue(now time.Time) bool {
	return e.Status == EventUpcoming && !e.StartTime.After(now.Add(-FinishGrace))
}

// WithinDeletionGrace reports whether the event can still be deleted.
func WithinDeletionGrace(createdAt, now time.Time) bool {
	return now.Sub(createdAt) <= DeletionGrace
}

// ValidScore reports whether a rating score is inside the accepted 1..5 range.
func ValidScore(score int) bool {
	return score >= 1 && score <= 5
}

// InReminderWindow reports whether an upcoming event starts within
// (now, now+ReminderWindow].
func (e *Event) InReminderWindow(now time.Time) bool {
	if e.Status != EventUpcoming {
		return false
	}
	return e.StartTime.After(now) && !e.StartTime.After(now.Add(ReminderWindow))
}

// ReminderNonce keys a reminder job so that re-sweeps of the same event
// occurrence dedupe at the consumer instead of spamming the user.
func ReminderNonce(eventID, userID int64, start time.Time) string {
	return fmt.Sprintf("reminder:%d:%d:%d", eventID, userID, start.Unix())
}

// BookingMessage is the confirmation text returned to the user and carried
// in the booking notification.
func BookingMessage(e *Event) string {
	return fmt.Sprintf(
		"You have booked a seat for %q. Location: %s, starts at %s",
		e.Title, e.Location, e.StartTime.Format("02.01.2006 15:04"),
	)
}

// CancelMessage is the text carried in the cancellation notification.
func CancelMessage(e *Event) string {
	return fmt.Sprintf("You have cancelled your booking for %q", e.Title)
}

// ReminderMessage is the text carried in the reminder notification.
func ReminderMessage(e *Event) string {
	return fmt.Sprintf(
		"Reminder: %q starts within an hour, at %s",
		e.Title, e.StartTime.Format("15:04"),
	)
}
