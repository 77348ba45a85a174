package rating

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotStarted    = errors.New("rating is only possible after the event")
	ErrNotAttendee   = errors.New("you did not attend the event")
	ErrInvalidScore  = errors.New("score must be between 1 and 5")
)
