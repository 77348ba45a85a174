package events

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrNotOrganizer     = errors.New("only the organizer may modify the event")
	ErrEventNotEditable = errors.New("cannot modify a finished or cancelled event")
	ErrInvalidStatus    = errors.New("status can only be changed to cancelled")
	ErrDeletionWindow   = errors.New("deletion is only possible within 1 hour of creation")
	ErrTagConflict      = errors.New("tag already exists")
)
