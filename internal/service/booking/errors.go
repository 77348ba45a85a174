package booking

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventNotOpen  = errors.New("cannot book past or cancelled events")
	ErrNoFreeSeats   = errors.New("no free seats")
	ErrAlreadyBooked = errors.New("already registered")
	ErrNotRegistered = errors.New("you were not registered")
	ErrRateLimited   = errors.New("rate limited")
)
