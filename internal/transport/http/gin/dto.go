package httpgin

import (
	"time"

	"github.com/kirinyoku/eventix/internal/domain"
)

type EventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartTime   string  `json:"start_time" binding:"required"`
	Location    string  `json:"location" binding:"required"`
	Seats       int     `json:"seats" binding:"required,gt=0"`
	TagIDs      []int64 `json:"tag_ids"`
}

// EventPatchRequest is the partial-update body. Absent fields keep their
// current value; status accepts only "cancelled" (and the no-op "upcoming").
type EventPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"`
	Location    *string `json:"location"`
	Seats       *int    `json:"seats" binding:"omitempty,gt=0"`
	Status      *string `json:"status" binding:"omitempty,oneof=upcoming cancelled"`
	TagIDs      []int64 `json:"tag_ids"`
}

func (r *EventPatchRequest) toPatch() (domain.EventPatch, error) {
	p := domain.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Seats:       r.Seats,
	}

	if r.StartTime != nil {
		start, err := parseRFC3339(*r.StartTime)
		if err != nil {
			return domain.EventPatch{}, err
		}
		p.StartTime = &start
	}

	if r.Status != nil {
		st := domain.EventStatus(*r.Status)
		p.Status = &st
	}

	return p, nil
}

type RateRequest struct {
	Score int `json:"score"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

type BookResponse struct {
	BookingID int64     `json:"booking_id"`
	BookedAt  time.Time `json:"booked_at"`
	Message   string    `json:"message"`
}

type CancelResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func (r *EventRequest) toDomain(id int64, status domain.EventStatus) (domain.Event, error) {
	start, err := parseRFC3339(r.StartTime)
	if err != nil {
		return domain.Event{}, err
	}

	return domain.Event{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		StartTime:   start,
		Location:    r.Location,
		Seats:       r.Seats,
		Status:      status,
	}, nil
}
