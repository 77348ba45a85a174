package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/repository"
)

type BookingRepo struct {
	store *Store
}

// Exists reports whether the user already holds a booking for the event.
// Runs on the unit-of-work transaction when one is passed.
func (r *BookingRepo) Exists(ctx context.Context, tx repository.Tx, userID, eventID int64) (bool, error) {
	const op = "postgres.BookingRepo.Exists"

	db := r.store.handle(tx)

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return exists, nil
}

// Insert creates the booking. The (user_id, event_id) unique constraint
// backstops any race that slips past the event row lock and surfaces as
// repository.ErrConflict.
func (r *BookingRepo) Insert(ctx context.Context, tx repository.Tx, userID, eventID int64) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Insert"

	db := r.store.handle(tx)

	b := domain.Booking{UserID: userID, EventID: eventID}
	if err := db.QueryRow(ctx,
		`INSERT INTO bookings(user_id, event_id)
		 VALUES ($1, $2)
		 RETURNING id, booked_at`,
		userID, eventID,
	).Scan(&b.ID, &b.BookedAt); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &b, nil
}

// Delete removes the user's booking for the event.
// Returns repository.ErrNotBooked when there was none.
func (r *BookingRepo) Delete(ctx context.Context, tx repository.Tx, userID, eventID int64) error {
	const op = "postgres.BookingRepo.Delete"

	db := r.store.handle(tx)

	tag, err := db.Exec(ctx,
		`DELETE FROM bookings WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotBooked)
	}

	return nil
}

// ListUserIDs returns the users holding an active booking for the event.
func (r *BookingRepo) ListUserIDs(ctx context.Context, eventID int64) ([]int64, error) {
	const op = "postgres.BookingRepo.ListUserIDs"

	rows, err := r.store.pool.Query(ctx,
		`SELECT user_id FROM bookings WHERE event_id = $1 ORDER BY id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
