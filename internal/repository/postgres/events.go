package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/eventix/internal/domain"
	"github.com/kirinyoku/eventix/internal/repository"
)

type EventRepo struct {
	store *Store
}

// derived free_seats/avg_rating, recomputed on every read.
const (
	freeSeatsExpr = `e.seats - (SELECT COUNT(*) FROM bookings b WHERE b.event_id = e.id)`
	avgRatingExpr = `COALESCE((SELECT AVG(r.score)::float8 FROM ratings r WHERE r.event_id = e.id), 0)`
)

// Create inserts the event and attaches its tags in a single transaction.
//
// Returns:
//   - *domain.Event: the stored event with id and created_at filled in.
//   - error: repository.ErrConflict on a duplicate, repository.ErrNotFound
//     if a referenced tag or organizer does not exist.
func (r *EventRepo) Create(ctx context.Context, e *domain.Event, tagIDs []int64) (*domain.Event, error) {
	const op = "postgres.EventRepo.Create"

	out := *e
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO events(title, description, start_time, location, seats, status, organizer_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			e.Title, e.Description, e.StartTime, e.Location, e.Seats, e.Status, e.OrganizerID,
		).Scan(&out.ID, &out.CreatedAt); err != nil {
			return err
		}

		return replaceEventTags(ctx, tx, out.ID, tagIDs, false)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &out, nil
}

// Update rewrites the mutable fields and, when tagIDs is non-nil, the tag set.
func (r *EventRepo) Update(ctx context.Context, e *domain.Event, tagIDs []int64) error {
	const op = "postgres.EventRepo.Update"

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		tag, err := tx.Exec(ctx,
			`UPDATE events
			 SET title = $2, description = $3, start_time = $4, location = $5, seats = $6, status = $7
			 WHERE id = $1`,
			e.ID, e.Title, e.Description, e.StartTime, e.Location, e.Seats, e.Status,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		if tagIDs == nil {
			return nil
		}
		return replaceEventTags(ctx, tx, e.ID, tagIDs, true)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func replaceEventTags(ctx context.Context, tx DB, eventID int64, tagIDs []int64, clear bool) error {
	if clear {
		if _, err := tx.Exec(ctx, `DELETE FROM event_tags WHERE event_id = $1`, eventID); err != nil {
			return err
		}
	}
	if len(tagIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tid := range tagIDs {
		batch.Queue(
			`INSERT INTO event_tags(event_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			eventID, tid,
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// Get retrieves the bare event row.
func (r *EventRepo) Get(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.EventRepo.Get"

	var e domain.Event
	err := r.store.pool.QueryRow(ctx,
		`SELECT id, title, description, start_time, location, seats, status, organizer_id, created_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.Location, &e.Seats, &e.Status, &e.OrganizerID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// ForUpdate retrieves the event row holding an exclusive row lock for the
// remainder of the surrounding transaction. Every seat-count decision in the
// booking path happens under this lock.
func (r *EventRepo) ForUpdate(ctx context.Context, tx repository.Tx, id int64) (*domain.Event, error) {
	const op = "postgres.EventRepo.ForUpdate"

	db := r.store.handle(tx)

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, title, description, start_time, location, seats, status, organizer_id, created_at
		 FROM events WHERE id = $1
		 FOR UPDATE`,
		id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.Location, &e.Seats, &e.Status, &e.OrganizerID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// ActiveBookings counts current bookings for the event. Call it with the
// transaction that holds the event lock to get a consistent seat count.
func (r *EventRepo) ActiveBookings(ctx context.Context, tx repository.Tx, eventID int64) (int64, error) {
	const op = "postgres.EventRepo.ActiveBookings"

	db := r.store.handle(tx)

	var n int64
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1`,
		eventID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return n, nil
}

// Delete removes the event. Bookings and ratings cascade; notifications keep
// their rows with event_id set to NULL.
func (r *EventRepo) Delete(ctx context.Context, id int64) error {
	const op = "postgres.EventRepo.Delete"

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// FinishStale moves upcoming events whose start time passed more than grace
// ago to finished. Safe to run repeatedly: already-finished rows no longer
// match the WHERE clause.
func (r *EventRepo) FinishStale(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	const op = "postgres.EventRepo.FinishStale"

	tag, err := r.store.pool.Exec(ctx,
		`UPDATE events SET status = $1
		 WHERE status = $2 AND start_time <= $3`,
		domain.EventFinished, domain.EventUpcoming, now.Add(-grace),
	)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}

// ListStartingWithin returns upcoming events with start_time in (from, to].
func (r *EventRepo) ListStartingWithin(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	const op = "postgres.EventRepo.ListStartingWithin"

	rows, err := r.store.pool.Query(ctx,
		`SELECT id, title, description, start_time, location, seats, status, organizer_id, created_at
		 FROM events
		 WHERE status = $1 AND start_time > $2 AND start_time <= $3
		 ORDER BY start_time`,
		domain.EventUpcoming, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	return scanEvents(rows, op)
}

// Summary retrieves the event with its derived fields, organizer and tags.
func (r *EventRepo) Summary(ctx context.Context, id int64) (*domain.EventSummary, error) {
	const op = "postgres.EventRepo.Summary"

	var s domain.EventSummary
	err := r.store.pool.QueryRow(ctx,
		`SELECT e.id, e.title, e.description, e.start_time, e.location, e.seats, e.status,
		        e.organizer_id, e.created_at, u.username, `+freeSeatsExpr+`, `+avgRatingExpr+`
		 FROM events e
		 JOIN users u ON u.id = e.organizer_id
		 WHERE e.id = $1`,
		id,
	).Scan(
		&s.ID, &s.Title, &s.Description, &s.StartTime, &s.Location, &s.Seats, &s.Status,
		&s.OrganizerID, &s.CreatedAt, &s.Organizer.Username, &s.FreeSeats, &s.AvgRating,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	s.Organizer.ID = s.OrganizerID
	s.StatusText = s.Status.Display()

	tags, err := r.tagsFor(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	s.Tags = tags[id]
	if s.Tags == nil {
		s.Tags = []domain.Tag{}
	}

	return &s, nil
}

// List returns event summaries matching the filter, in the feed ordering:
// upcoming events first ascending by start time, then past/cancelled events
// descending by start time, ties broken by descending average rating.
func (r *EventRepo) List(ctx context.Context, f domain.EventFilter) ([]domain.EventSummary, error) {
	const op = "postgres.EventRepo.List"

	q, args := buildListQuery(f)

	rows, err := r.store.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.EventSummary
	var ids []int64
	for rows.Next() {
		var s domain.EventSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.StartTime, &s.Location, &s.Seats, &s.Status,
			&s.OrganizerID, &s.CreatedAt, &s.Organizer.Username, &s.FreeSeats, &s.AvgRating,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		s.Organizer.ID = s.OrganizerID
		s.StatusText = s.Status.Display()
		s.Tags = []domain.Tag{}

		out = append(out, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if len(ids) > 0 {
		tags, err := r.tagsFor(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		for i := range out {
			if t := tags[out[i].ID]; t != nil {
				out[i].Tags = t
			}
		}
	}

	return out, nil
}

// buildListQuery assembles the filtered feed query. Kept free of the pool so
// the clause and ordering construction stays directly testable.
func buildListQuery(f domain.EventFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Location != "" {
		where = append(where, fmt.Sprintf("LOWER(e.location) = LOWER(%s)", arg(f.Location)))
	}
	if f.Status != "" {
		where = append(where, fmt.Sprintf("e.status = LOWER(%s)", arg(f.Status)))
	}
	if f.StartDate != nil {
		where = append(where, fmt.Sprintf("e.start_time::date = %s::date", arg(*f.StartDate)))
	}
	if f.Tag != "" {
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM event_tags et JOIN tags t ON t.id = et.tag_id
			 WHERE et.event_id = e.id AND t.name ILIKE '%%' || %s || '%%')`, arg(f.Tag)))
	}
	if f.OnlyFree {
		where = append(where, "("+freeSeatsExpr+") > 0")
	}
	if f.AvgRatingGTE != nil {
		where = append(where, "("+avgRatingExpr+") >= "+arg(*f.AvgRatingGTE))
	}
	if f.AvgRatingLTE != nil {
		where = append(where, "("+avgRatingExpr+") <= "+arg(*f.AvgRatingLTE))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf(
			`(e.title ILIKE %[1]s OR e.description ILIKE %[1]s OR
			 EXISTS (SELECT 1 FROM event_tags et JOIN tags t ON t.id = et.tag_id
			 WHERE et.event_id = e.id AND t.name ILIKE %[1]s))`, p))
	}

	q := `SELECT e.id, e.title, e.description, e.start_time, e.location, e.seats, e.status,
	             e.organizer_id, e.created_at, u.username, ` + freeSeatsExpr + `, ` + avgRatingExpr + `
	      FROM events e
	      JOIN users u ON u.id = e.organizer_id`
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += `
	      ORDER BY
	        CASE WHEN e.status = 'upcoming' THEN 0 ELSE 1 END,
	        CASE WHEN e.status = 'upcoming' THEN e.start_time END ASC,
	        CASE WHEN e.status <> 'upcoming' THEN e.start_time END DESC,
	        ` + avgRatingExpr + ` DESC`

	if f.Limit > 0 {
		q += "\nLIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		q += "\nOFFSET " + arg(f.Offset)
	}

	return q, args
}

// ListBookedUpcoming returns upcoming events the user holds a booking for.
func (r *EventRepo) ListBookedUpcoming(ctx context.Context, userID int64, now time.Time) ([]domain.Event, error) {
	const op = "postgres.EventRepo.ListBookedUpcoming"

	rows, err := r.store.pool.Query(ctx,
		`SELECT e.id, e.title, e.description, e.start_time, e.location, e.seats, e.status,
		        e.organizer_id, e.created_at
		 FROM events e
		 JOIN bookings b ON b.event_id = e.id
		 WHERE b.user_id = $1 AND e.status = $2 AND e.start_time >= $3
		 ORDER BY e.start_time`,
		userID, domain.EventUpcoming, now,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	return scanEvents(rows, op)
}

func (r *EventRepo) tagsFor(ctx context.Context, eventIDs []int64) (map[int64][]domain.Tag, error) {
	rows, err := r.store.pool.Query(ctx,
		`SELECT et.event_id, t.id, t.name
		 FROM event_tags et
		 JOIN tags t ON t.id = et.tag_id
		 WHERE et.event_id = ANY($1)
		 ORDER BY t.name`,
		eventIDs,
	)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	out := make(map[int64][]domain.Tag)
	for rows.Next() {
		var eid int64
		var t domain.Tag
		if err := rows.Scan(&eid, &t.ID, &t.Name); err != nil {
			return nil, translateDBErr(err)
		}
		out[eid] = append(out[eid], t)
	}

	return out, rows.Err()
}

func scanEvents(rows pgx.Rows, op string) ([]domain.Event, error) {
	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.StartTime, &e.Location, &e.Seats, &e.Status,
			&e.OrganizerID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
