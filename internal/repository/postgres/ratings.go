package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/eventix/internal/domain"
)

type RatingRepo struct {
	store *Store
}

// Upsert stores the user's score for the event, overwriting an earlier one.
// One row per (user, event) is guaranteed by the unique constraint the
// ON CONFLICT clause targets.
func (r *RatingRepo) Upsert(ctx context.Context, userID, eventID int64, score int) (*domain.Rating, error) {
	const op = "postgres.RatingRepo.Upsert"

	rt := domain.Rating{UserID: userID, EventID: eventID, Score: score}
	if err := r.store.pool.QueryRow(ctx,
		`INSERT INTO ratings(user_id, event_id, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, event_id)
		 DO UPDATE SET score = EXCLUDED.score, rated_at = now()
		 RETURNING id, rated_at`,
		userID, eventID, score,
	).Scan(&rt.ID, &rt.RatedAt); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &rt, nil
}
