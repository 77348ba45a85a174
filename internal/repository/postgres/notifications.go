package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/eventix/internal/domain"
)

type NotificationRepo struct {
	store *Store
}

// Insert appends a notification record. Rows are immutable once created.
func (r *NotificationRepo) Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	const op = "postgres.NotificationRepo.Insert"

	out := *n
	if err := r.store.pool.QueryRow(ctx,
		`INSERT INTO notifications(user_id, event_id, type, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		n.UserID, n.EventID, n.Type, n.Message,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &out, nil
}

// ListForUser returns the user's notification log, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	const op = "postgres.NotificationRepo.ListForUser"

	rows, err := r.store.pool.Query(ctx,
		`SELECT id, user_id, event_id, type, message, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.Type, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
