package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/eventix/internal/domain"
)

type TagRepo struct {
	store *Store
}

func (r *TagRepo) Create(ctx context.Context, name string) (*domain.Tag, error) {
	const op = "postgres.TagRepo.Create"

	t := domain.Tag{Name: name}
	if err := r.store.pool.QueryRow(ctx,
		`INSERT INTO tags(name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&t.ID); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &t, nil
}

func (r *TagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	const op = "postgres.TagRepo.List"

	rows, err := r.store.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
