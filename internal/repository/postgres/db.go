package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/eventix/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

func (s *Store) RunTx(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx DB) error,
) error {
	txOpts := pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}

	if opts != nil {
		txOpts.IsoLevel = opts.IsoLevel
		txOpts.AccessMode = opts.AccessMode
		txOpts.DeferrableMode = opts.DeferrableMode
	}

	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// handle resolves the opaque unit-of-work transaction to a DB. Outside a
// transaction repositories fall back to the pool.
func (s *Store) handle(tx repository.Tx) DB {
	if tx != nil {
		if db, ok := tx.(DB); ok {
			return db
		}
	}
	return s.pool
}

func (s *Store) Events() *EventRepo               { return &EventRepo{store: s} }
func (s *Store) Bookings() *BookingRepo           { return &BookingRepo{store: s} }
func (s *Store) Ratings() *RatingRepo             { return &RatingRepo{store: s} }
func (s *Store) Tags() *TagRepo                   { return &TagRepo{store: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{store: s} }
