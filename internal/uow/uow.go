package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kirinyoku/eventix/internal/repository"
	postgres "github.com/kirinyoku/eventix/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
// The booking path uses it to enqueue notification jobs once the event row
// lock has been released.
type AfterCommit func(ctx context.Context)

// UoW represents a unit of work.
type UoW struct {
	store *postgres.Store
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// maxTxAttempts bounds retries on serialization failures and deadlocks.
const maxTxAttempts = 3

// DoWithOpts runs fn inside the transaction with the given options, retrying
// on retryable database errors. After a successful commit, it executes all
// after-commit hooks exactly once.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	for attempt := 1; ; attempt++ {
		hooks = hooks[:0]

		err := u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err != nil {
			if postgres.IsRetryable(err) && attempt < maxTxAttempts {
				continue
			}
			return err
		}
		break
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
