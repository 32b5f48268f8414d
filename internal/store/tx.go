package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/urn"
)

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error fn returns (including a panic re-raised after
// rollback), following the teacher's repository methods' one-statement
// db.Exec/db.QueryRow shape generalized to the multi-statement writes
// write-behind parent creation requires.
func withTx[T any](ctx context.Context, pool txBeginner, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p)
		}
	}()

	result, err := fn(tx)
	if err != nil {
		tx.Rollback(ctx)
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}
	return result, nil
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// tempURN mints a new tmp: namespace URN for a newly created entity, using
// a UUID as the uniqueness token (spec §4.E "newly created ScoreSets/
// Experiments/Sets receive a temporary URN").
func tempURN() string {
	return urn.Temporary(uuid.NewString())
}
