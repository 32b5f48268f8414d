// Package store is the relational persistence layer over the entities in
// §3: score sets, experiments, variants, calibrations, publications, and
// their supporting lookups. It follows the teacher's internal/repository
// shape (a *pgxpool.Pool + *logrus.Logger per repository, raw SQL, no ORM)
// generalized from one table to the full domain model.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Store is the aggregate root over every entity-specific set of queries.
// Splitting by entity (scoreset.go, variant.go, ...) instead of one file
// keeps each file's queries next to the invariants it enforces; Store
// itself only holds the shared pool and logger every file's methods close
// over.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// New builds a Store over an already-connected pool.
func New(pool *pgxpool.Pool, logger *logrus.Logger) *Store {
	return &Store{pool: pool, log: logger}
}
