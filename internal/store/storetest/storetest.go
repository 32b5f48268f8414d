// Package storetest stands up a disposable Postgres-backed Store for
// integration tests across packages, following connection_test.go's
// testcontainers-go pattern — Store closes over *pgxpool.Pool directly, so
// a database/sql-level mock (go-sqlmock) can't stand in for it the way the
// teacher's feedback package mocks a database/sql-shaped query_optimizer.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mavedb/mavedb-core/internal/store"
)

const schema = `
CREATE TABLE experiment_sets (
	id SERIAL PRIMARY KEY,
	urn TEXT NOT NULL UNIQUE,
	private BOOLEAN NOT NULL DEFAULT true,
	published_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE experiment_set_contributors (
	experiment_set_id INTEGER NOT NULL REFERENCES experiment_sets(id),
	contributor_id BIGINT NOT NULL
);

CREATE TABLE experiments (
	id SERIAL PRIMARY KEY,
	urn TEXT NOT NULL UNIQUE,
	experiment_set_id INTEGER NOT NULL REFERENCES experiment_sets(id),
	title TEXT NOT NULL,
	abstract TEXT NOT NULL DEFAULT '',
	method_text TEXT NOT NULL DEFAULT '',
	private BOOLEAN NOT NULL DEFAULT true,
	published_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE experiment_contributors (
	experiment_id INTEGER NOT NULL REFERENCES experiments(id),
	contributor_id BIGINT NOT NULL
);

CREATE TABLE score_sets (
	id SERIAL PRIMARY KEY,
	urn TEXT NOT NULL UNIQUE,
	experiment_id INTEGER NOT NULL REFERENCES experiments(id),
	title TEXT NOT NULL,
	abstract TEXT NOT NULL DEFAULT '',
	method_text TEXT NOT NULL DEFAULT '',
	license_id BIGINT NOT NULL DEFAULT 0,
	private BOOLEAN NOT NULL DEFAULT true,
	published_date TIMESTAMPTZ,
	processing_state TEXT NOT NULL DEFAULT 'incomplete',
	mapping_state TEXT NOT NULL DEFAULT 'not_attempted',
	processing_errors JSONB,
	mapping_errors TEXT NOT NULL DEFAULT '',
	dataset_columns JSONB,
	superseded_score_set_id INTEGER,
	num_variants INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	modified_by BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE score_set_contributors (
	score_set_id INTEGER NOT NULL REFERENCES score_sets(id) ON DELETE CASCADE,
	contributor_id BIGINT NOT NULL
);

CREATE TABLE score_set_meta_analyses (
	meta_analysis_id INTEGER NOT NULL REFERENCES score_sets(id) ON DELETE CASCADE,
	source_score_set_id INTEGER NOT NULL
);

CREATE TABLE target_genes (
	id SERIAL PRIMARY KEY,
	score_set_id INTEGER NOT NULL REFERENCES score_sets(id) ON DELETE CASCADE,
	label TEXT NOT NULL,
	taxonomy TEXT NOT NULL DEFAULT '',
	sequence TEXT,
	sequence_type TEXT,
	accession TEXT,
	is_base_editor BOOLEAN,
	mapped_reference_sequence JSONB
);

CREATE TABLE variants (
	id SERIAL PRIMARY KEY,
	urn TEXT NOT NULL UNIQUE,
	score_set_id INTEGER NOT NULL REFERENCES score_sets(id) ON DELETE CASCADE,
	hgvs_nt TEXT,
	hgvs_splice TEXT,
	hgvs_pro TEXT,
	data JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE mapped_variants (
	id SERIAL PRIMARY KEY,
	variant_id INTEGER NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
	pre_mapped JSONB,
	post_mapped JSONB,
	vrs_version TEXT,
	mapping_api_version TEXT,
	mapped_date TIMESTAMPTZ,
	current BOOLEAN NOT NULL DEFAULT false,
	clingen_allele_id TEXT,
	error_message TEXT
);

CREATE TABLE job_runs (
	id SERIAL PRIMARY KEY,
	job_type TEXT NOT NULL,
	job_function TEXT NOT NULL,
	status TEXT NOT NULL,
	job_params JSONB,
	progress_completed INTEGER NOT NULL DEFAULT 0,
	progress_total INTEGER NOT NULL DEFAULT 0,
	progress_message TEXT NOT NULL DEFAULT '',
	result JSONB,
	job_error JSONB,
	retry_count INTEGER NOT NULL DEFAULT 0,
	max_retries INTEGER NOT NULL DEFAULT 0,
	pipeline_id INTEGER,
	mavedb_version TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	started_at TIMESTAMPTZ,
	finished_at TIMESTAMPTZ
);

CREATE TABLE pipelines (
	id SERIAL PRIMARY KEY,
	status TEXT NOT NULL,
	pipeline_type TEXT NOT NULL,
	steps JSONB NOT NULL,
	current_step INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	finished_at TIMESTAMPTZ
);
`

// New starts a disposable postgres container, applies the schema component
// E's repository methods need, and returns a Store over it. The container
// and pool are torn down via t.Cleanup.
func New(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("mavedb_test"),
		postgres.WithUsername("mavedb"),
		postgres.WithPassword("mavedb"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return store.New(pool, log)
}
