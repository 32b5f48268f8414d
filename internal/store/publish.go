package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/urn"
)

// ErrNoVariants, ErrNoExperiment, and ErrOrphanedExperiment are the three
// rejection conditions a Publish call reports back to the caller (spec
// §4.I "a ScoreSet rejects publication when...").
var (
	ErrNoVariants         = fmt.Errorf("score set has no variants")
	ErrNoExperiment       = fmt.Errorf("score set has no experiment")
	ErrOrphanedExperiment = fmt.Errorf("experiment has no experiment set")
)

// Publish assigns final URNs to a ScoreSet and, as needed, its still-
// temporary Experiment and ExperimentSet, renumbers its variants under the
// new ScoreSet URN, and stamps its published date (spec §4.I). A ScoreSet
// that already carries a final URN is returned unchanged, without running
// the checks below.
func (s *Store) Publish(ctx context.Context, scoreSetID int64) (*domain.ScoreSet, error) {
	return withTx(ctx, s.pool, func(tx pgx.Tx) (*domain.ScoreSet, error) {
		ss, err := s.lockScoreSet(ctx, tx, scoreSetID)
		if err != nil {
			return nil, err
		}
		if !urn.IsTemporary(ss.URN) {
			return ss, nil
		}

		count, err := countVariantsTx(ctx, tx, scoreSetID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNoVariants
		}
		if ss.ExperimentID == 0 {
			return nil, ErrNoExperiment
		}

		exp, err := s.lockExperiment(ctx, tx, ss.ExperimentID)
		if err != nil {
			return nil, err
		}
		if exp.ExperimentSetID == 0 {
			return nil, ErrOrphanedExperiment
		}

		expSet, err := s.lockExperimentSet(ctx, tx, exp.ExperimentSetID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()

		if urn.IsTemporary(expSet.URN) {
			expSet.URN = urn.ExperimentSet(expSet.ID)
			expSet.Private = false
			expSet.PublishedDate = &now
			if err := updateExperimentSetURN(ctx, tx, expSet); err != nil {
				return nil, err
			}
		}

		if urn.IsTemporary(exp.URN) {
			suffixIndex, err := countPublishedExperiments(ctx, tx, exp.ExperimentSetID)
			if err != nil {
				return nil, err
			}
			exp.URN = urn.Experiment(expSet.URN, suffixIndex, ss.IsMetaAnalysis())
			exp.Private = false
			exp.PublishedDate = &now
			if err := updateExperimentURN(ctx, tx, exp); err != nil {
				return nil, err
			}
		}

		suffixIndex, err := countPublishedScoreSets(ctx, tx, exp.ID)
		if err != nil {
			return nil, err
		}
		ss.URN = urn.ScoreSet(exp.URN, suffixIndex+1)
		ss.Private = false
		ss.PublishedDate = &now

		if _, err := tx.Exec(ctx,
			`UPDATE score_sets SET urn = $1, private = $2, published_date = $3, modified_at = NOW() WHERE id = $4`,
			ss.URN, ss.Private, ss.PublishedDate, ss.ID,
		); err != nil {
			return nil, fmt.Errorf("assigning final score set urn: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE variants SET urn = $1 || '#' || split_part(urn, '#', 2) WHERE score_set_id = $2`,
			ss.URN, ss.ID,
		); err != nil {
			return nil, fmt.Errorf("renumbering variant urns: %w", err)
		}

		return ss, nil
	})
}

func (s *Store) lockScoreSet(ctx context.Context, tx pgx.Tx, id int64) (*domain.ScoreSet, error) {
	ss := &domain.ScoreSet{ID: id}
	err := tx.QueryRow(ctx,
		`SELECT urn, experiment_id, private FROM score_sets WHERE id = $1 FOR UPDATE`, id,
	).Scan(&ss.URN, &ss.ExperimentID, &ss.Private)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("locking score set %d: %w", id, err)
	}
	source, err := s.metaAnalysisSources(ctx, id)
	if err != nil {
		return nil, err
	}
	ss.MetaAnalysisSourceIDs = source
	return ss, nil
}

func (s *Store) lockExperiment(ctx context.Context, tx pgx.Tx, id int64) (*domain.Experiment, error) {
	exp := &domain.Experiment{ID: id}
	err := tx.QueryRow(ctx,
		`SELECT urn, experiment_set_id, private FROM experiments WHERE id = $1 FOR UPDATE`, id,
	).Scan(&exp.URN, &exp.ExperimentSetID, &exp.Private)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("locking experiment %d: %w", id, err)
	}
	return exp, nil
}

func (s *Store) lockExperimentSet(ctx context.Context, tx pgx.Tx, id int64) (*domain.ExperimentSet, error) {
	es := &domain.ExperimentSet{ID: id}
	err := tx.QueryRow(ctx,
		`SELECT urn, private FROM experiment_sets WHERE id = $1 FOR UPDATE`, id,
	).Scan(&es.URN, &es.Private)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("locking experiment set %d: %w", id, err)
	}
	return es, nil
}

func countVariantsTx(ctx context.Context, tx pgx.Tx, scoreSetID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT count(*) FROM variants WHERE score_set_id = $1`, scoreSetID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting variants for score set %d: %w", scoreSetID, err)
	}
	return n, nil
}

func countPublishedExperiments(ctx context.Context, tx pgx.Tx, experimentSetID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT count(*) FROM experiments WHERE experiment_set_id = $1 AND urn NOT LIKE 'tmp:%'`, experimentSetID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting published experiments for experiment set %d: %w", experimentSetID, err)
	}
	return n, nil
}

func countPublishedScoreSets(ctx context.Context, tx pgx.Tx, experimentID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT count(*) FROM score_sets WHERE experiment_id = $1 AND urn NOT LIKE 'tmp:%'`, experimentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting published score sets for experiment %d: %w", experimentID, err)
	}
	return n, nil
}

func updateExperimentSetURN(ctx context.Context, tx pgx.Tx, es *domain.ExperimentSet) error {
	_, err := tx.Exec(ctx,
		`UPDATE experiment_sets SET urn = $1, private = $2, published_date = $3 WHERE id = $4`,
		es.URN, es.Private, es.PublishedDate, es.ID,
	)
	if err != nil {
		return fmt.Errorf("assigning final experiment set urn: %w", err)
	}
	return nil
}

func updateExperimentURN(ctx context.Context, tx pgx.Tx, exp *domain.Experiment) error {
	_, err := tx.Exec(ctx,
		`UPDATE experiments SET urn = $1, private = $2, published_date = $3, modified_at = NOW() WHERE id = $4`,
		exp.URN, exp.Private, exp.PublishedDate, exp.ID,
	)
	if err != nil {
		return fmt.Errorf("assigning final experiment urn: %w", err)
	}
	return nil
}
