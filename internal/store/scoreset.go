package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// CreateExperiment inserts exp, write-behind creating an ExperimentSet
// bound to contributorID when exp has none (spec §4.E "inserting an
// Experiment without an ExperimentSet creates one bound to the inserting
// user's contributor context").
func (s *Store) CreateExperiment(ctx context.Context, exp *domain.Experiment, contributorID int64) (*domain.Experiment, error) {
	return withTx(ctx, s.pool, func(tx pgx.Tx) (*domain.Experiment, error) {
		if exp.ExperimentSetID == 0 {
			var setID int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO experiment_sets (urn, private) VALUES ($1, $2) RETURNING id`,
				tempURN(), exp.Private,
			).Scan(&setID); err != nil {
				return nil, fmt.Errorf("creating parent experiment set: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO experiment_set_contributors (experiment_set_id, contributor_id) VALUES ($1, $2)`,
				setID, contributorID,
			); err != nil {
				return nil, fmt.Errorf("binding contributor to new experiment set: %w", err)
			}
			exp.ExperimentSetID = setID
		}

		if exp.URN == "" {
			exp.URN = tempURN()
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO experiments (urn, experiment_set_id, title, abstract, method_text, private)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, modified_at`,
			exp.URN, exp.ExperimentSetID, exp.Title, exp.Abstract, exp.MethodText, exp.Private,
		).Scan(&exp.ID, &exp.CreatedAt, &exp.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("creating experiment: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO experiment_contributors (experiment_id, contributor_id) VALUES ($1, $2)`,
			exp.ID, contributorID,
		); err != nil {
			return nil, fmt.Errorf("binding contributor to new experiment: %w", err)
		}
		return exp, nil
	})
}

// CreateScoreSet inserts ss under the Experiment ss.ExperimentID names. It
// does not create a missing Experiment: with ExperimentID unset the insert
// fails on the experiment foreign key. All target accessions of ss must
// share one base-editor status, or a ValidationError is returned.
func (s *Store) CreateScoreSet(ctx context.Context, ss *domain.ScoreSet, contributorID int64) (*domain.ScoreSet, error) {
	var baseEditor *bool
	for _, g := range ss.TargetGenes {
		if g.Accession == nil {
			continue
		}
		if baseEditor != nil && *baseEditor != g.Accession.IsBaseEditor {
			return nil, domain.NewValidationError("all target accessions of a score set must share base-editor status")
		}
		be := g.Accession.IsBaseEditor
		baseEditor = &be
	}
	if ss.URN == "" {
		ss.URN = tempURN()
	}
	columns, err := json.Marshal(ss.DatasetColumns)
	if err != nil {
		return nil, fmt.Errorf("marshaling dataset_columns: %w", err)
	}
	processingErrors, err := json.Marshal(ss.ProcessingErrors)
	if err != nil {
		return nil, fmt.Errorf("marshaling processing_errors: %w", err)
	}

	return withTx(ctx, s.pool, func(tx pgx.Tx) (*domain.ScoreSet, error) {
		err := tx.QueryRow(ctx,
			`INSERT INTO score_sets (
				urn, experiment_id, title, abstract, method_text, license_id, private,
				processing_state, mapping_state, processing_errors, dataset_columns,
				superseded_score_set_id
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			RETURNING id, created_at, modified_at`,
			ss.URN, ss.ExperimentID, ss.Title, ss.Abstract, ss.MethodText, ss.LicenseID, ss.Private,
			ss.ProcessingState, ss.MappingState, processingErrors, columns, ss.SupersededScoreSetID,
		).Scan(&ss.ID, &ss.CreatedAt, &ss.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("creating score set: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO score_set_contributors (score_set_id, contributor_id) VALUES ($1, $2)`,
			ss.ID, contributorID,
		); err != nil {
			return nil, fmt.Errorf("binding contributor to new score set: %w", err)
		}

		for _, srcID := range ss.MetaAnalysisSourceIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO score_set_meta_analyses (meta_analysis_id, source_score_set_id) VALUES ($1, $2)`,
				ss.ID, srcID,
			); err != nil {
				return nil, fmt.Errorf("linking meta-analysis source %d: %w", srcID, err)
			}
		}

		for i := range ss.TargetGenes {
			if err := insertTargetGene(ctx, tx, ss.ID, &ss.TargetGenes[i]); err != nil {
				return nil, err
			}
		}

		return ss, nil
	})
}

func insertTargetGene(ctx context.Context, tx pgx.Tx, scoreSetID int64, g *domain.TargetGene) error {
	g.ScoreSetID = scoreSetID
	var sequence, seqType, accession *string
	var isBaseEditor *bool
	if g.Sequence != nil {
		sequence = &g.Sequence.Sequence
		t := string(g.Sequence.Type)
		seqType = &t
	}
	if g.Accession != nil {
		accession = &g.Accession.Accession
		isBaseEditor = &g.Accession.IsBaseEditor
	}

	return tx.QueryRow(ctx,
		`INSERT INTO target_genes (score_set_id, label, taxonomy, sequence, sequence_type, accession, is_base_editor)
		 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		scoreSetID, g.Label, g.Taxonomy, sequence, seqType, accession, isBaseEditor,
	).Scan(&g.ID)
}

// GetScoreSetByURN fetches a ScoreSet by its current URN.
func (s *Store) GetScoreSetByURN(ctx context.Context, urn string) (*domain.ScoreSet, error) {
	row := s.pool.QueryRow(ctx, scoreSetSelect+`WHERE urn = $1`, urn)
	return s.scanScoreSet(ctx, row, urn)
}

// GetScoreSetByID fetches a ScoreSet by its numeric id, the identifier
// component G/H's jobs are invoked with (spec §4.G/§4.H).
func (s *Store) GetScoreSetByID(ctx context.Context, scoreSetID int64) (*domain.ScoreSet, error) {
	row := s.pool.QueryRow(ctx, scoreSetSelect+`WHERE id = $1`, scoreSetID)
	return s.scanScoreSet(ctx, row, scoreSetID)
}

const scoreSetSelect = `SELECT id, urn, experiment_id, title, abstract, method_text, license_id, private,
		published_date, processing_state, mapping_state, processing_errors,
		mapping_errors, dataset_columns, superseded_score_set_id, num_variants,
		created_at, modified_at, modified_by
	 FROM score_sets `

func (s *Store) scanScoreSet(ctx context.Context, row pgx.Row, key any) (*domain.ScoreSet, error) {
	ss := &domain.ScoreSet{}
	var columns, processingErrors []byte
	err := row.Scan(
		&ss.ID, &ss.URN, &ss.ExperimentID, &ss.Title, &ss.Abstract, &ss.MethodText, &ss.LicenseID, &ss.Private,
		&ss.PublishedDate, &ss.ProcessingState, &ss.MappingState, &processingErrors,
		&ss.MappingErrors, &columns, &ss.SupersededScoreSetID, &ss.NumVariants,
		&ss.CreatedAt, &ss.ModifiedAt, &ss.ModifiedBy,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting score set %v: %w", key, err)
	}
	if len(columns) > 0 {
		if err := json.Unmarshal(columns, &ss.DatasetColumns); err != nil {
			return nil, fmt.Errorf("unmarshaling dataset_columns: %w", err)
		}
	}
	if len(processingErrors) > 0 {
		if err := json.Unmarshal(processingErrors, &ss.ProcessingErrors); err != nil {
			return nil, fmt.Errorf("unmarshaling processing_errors: %w", err)
		}
	}
	ss.MetaAnalysisSourceIDs, err = s.metaAnalysisSources(ctx, ss.ID)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (s *Store) metaAnalysisSources(ctx context.Context, scoreSetID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_score_set_id FROM score_set_meta_analyses WHERE meta_analysis_id = $1`, scoreSetID)
	if err != nil {
		return nil, fmt.Errorf("listing meta-analysis sources: %w", err)
	}
	defer rows.Close()

	var sources []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning meta-analysis source: %w", err)
		}
		sources = append(sources, id)
	}
	return sources, rows.Err()
}

// UpdateProcessingState transitions a ScoreSet's processing state, used by
// component G's variant creation pipeline step.
func (s *Store) UpdateProcessingState(ctx context.Context, scoreSetID int64, state domain.ProcessingState, procErrors *domain.ProcessingErrors) error {
	raw, err := json.Marshal(procErrors)
	if err != nil {
		return fmt.Errorf("marshaling processing_errors: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE score_sets SET processing_state = $1, processing_errors = $2, modified_at = NOW() WHERE id = $3`,
		state, raw, scoreSetID,
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{"score_set_id": scoreSetID, "state": state}).WithError(err).Error("failed to update processing state")
		return fmt.Errorf("updating processing state: %w", err)
	}
	return nil
}

// DeleteScoreSet removes a ScoreSet and cascades to its Variants,
// MappedVariants, TargetGenes, and Calibrations (spec §4.E "Cascade").
func (s *Store) DeleteScoreSet(ctx context.Context, scoreSetID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM score_sets WHERE id = $1`, scoreSetID)
	if err != nil {
		return fmt.Errorf("deleting score set %d: %w", scoreSetID, err)
	}
	return nil
}

// UpdateMappingState transitions a ScoreSet's mapping state, used by
// component G's variant-mapping pipeline step (spec §4.G).
func (s *Store) UpdateMappingState(ctx context.Context, scoreSetID int64, state domain.MappingState, mappingErrors string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE score_sets SET mapping_state = $1, mapping_errors = $2, modified_at = NOW() WHERE id = $3`,
		state, mappingErrors, scoreSetID,
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{"score_set_id": scoreSetID, "state": state}).WithError(err).Error("failed to update mapping state")
		return fmt.Errorf("updating mapping state: %w", err)
	}
	return nil
}

// SetNumVariants persists the denormalized variant count a score set
// carries so a failed re-processing run can report its prior count (spec
// §4.G "preserve any prior num_variants").
func (s *Store) SetNumVariants(ctx context.Context, scoreSetID int64, n int) error {
	_, err := s.pool.Exec(ctx, `UPDATE score_sets SET num_variants = $1 WHERE id = $2`, n, scoreSetID)
	if err != nil {
		return fmt.Errorf("setting num_variants for score set %d: %w", scoreSetID, err)
	}
	return nil
}

// SetModifiedBy stamps the contributor responsible for a score set's most
// recent state transition (component G calls this on both processing and
// mapping steps).
func (s *Store) SetModifiedBy(ctx context.Context, scoreSetID, contributorID int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE score_sets SET modified_by = $1, modified_at = NOW() WHERE id = $2`, contributorID, scoreSetID)
	if err != nil {
		return fmt.Errorf("setting modified_by for score set %d: %w", scoreSetID, err)
	}
	return nil
}

// GetTargetGenes lists the TargetGenes bound to a score set.
func (s *Store) GetTargetGenes(ctx context.Context, scoreSetID int64) ([]domain.TargetGene, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, score_set_id, label, taxonomy, sequence, sequence_type, accession, is_base_editor, mapped_reference_sequence
		 FROM target_genes WHERE score_set_id = $1 ORDER BY id`, scoreSetID)
	if err != nil {
		return nil, fmt.Errorf("listing target genes for score set %d: %w", scoreSetID, err)
	}
	defer rows.Close()

	var genes []domain.TargetGene
	for rows.Next() {
		g := domain.TargetGene{}
		var sequence, seqType, accession *string
		var isBaseEditor *bool
		var mappedRef []byte
		if err := rows.Scan(&g.ID, &g.ScoreSetID, &g.Label, &g.Taxonomy, &sequence, &seqType, &accession, &isBaseEditor, &mappedRef); err != nil {
			return nil, fmt.Errorf("scanning target gene row: %w", err)
		}
		if sequence != nil {
			g.Sequence = &domain.TargetSequence{Sequence: *sequence}
			if seqType != nil {
				g.Sequence.Type = domain.TargetSequenceType(*seqType)
			}
		}
		if accession != nil {
			g.Accession = &domain.TargetAccession{Accession: *accession}
			if isBaseEditor != nil {
				g.Accession.IsBaseEditor = *isBaseEditor
			}
		}
		if len(mappedRef) > 0 {
			var info domain.ReferenceSequenceInfo
			if err := json.Unmarshal(mappedRef, &info); err != nil {
				return nil, fmt.Errorf("decoding mapped reference sequence for target gene %d: %w", g.ID, err)
			}
			g.MappedReferenceSequence = &info
		}
		genes = append(genes, g)
	}
	return genes, rows.Err()
}

// UpdateTargetGeneMappedReferenceSequence persists a VRS mapping run's
// per-target-gene reference metadata (spec §4.G step 3). Called once per
// target gene the mapper returned a reference_sequences entry for.
func (s *Store) UpdateTargetGeneMappedReferenceSequence(ctx context.Context, targetGeneID int64, info domain.ReferenceSequenceInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding mapped reference sequence for target gene %d: %w", targetGeneID, err)
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE target_genes SET mapped_reference_sequence = $1 WHERE id = $2`,
		raw, targetGeneID,
	); err != nil {
		return fmt.Errorf("updating mapped reference sequence for target gene %d: %w", targetGeneID, err)
	}
	return nil
}

// DeleteVariantsByScoreSet removes every Variant bound to a score set,
// cascading to their MappedVariants, ahead of a re-processing run (spec
// §4.G step 4 "Delete existing Variants ... for this ScoreSet").
func (s *Store) DeleteVariantsByScoreSet(ctx context.Context, scoreSetID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM variants WHERE score_set_id = $1`, scoreSetID)
	if err != nil {
		return fmt.Errorf("deleting variants for score set %d: %w", scoreSetID, err)
	}
	return nil
}

// UpdateDatasetColumns persists the column metadata the tabular validator
// emitted for a score set (spec §4.B "Column metadata").
func (s *Store) UpdateDatasetColumns(ctx context.Context, scoreSetID int64, columns domain.DatasetColumns) error {
	raw, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("marshaling dataset_columns: %w", err)
	}
	_, err = s.pool.Exec(ctx, `UPDATE score_sets SET dataset_columns = $1 WHERE id = $2`, raw, scoreSetID)
	if err != nil {
		return fmt.Errorf("updating dataset_columns for score set %d: %w", scoreSetID, err)
	}
	return nil
}
