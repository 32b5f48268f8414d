package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// CreateScoreCalibration persists a calibration for a score set, replacing
// any prior one — a ScoreSet has at most one active calibration, so
// recalibrating supersedes rather than accumulates rows.
func (s *Store) CreateScoreCalibration(ctx context.Context, scoreSetID int64, sc *domain.ScoreCalibration) error {
	classifications, err := json.Marshal(sc.Classifications)
	if err != nil {
		return fmt.Errorf("marshaling classifications: %w", err)
	}
	thresholdIDs := publicationIDs(sc.ThresholdSources)
	classificationIDs := publicationIDs(sc.ClassificationSources)
	methodIDs := publicationIDs(sc.MethodSources)

	_, err = withTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		if _, err := tx.Exec(ctx, `DELETE FROM score_calibrations WHERE score_set_id = $1`, scoreSetID); err != nil {
			return struct{}{}, fmt.Errorf("clearing prior calibration: %w", err)
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO score_calibrations (
				score_set_id, title, baseline_score, research_use_only, private, is_primary,
				investigator_provided, threshold_source_ids, classification_source_ids,
				method_source_ids, classifications
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
			scoreSetID, sc.Title, sc.BaselineScore, sc.ResearchUseOnly, sc.Private, sc.Primary,
			sc.InvestigatorProvided, thresholdIDs, classificationIDs, methodIDs, classifications,
		).Scan(&sc.ID)
		if err != nil {
			return struct{}{}, fmt.Errorf("creating score calibration: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}
	sc.ScoreSetID = scoreSetID
	return nil
}

// GetScoreCalibration fetches the active calibration for a score set, if
// any, resolving its publication source lists back to full
// PublicationIdentifiers.
func (s *Store) GetScoreCalibration(ctx context.Context, scoreSetID int64) (*domain.ScoreCalibration, error) {
	sc := &domain.ScoreCalibration{}
	var classifications []byte
	var thresholdIDs, classificationIDs, methodIDs []int64
	err := s.pool.QueryRow(ctx,
		`SELECT id, score_set_id, title, baseline_score, research_use_only, private, is_primary,
			investigator_provided, threshold_source_ids, classification_source_ids,
			method_source_ids, classifications
		 FROM score_calibrations WHERE score_set_id = $1`, scoreSetID,
	).Scan(
		&sc.ID, &sc.ScoreSetID, &sc.Title, &sc.BaselineScore, &sc.ResearchUseOnly, &sc.Private, &sc.Primary,
		&sc.InvestigatorProvided, &thresholdIDs, &classificationIDs, &methodIDs, &classifications,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting score calibration for score set %d: %w", scoreSetID, err)
	}
	if err := json.Unmarshal(classifications, &sc.Classifications); err != nil {
		return nil, fmt.Errorf("unmarshaling classifications: %w", err)
	}
	if sc.ThresholdSources, err = s.publicationsByIDs(ctx, thresholdIDs); err != nil {
		return nil, err
	}
	if sc.ClassificationSources, err = s.publicationsByIDs(ctx, classificationIDs); err != nil {
		return nil, err
	}
	if sc.MethodSources, err = s.publicationsByIDs(ctx, methodIDs); err != nil {
		return nil, err
	}
	return sc, nil
}

func publicationIDs(pubs []domain.PublicationIdentifier) []int64 {
	ids := make([]int64, len(pubs))
	for i, p := range pubs {
		ids[i] = p.ID
	}
	return ids
}

func (s *Store) publicationsByIDs(ctx context.Context, ids []int64) ([]domain.PublicationIdentifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, identifier, db_name, doi, title, abstract, authors, year, journal, url, reference_html
		 FROM publication_identifiers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("listing publications by id: %w", err)
	}
	defer rows.Close()

	var out []domain.PublicationIdentifier
	for rows.Next() {
		var p domain.PublicationIdentifier
		if err := rows.Scan(&p.ID, &p.Identifier, &p.DbName, &p.DOI, &p.Title, &p.Abstract,
			&p.Authors, &p.Year, &p.Journal, &p.URL, &p.ReferenceHTML); err != nil {
			return nil, fmt.Errorf("scanning publication row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
