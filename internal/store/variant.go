package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// CreateVariants bulk-inserts variants for a score set inside one
// transaction, so a mid-batch failure leaves no partial Variant rows
// behind (component G relies on this for its all-or-nothing ingest step).
func (s *Store) CreateVariants(ctx context.Context, variants []*domain.Variant) error {
	_, err := withTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		for _, v := range variants {
			data, err := json.Marshal(v.Data)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshaling variant data: %w", err)
			}
			err = tx.QueryRow(ctx,
				`INSERT INTO variants (urn, score_set_id, hgvs_nt, hgvs_splice, hgvs_pro, data)
				 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
				v.URN, v.ScoreSetID, v.HGVSNt, v.HGVSSplice, v.HGVSPro, data,
			).Scan(&v.ID, &v.CreatedAt)
			if err != nil {
				return struct{}{}, fmt.Errorf("creating variant %q: %w", v.URN, err)
			}
		}
		return struct{}{}, nil
	})
	return err
}

// GetVariantsByScoreSet lists every Variant bound to a score set, ordered
// by their URN's numeric suffix (the teacher's repository idiom of one
// query per access pattern, generalized from GetByGene's pagination shape
// to an unpaginated full-set fetch since calibration/mapping both need the
// whole set at once).
func (s *Store) GetVariantsByScoreSet(ctx context.Context, scoreSetID int64) ([]*domain.Variant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, urn, score_set_id, hgvs_nt, hgvs_splice, hgvs_pro, data, created_at
		 FROM variants WHERE score_set_id = $1
		 ORDER BY (split_part(urn, '#', 2))::int`, scoreSetID)
	if err != nil {
		return nil, fmt.Errorf("listing variants for score set %d: %w", scoreSetID, err)
	}
	defer rows.Close()

	var variants []*domain.Variant
	for rows.Next() {
		v := &domain.Variant{}
		var data []byte
		if err := rows.Scan(&v.ID, &v.URN, &v.ScoreSetID, &v.HGVSNt, &v.HGVSSplice, &v.HGVSPro, &data, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning variant row: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &v.Data); err != nil {
				return nil, fmt.Errorf("unmarshaling variant data: %w", err)
			}
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// RenumberVariantURNs rewrites every variant URN for scoreSetID to
// `<newScoreSetURN>#<n>`, preserving each row's original n (spec §4.I step
// 4).
func (s *Store) RenumberVariantURNs(ctx context.Context, scoreSetID int64, newScoreSetURN string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE variants SET urn = $1 || '#' || split_part(urn, '#', 2) WHERE score_set_id = $2`,
		newScoreSetURN, scoreSetID,
	)
	if err != nil {
		return fmt.Errorf("renumbering variant urns for score set %d: %w", scoreSetID, err)
	}
	return nil
}

// CountVariants reports how many Variant rows exist for a score set, used
// by the publish rejection rule "publishing a ScoreSet with zero variants".
func (s *Store) CountVariants(ctx context.Context, scoreSetID int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM variants WHERE score_set_id = $1`, scoreSetID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting variants for score set %d: %w", scoreSetID, err)
	}
	return n, nil
}

// CreateMappedVariant inserts a MappedVariant, flipping any existing
// current=true row for the same (variant_id, annotation version) to false
// first (spec §3 MappedVariant invariant: at most one current row per
// (variant_id, annotation_type, version)).
func (s *Store) CreateMappedVariant(ctx context.Context, mv *domain.MappedVariant) error {
	_, err := withTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		if mv.Current {
			if _, err := tx.Exec(ctx,
				`UPDATE mapped_variants SET current = false WHERE variant_id = $1 AND mapping_api_version = $2 AND current = true`,
				mv.VariantID, mv.MappingAPIVersion,
			); err != nil {
				return struct{}{}, fmt.Errorf("demoting prior current mapped variant: %w", err)
			}
		}

		preMapped, err := json.Marshal(mv.PreMapped)
		if err != nil {
			return struct{}{}, fmt.Errorf("marshaling pre_mapped: %w", err)
		}
		postMapped, err := json.Marshal(mv.PostMapped)
		if err != nil {
			return struct{}{}, fmt.Errorf("marshaling post_mapped: %w", err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO mapped_variants (
				variant_id, pre_mapped, post_mapped, vrs_version, mapping_api_version,
				mapped_date, current, clingen_allele_id, error_message
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
			mv.VariantID, preMapped, postMapped, mv.VRSVersion, mv.MappingAPIVersion,
			mv.MappedDate, mv.Current, mv.ClinGenAlleleID, mv.ErrorMessage,
		).Scan(&mv.ID)
		if err != nil {
			return struct{}{}, fmt.Errorf("creating mapped variant for variant %d: %w", mv.VariantID, err)
		}
		return struct{}{}, nil
	})
	return err
}

// GetCurrentMappedVariants lists every current MappedVariant for a score
// set's variants, the input set component H's enrichment jobs iterate.
func (s *Store) GetCurrentMappedVariants(ctx context.Context, scoreSetID int64) ([]*domain.MappedVariant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT mv.id, mv.variant_id, mv.pre_mapped, mv.post_mapped, mv.vrs_version,
			mv.mapping_api_version, mv.mapped_date, mv.current, mv.clingen_allele_id, mv.error_message
		 FROM mapped_variants mv
		 JOIN variants v ON v.id = mv.variant_id
		 WHERE v.score_set_id = $1 AND mv.current = true`, scoreSetID)
	if err != nil {
		return nil, fmt.Errorf("listing current mapped variants for score set %d: %w", scoreSetID, err)
	}
	defer rows.Close()

	var out []*domain.MappedVariant
	for rows.Next() {
		mv := &domain.MappedVariant{}
		var preMapped, postMapped []byte
		if err := rows.Scan(&mv.ID, &mv.VariantID, &preMapped, &postMapped, &mv.VRSVersion,
			&mv.MappingAPIVersion, &mv.MappedDate, &mv.Current, &mv.ClinGenAlleleID, &mv.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning mapped variant row: %w", err)
		}
		if len(preMapped) > 0 {
			json.Unmarshal(preMapped, &mv.PreMapped)
		}
		if len(postMapped) > 0 {
			json.Unmarshal(postMapped, &mv.PostMapped)
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

// ListCurrentMappedVariantsWithClinGenID returns every current MappedVariant
// across all score sets that carries a ClinGen allele id, the system-wide
// scan component H's scheduled enrichment jobs (refresh_clinvar_controls,
// link_gnomad_variants) run over rather than one score set at a time.
func (s *Store) ListCurrentMappedVariantsWithClinGenID(ctx context.Context) ([]*domain.MappedVariant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT mv.id, mv.variant_id, mv.pre_mapped, mv.post_mapped, mv.vrs_version,
			mv.mapping_api_version, mv.mapped_date, mv.current, mv.clingen_allele_id, mv.error_message
		 FROM mapped_variants mv
		 WHERE mv.current = true AND mv.clingen_allele_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing current mapped variants with clingen ids: %w", err)
	}
	defer rows.Close()

	var out []*domain.MappedVariant
	for rows.Next() {
		mv := &domain.MappedVariant{}
		var preMapped, postMapped []byte
		if err := rows.Scan(&mv.ID, &mv.VariantID, &preMapped, &postMapped, &mv.VRSVersion,
			&mv.MappingAPIVersion, &mv.MappedDate, &mv.Current, &mv.ClinGenAlleleID, &mv.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning mapped variant row: %w", err)
		}
		if len(preMapped) > 0 {
			json.Unmarshal(preMapped, &mv.PreMapped)
		}
		if len(postMapped) > 0 {
			json.Unmarshal(postMapped, &mv.PostMapped)
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}
