package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// UpsertClinicalControl inserts or refreshes an external ClinVar enrichment
// row, keyed by (DbName, DbIdentifier) — component H's enrichment jobs
// re-run on a schedule and must converge on one row per accession rather
// than accumulate history (spec §3 ClinicalControl).
func (s *Store) UpsertClinicalControl(ctx context.Context, cc *domain.ClinicalControl) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clinical_controls (db_name, db_identifier, clinical_significance, review_status, gene_symbol, db_version)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (db_name, db_identifier) DO UPDATE SET
			clinical_significance = EXCLUDED.clinical_significance,
			review_status = EXCLUDED.review_status,
			gene_symbol = EXCLUDED.gene_symbol,
			db_version = EXCLUDED.db_version
		 RETURNING id, created_at`,
		cc.DbName, cc.DbIdentifier, cc.ClinicalSignificance, cc.ReviewStatus, cc.GeneSymbol, cc.DbVersion,
	).Scan(&cc.ID, &cc.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting clinical control %q/%q: %w", cc.DbName, cc.DbIdentifier, err)
	}
	return nil
}

// GetClinicalControl looks up a ClinicalControl by its (DbName,
// DbIdentifier) key.
func (s *Store) GetClinicalControl(ctx context.Context, dbName, dbIdentifier string) (*domain.ClinicalControl, error) {
	cc := &domain.ClinicalControl{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, db_name, db_identifier, clinical_significance, review_status, gene_symbol, db_version, created_at
		 FROM clinical_controls WHERE db_name = $1 AND db_identifier = $2`, dbName, dbIdentifier,
	).Scan(&cc.ID, &cc.DbName, &cc.DbIdentifier, &cc.ClinicalSignificance, &cc.ReviewStatus, &cc.GeneSymbol, &cc.DbVersion, &cc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting clinical control %q/%q: %w", dbName, dbIdentifier, err)
	}
	return cc, nil
}

// UpsertGnomADVariant inserts or refreshes an external gnomAD enrichment
// row, keyed by its gnomAD variant id.
func (s *Store) UpsertGnomADVariant(ctx context.Context, gv *domain.GnomADVariant) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO gnomad_variants (gnomad_variant_id, allele_count, allele_number, allele_frequency, homozygote_count)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (gnomad_variant_id) DO UPDATE SET
			allele_count = EXCLUDED.allele_count,
			allele_number = EXCLUDED.allele_number,
			allele_frequency = EXCLUDED.allele_frequency,
			homozygote_count = EXCLUDED.homozygote_count
		 RETURNING id, created_at`,
		gv.GnomADVariantID, gv.AlleleCount, gv.AlleleNumber, gv.AlleleFrequency, gv.HomozygoteCount,
	).Scan(&gv.ID, &gv.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting gnomad variant %q: %w", gv.GnomADVariantID, err)
	}
	return nil
}

// GetGnomADVariant looks up a GnomADVariant by its gnomAD variant id.
func (s *Store) GetGnomADVariant(ctx context.Context, gnomADVariantID string) (*domain.GnomADVariant, error) {
	gv := &domain.GnomADVariant{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, gnomad_variant_id, allele_count, allele_number, allele_frequency, homozygote_count, created_at
		 FROM gnomad_variants WHERE gnomad_variant_id = $1`, gnomADVariantID,
	).Scan(&gv.ID, &gv.GnomADVariantID, &gv.AlleleCount, &gv.AlleleNumber, &gv.AlleleFrequency, &gv.HomozygoteCount, &gv.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting gnomad variant %q: %w", gnomADVariantID, err)
	}
	return gv, nil
}

// LinkMappedVariantClinicalControl idempotently associates a MappedVariant
// with a ClinicalControl (spec §4.H "Link it to the MappedVariant
// (idempotent)").
func (s *Store) LinkMappedVariantClinicalControl(ctx context.Context, mappedVariantID, clinicalControlID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO mapped_variant_clinical_controls (mapped_variant_id, clinical_control_id)
		 VALUES ($1,$2) ON CONFLICT (mapped_variant_id, clinical_control_id) DO NOTHING`,
		mappedVariantID, clinicalControlID,
	)
	if err != nil {
		return fmt.Errorf("linking mapped variant %d to clinical control %d: %w", mappedVariantID, clinicalControlID, err)
	}
	return nil
}

// LinkMappedVariantGnomADVariant idempotently associates a MappedVariant
// with a GnomADVariant (spec §4.H "create the MappedVariant↔GnomADVariant
// link").
func (s *Store) LinkMappedVariantGnomADVariant(ctx context.Context, mappedVariantID, gnomadVariantID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO mapped_variant_gnomad_variants (mapped_variant_id, gnomad_variant_id)
		 VALUES ($1,$2) ON CONFLICT (mapped_variant_id, gnomad_variant_id) DO NOTHING`,
		mappedVariantID, gnomadVariantID,
	)
	if err != nil {
		return fmt.Errorf("linking mapped variant %d to gnomad variant %d: %w", mappedVariantID, gnomadVariantID, err)
	}
	return nil
}
