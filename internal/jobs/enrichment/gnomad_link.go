package enrichment

import (
	"context"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
	"github.com/mavedb/mavedb-core/internal/jobs/variantjobs"
	"github.com/mavedb/mavedb-core/internal/store"
)

// LinkGnomADVariants implements spec §4.H link_gnomad_variants: batch-query
// gnomAD by non-multi CAID, upsert matches, link idempotently, and record a
// GNOMAD_ALLELE_FREQUENCY annotation per variant. Does not touch
// mapping_state.
func LinkGnomADVariants(db *store.Store, gnomad GnomADClient, annotations *jobs.AnnotationManager) jobs.JobFunc {
	return func(ctx context.Context, jm *jobs.JobManager, params map[string]any) (map[string]any, error) {
		mapped, err := db.ListCurrentMappedVariantsWithClinGenID(ctx)
		if err != nil {
			return nil, err
		}

		eligible := make([]*domain.MappedVariant, 0, len(mapped))
		caids := make([]string, 0, len(mapped))
		for _, mv := range mapped {
			if variantjobs.HasMultiCAID(*mv.ClinGenAlleleID) {
				continue
			}
			eligible = append(eligible, mv)
			caids = append(caids, *mv.ClinGenAlleleID)
		}

		matches, err := gnomad.BatchQuery(ctx, caids)
		if err != nil {
			return nil, &domain.RetryableError{Err: err}
		}

		matched, skipped := 0, 0
		jm.UpdateProgress(ctx, 0, len(eligible), "linking gnomad variants")

		for i, mv := range eligible {
			gv, ok := matches[*mv.ClinGenAlleleID]
			if !ok {
				skipped++
				if err := annotations.AddAnnotation(ctx, mv.VariantID, domain.AnnotationGnomADAlleleFrequency, nil, domain.AnnotationSkipped, nil, nil, nil); err != nil {
					return nil, err
				}
				jm.UpdateProgress(ctx, i+1, len(eligible), "linking gnomad variants")
				continue
			}

			if err := db.UpsertGnomADVariant(ctx, &gv); err != nil {
				return nil, err
			}
			if err := db.LinkMappedVariantGnomADVariant(ctx, mv.ID, gv.ID); err != nil {
				return nil, err
			}

			matched++
			if err := annotations.AddAnnotation(ctx, mv.VariantID, domain.AnnotationGnomADAlleleFrequency, nil, domain.AnnotationSuccess, map[string]any{
				"allele_frequency": gv.AlleleFrequency,
				"allele_count":     gv.AlleleCount,
			}, nil, nil); err != nil {
				return nil, err
			}
			jm.UpdateProgress(ctx, i+1, len(eligible), "linking gnomad variants")
		}

		return map[string]any{"matched": matched, "skipped": skipped}, nil
	}
}
