package enrichment

import (
	"context"
	"fmt"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
	"github.com/mavedb/mavedb-core/internal/jobs/variantjobs"
	"github.com/mavedb/mavedb-core/internal/store"
)

// ValidateClinVarDate enforces spec §4.H's bounds on the ClinVar archive
// date: the archive format predates 2015-02, and months outside 1-12 are
// nonsensical regardless.
func ValidateClinVarDate(year, month int) error {
	if month < 1 || month > 12 {
		return domain.NewValidationError(fmt.Sprintf("month %d out of range 1-12", month))
	}
	if year < 2015 || (year == 2015 && month < 2) {
		return domain.NewValidationError(fmt.Sprintf("no ClinVar archive exists for %04d-%02d", year, month))
	}
	return nil
}

// RefreshClinVarControls implements spec §4.H refresh_clinvar_controls.
func RefreshClinVarControls(db *store.Store, clinGen ClinGenClient, archive ClinVarArchiveClient, annotations *jobs.AnnotationManager) jobs.JobFunc {
	return func(ctx context.Context, jm *jobs.JobManager, params map[string]any) (map[string]any, error) {
		year, err := intParam(params, "year")
		if err != nil {
			return nil, err
		}
		month, err := intParam(params, "month")
		if err != nil {
			return nil, err
		}
		if err := ValidateClinVarDate(year, month); err != nil {
			return nil, err
		}

		body, err := archive.DownloadVariantSummary(ctx, year, month)
		if err != nil {
			return nil, fmt.Errorf("downloading clinvar archive for %04d-%02d: %w", year, month, err)
		}
		defer body.Close()

		tsv, err := ParseClinVarTSV(body)
		if err != nil {
			return nil, fmt.Errorf("parsing clinvar archive for %04d-%02d: %w", year, month, err)
		}

		mapped, err := db.ListCurrentMappedVariantsWithClinGenID(ctx)
		if err != nil {
			return nil, err
		}

		dbVersion := fmt.Sprintf("%02d_%04d", month, year)

		linked, skipped, failed := 0, 0, 0
		jm.UpdateProgress(ctx, 0, len(mapped), "refreshing clinvar controls")

		for i, mv := range mapped {
			caid := *mv.ClinGenAlleleID

			if variantjobs.HasMultiCAID(caid) {
				skipped++
				if err := recordClinVarAnnotation(ctx, annotations, mv.VariantID, domain.AnnotationSkipped, nil, strPtr("multi-variant")); err != nil {
					return nil, err
				}
				jm.UpdateProgress(ctx, i+1, len(mapped), "refreshing clinvar controls")
				continue
			}

			vcv, found, err := clinGen.ResolveVCV(ctx, caid)
			if err != nil {
				failed++
				if err := recordClinVarAnnotation(ctx, annotations, mv.VariantID, domain.AnnotationFailedStatus, nil, strPtr(fmt.Sprintf("ClinGen lookup failed: %v", err))); err != nil {
					return nil, err
				}
				jm.UpdateProgress(ctx, i+1, len(mapped), "refreshing clinvar controls")
				continue
			}
			if !found {
				skipped++
				if err := recordClinVarAnnotation(ctx, annotations, mv.VariantID, domain.AnnotationSkipped, nil, strPtr("no ClinVar allele found for CAID")); err != nil {
					return nil, err
				}
				jm.UpdateProgress(ctx, i+1, len(mapped), "refreshing clinvar controls")
				continue
			}

			row, ok := tsv[vcv]
			if !ok {
				skipped++
				if err := recordClinVarAnnotation(ctx, annotations, mv.VariantID, domain.AnnotationSkipped, nil, strPtr("VCV not present in this month's archive")); err != nil {
					return nil, err
				}
				jm.UpdateProgress(ctx, i+1, len(mapped), "refreshing clinvar controls")
				continue
			}

			cc := &domain.ClinicalControl{
				DbName:                "ClinVar",
				DbIdentifier:          vcv,
				ClinicalSignificance:  row.ClinicalSignificance,
				ReviewStatus:          row.ReviewStatus,
				GeneSymbol:            row.GeneSymbol,
				DbVersion:             dbVersion,
			}
			if err := db.UpsertClinicalControl(ctx, cc); err != nil {
				return nil, err
			}
			if err := db.LinkMappedVariantClinicalControl(ctx, mv.ID, cc.ID); err != nil {
				return nil, err
			}

			linked++
			if err := recordClinVarAnnotation(ctx, annotations, mv.VariantID, domain.AnnotationSuccess, map[string]any{
				"db_identifier": vcv,
				"db_version":    dbVersion,
			}, nil); err != nil {
				return nil, err
			}
			jm.UpdateProgress(ctx, i+1, len(mapped), "refreshing clinvar controls")
		}

		return map[string]any{
			"year": year, "month": month,
			"linked": linked, "skipped": skipped, "failed": failed,
		}, nil
	}
}

func recordClinVarAnnotation(ctx context.Context, annotations *jobs.AnnotationManager, variantID int64, status domain.AnnotationStatus, data map[string]any, errMsg *string) error {
	return annotations.AddAnnotation(ctx, variantID, domain.AnnotationClinVarControl, nil, status, data, errMsg, nil)
}

func strPtr(s string) *string { return &s }

func intParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required param %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("param %q has unsupported type %T", key, v)
	}
}
