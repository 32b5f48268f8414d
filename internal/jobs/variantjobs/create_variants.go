// Package variantjobs implements component G's variant-processing job
// functions (spec §4.G): creating Variant rows from validated tabular data
// and orchestrating their VRS mapping.
package variantjobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
	"github.com/mavedb/mavedb-core/internal/store"
	"github.com/mavedb/mavedb-core/internal/tabular"
	"github.com/mavedb/mavedb-core/internal/urn"
)

// Deps bundles what the job functions need beyond the JobManager's own
// store/progress access: the store and the mapping queue. Step 7's only
// queue side effect is the mapping-queue push; variant_mapper_manager is
// not enqueued from here, since cmd/worker runs it on its own ticker.
type Deps struct {
	Store        *store.Store
	MappingQueue *jobs.MappingQueue
}

// CreateVariantsForScoreSet implements spec §4.G
// create_variants_for_score_set. Failures of the score set's data (no
// target genes, an unusable target, tabular validation errors) are not
// returned — they are terminal states persisted to the score set itself,
// per "every failure branch persists terminal state and commits; the job
// never leaves the score set stuck in processing." The one ValidationError
// it returns is for a missing scores_df param, raised before the score set
// is touched. Infrastructure errors (a failed store call) are returned so
// the managed job decorator can apply its retry policy.
func CreateVariantsForScoreSet(deps Deps) jobs.JobFunc {
	return func(ctx context.Context, jm *jobs.JobManager, params map[string]any) (map[string]any, error) {
		scoreSetID, err := int64Param(params, "score_set_id")
		if err != nil {
			return nil, err
		}
		userID, err := int64Param(params, "user_id")
		if err != nil {
			return nil, err
		}
		scores, ok := params["scores_df"].(*tabular.DataFrame)
		if !ok || scores == nil {
			return nil, domain.NewValidationError("scores_df is required")
		}
		var counts *tabular.DataFrame
		if c, ok := params["counts_df"].(*tabular.DataFrame); ok {
			counts = c
		}

		scoreSet, err := deps.Store.GetScoreSetByID(ctx, scoreSetID)
		if err != nil {
			return nil, fmt.Errorf("loading score set %d: %w", scoreSetID, err)
		}

		// Step 1.
		if err := deps.Store.UpdateProcessingState(ctx, scoreSetID, domain.ProcessingInProgress, nil); err != nil {
			return nil, err
		}
		if err := deps.Store.UpdateMappingState(ctx, scoreSetID, domain.MappingPendingVariantProcessing, ""); err != nil {
			return nil, err
		}
		if err := deps.Store.SetModifiedBy(ctx, scoreSetID, userID); err != nil {
			return nil, err
		}

		genes, err := deps.Store.GetTargetGenes(ctx, scoreSetID)
		if err != nil {
			return nil, err
		}

		// Step 2.
		if len(genes) == 0 {
			return failProcessing(ctx, deps, jm, scoreSetID, "ScoreSet has no target genes", nil)
		}

		target, targetErr := resolveValidationTarget(genes)
		if targetErr != nil {
			return failProcessing(ctx, deps, jm, scoreSetID, targetErr.Error(), nil)
		}

		// Step 3.
		result := tabular.Validate(scores, counts, target, nil)
		if len(result.Errors) > 0 {
			return failProcessing(ctx, deps, jm, scoreSetID, "tabular validation failed", result.Errors)
		}

		jm.UpdateProgress(ctx, 1, 5, "validated")

		// Step 4.
		if err := deps.Store.DeleteVariantsByScoreSet(ctx, scoreSetID); err != nil {
			return nil, err
		}

		// Step 5.
		if err := deps.Store.UpdateDatasetColumns(ctx, scoreSetID, result.DatasetColumns); err != nil {
			return nil, err
		}

		// Step 6.
		hgvsNt, _ := scores.Column("hgvs_nt")
		hgvsSplice, _ := scores.Column("hgvs_splice")
		hgvsPro, _ := scores.Column("hgvs_pro")

		variants := make([]*domain.Variant, 0, len(scores.Rows))
		for i, row := range scores.Rows {
			scoreData := map[string]any{}
			for j, col := range scores.Columns {
				if col == "hgvs_nt" || col == "hgvs_splice" || col == "hgvs_pro" {
					continue
				}
				if j < len(row) && row[j] != nil {
					scoreData[col] = *row[j]
				}
			}
			var countData map[string]any
			if counts != nil && i < len(counts.Rows) {
				countData = map[string]any{}
				for j, col := range counts.Columns {
					if col == "hgvs_nt" || col == "hgvs_splice" || col == "hgvs_pro" {
						continue
					}
					if j < len(counts.Rows[i]) && counts.Rows[i][j] != nil {
						countData[col] = *counts.Rows[i][j]
					}
				}
			}

			v := &domain.Variant{
				URN:        urn.Variant(scoreSet.URN, i+1),
				ScoreSetID: scoreSetID,
				Data:       domain.VariantData{ScoreData: scoreData, CountData: countData},
			}
			if i < len(hgvsNt) {
				v.HGVSNt = hgvsNt[i]
			}
			if i < len(hgvsSplice) {
				v.HGVSSplice = hgvsSplice[i]
			}
			if i < len(hgvsPro) {
				v.HGVSPro = hgvsPro[i]
			}
			variants = append(variants, v)
		}

		if err := deps.Store.CreateVariants(ctx, variants); err != nil {
			return nil, err
		}

		jm.UpdateProgress(ctx, 4, 5, "variants created")

		// Step 7.
		if err := deps.Store.UpdateProcessingState(ctx, scoreSetID, domain.ProcessingSuccess, nil); err != nil {
			return nil, err
		}
		if err := deps.Store.SetNumVariants(ctx, scoreSetID, len(variants)); err != nil {
			return nil, err
		}
		if err := deps.Store.UpdateMappingState(ctx, scoreSetID, domain.MappingQueued, ""); err != nil {
			return nil, err
		}
		if deps.MappingQueue != nil {
			if err := deps.MappingQueue.Push(ctx, scoreSetID); err != nil {
				return nil, err
			}
		}

		jm.UpdateProgress(ctx, 5, 5, "queued for mapping")
		return map[string]any{"score_set_id": scoreSetID, "num_variants": len(variants)}, nil
	}
}

// failProcessing implements the rollback branch of step 3: persist a
// failed terminal state rather than returning an error, since a
// ValidationError is never retried and must not leave processing_state
// stuck at "processing" (spec §4.G "the job never leaves the score set
// stuck in processing").
func failProcessing(ctx context.Context, deps Deps, jm *jobs.JobManager, scoreSetID int64, message string, causes []domain.RowError) (map[string]any, error) {
	priorCount, countErr := deps.Store.CountVariants(ctx, scoreSetID)
	if countErr != nil {
		priorCount = 0
	}

	// "preserve any prior num_variants by prepending an 'Update failed' note"
	// — a score set that already had variants is being re-processed, so the
	// persisted exception must say so rather than reading like a first-time
	// validation failure.
	if priorCount > 0 {
		message = "Update failed, variants were not updated. " + message
	}

	procErrors := &domain.ProcessingErrors{
		Exception: message,
		Detail:    causes,
	}
	for _, c := range causes {
		procErrors.TriggeringExceptions = append(procErrors.TriggeringExceptions, c.String())
	}

	if err := deps.Store.UpdateProcessingState(ctx, scoreSetID, domain.ProcessingFailed, procErrors); err != nil {
		return nil, err
	}
	if err := deps.Store.UpdateMappingState(ctx, scoreSetID, domain.MappingNotAttempted, ""); err != nil {
		return nil, err
	}
	if priorCount > 0 {
		if err := deps.Store.SetNumVariants(ctx, scoreSetID, priorCount); err != nil {
			return nil, err
		}
	}

	jm.SaveToContext(map[string]any{"processing_errors": procErrors})
	return map[string]any{"score_set_id": scoreSetID, "processing_errors": procErrors}, nil
}

// resolveValidationTarget picks the TargetSequence the tabular validator
// checks hgvs_nt/hgvs_splice/hgvs_pro columns against. Mixing sequence- and
// accession-based target genes on one score set is rejected outright
// (spec §7 MixedTargetError). A score set whose target genes are all
// accession-based has no literal sequence to validate HGVS content
// against: resolving an external reference accession into a sequence is an
// external collaborator spec.md doesn't specify, so that case surfaces as
// a ValidationError rather than silently skipping content checks.
func resolveValidationTarget(genes []domain.TargetGene) (domain.TargetSequence, error) {
	sawSequence, sawAccession := false, false
	var seqTarget domain.TargetSequence
	for _, g := range genes {
		if g.Sequence != nil {
			sawSequence = true
			seqTarget = *g.Sequence
		}
		if g.Accession != nil {
			sawAccession = true
		}
	}
	if sawSequence && sawAccession {
		return domain.TargetSequence{}, fmt.Errorf("%w", domain.ErrMixedTarget)
	}
	if sawAccession {
		return domain.TargetSequence{}, domain.NewValidationError(
			"accession-based target genes require external reference sequence resolution, which is outside this job's scope")
	}
	return seqTarget, nil
}

func int64Param(params map[string]any, key string) (int64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required param %q", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("param %q is not an integer: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("param %q has unsupported type %T", key, v)
	}
}
