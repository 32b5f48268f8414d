package variantjobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
)

// Mapper is the VRS mapping service seam (spec §6 "VRS mapper:
// map_score_set(urn) returns {mapped_scores[], reference_sequences{...},
// mapped_date_utc, dcd_mapping_version}"). The call is off-loop per spec §5
// ("dispatched via loop.run_in_executor"); this interface hides whatever
// transport implements that (HTTP, subprocess, worker-pool RPC).
type Mapper interface {
	MapScoreSet(ctx context.Context, scoreSetURN string) (*domain.VRSMappingResult, error)
}

// MapVariantsForScoreSet implements spec §4.G map_variants_for_score_set.
func MapVariantsForScoreSet(deps Deps, mapper Mapper, annotations *jobs.AnnotationManager, jobRunID int64, userID int64) jobs.JobFunc {
	return func(ctx context.Context, jm *jobs.JobManager, params map[string]any) (map[string]any, error) {
		scoreSetID, err := int64Param(params, "score_set_id")
		if err != nil {
			return nil, err
		}

		scoreSet, err := deps.Store.GetScoreSetByID(ctx, scoreSetID)
		if err != nil {
			return nil, fmt.Errorf("loading score set %d: %w", scoreSetID, err)
		}

		// Step 1.
		if err := deps.Store.UpdateMappingState(ctx, scoreSetID, domain.MappingProcessing, ""); err != nil {
			return nil, err
		}
		if err := deps.Store.SetModifiedBy(ctx, scoreSetID, userID); err != nil {
			return nil, err
		}

		// Step 2.
		result, err := mapper.MapScoreSet(ctx, scoreSet.URN)
		if err != nil {
			return nil, failMapping(ctx, deps, scoreSetID, &domain.RetryableError{Err: err})
		}
		if result == nil || len(result.ReferenceSequences) == 0 {
			return nil, failMapping(ctx, deps, scoreSetID, &domain.RetryableError{Err: domain.ErrNonexistentReference})
		}
		if len(result.MappedScores) == 0 {
			return nil, failMapping(ctx, deps, scoreSetID, &domain.RetryableError{Err: domain.ErrNonexistentScores})
		}

		// Step 3: persist each referenced target gene's mapped reference
		// sequence metadata, matched by label or accession against the
		// mapper's reference_sequences keys.
		genes, err := deps.Store.GetTargetGenes(ctx, scoreSetID)
		if err != nil {
			return nil, err
		}
		for _, gene := range genes {
			var key string
			switch {
			case gene.Accession != nil:
				key = gene.Accession.Accession
			default:
				key = gene.Label
			}
			info, ok := result.ReferenceSequences[key]
			if !ok {
				continue
			}
			if err := deps.Store.UpdateTargetGeneMappedReferenceSequence(ctx, gene.ID, info); err != nil {
				return nil, err
			}
		}

		variants, err := deps.Store.GetVariantsByScoreSet(ctx, scoreSetID)
		if err != nil {
			return nil, err
		}
		byURN := make(map[string]*domain.Variant, len(variants))
		for _, v := range variants {
			byURN[v.URN] = v
		}

		jm.UpdateProgress(ctx, 0, len(result.MappedScores), "mapping variants")

		succeeded, failed := 0, 0
		for i, ms := range result.MappedScores {
			v, ok := byURN[ms.VariantURN]
			if !ok {
				failed++
				continue
			}

			mv := &domain.MappedVariant{
				VariantID:         v.ID,
				PreMapped:         ms.PreMapped,
				PostMapped:        ms.PostMapped,
				VRSVersion:        result.DCDMappingVersion,
				MappingAPIVersion: result.DCDMappingVersion,
				MappedDate:        result.MappedDateUTC,
				Current:           true,
			}
			if ms.ClinGenAlleleID != "" {
				caid := ms.ClinGenAlleleID
				mv.ClinGenAlleleID = &caid
			}
			if err := deps.Store.CreateMappedVariant(ctx, mv); err != nil {
				return nil, err
			}

			status := domain.AnnotationSuccess
			var errMsg *string
			if len(ms.PreMapped) == 0 || len(ms.PostMapped) == 0 {
				status = domain.AnnotationFailedStatus
				msg := "mapping produced an incomplete pre/post-mapped payload"
				errMsg = &msg
				failed++
			} else {
				succeeded++
			}
			if err := annotations.AddAnnotation(ctx, v.ID, domain.AnnotationVRSMapping, nil, status, map[string]any{
				"mapping_api_version": result.DCDMappingVersion,
			}, errMsg, &jobRunID); err != nil {
				return nil, err
			}

			jm.UpdateProgress(ctx, i+1, len(result.MappedScores), "mapping variants")
		}

		// Step 5.
		var finalState domain.MappingState
		switch {
		case failed == 0:
			finalState = domain.MappingComplete
		case succeeded == 0:
			finalState = domain.MappingFailed
		default:
			finalState = domain.MappingIncomplete
		}
		if err := deps.Store.UpdateMappingState(ctx, scoreSetID, finalState, ""); err != nil {
			return nil, err
		}

		return map[string]any{
			"score_set_id":  scoreSetID,
			"mapping_state": string(finalState),
			"succeeded":     succeeded,
			"failed":        failed,
		}, nil
	}
}

// HasMultiCAID reports whether a ClinGen allele id string encodes more than
// one CAID (comma-separated), the shape component H's enrichment jobs must
// skip rather than attempt to resolve to a single ClinicalControl/GnomAD
// record (spec §4.H "if the id is comma-separated (multi-variant)...").
func HasMultiCAID(caid string) bool {
	return strings.Contains(caid, ",")
}

// failMapping persists the step-2/step-6 typed-error failure branch of
// map_variants_for_score_set: mapping_state = failed with a recorded
// message, never leaving a score set stuck in "processing" — and returns
// the error wrapped as retryable, so the managed job decorator's retry
// policy decides whether this attempt gets retried or is truly terminal
// (spec §7 "terminal for the mapping job after retry exhaustion").
func failMapping(ctx context.Context, deps Deps, scoreSetID int64, err error) error {
	if updateErr := deps.Store.UpdateMappingState(ctx, scoreSetID, domain.MappingFailed, err.Error()); updateErr != nil {
		return fmt.Errorf("recording mapping failure for score set %d: %w", scoreSetID, updateErr)
	}
	return err
}
