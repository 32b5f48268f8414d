package jobs

import (
	"context"
	"fmt"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/store"
)

// AnnotationManager is the "annotation status manager" of spec §4.F: a thin
// seam job functions call through rather than touching the store directly,
// so every annotation write goes through one place that always marks the
// new row current and lets the store demote whatever was current before.
type AnnotationManager struct {
	store *store.Store
}

func NewAnnotationManager(s *store.Store) *AnnotationManager {
	return &AnnotationManager{store: s}
}

// AddAnnotation records a new annotation attempt as the current one for its
// (variant, annotation type, version) tuple (spec §3 VariantAnnotationStatus
// "add_annotation atomically flips prior current=false then inserts").
func (a *AnnotationManager) AddAnnotation(ctx context.Context, variantID int64, annotationType domain.AnnotationType, version *string, status domain.AnnotationStatus, data map[string]any, errMsg *string, jobRunID *int64) error {
	row := &domain.VariantAnnotationStatus{
		VariantID:      variantID,
		AnnotationType: annotationType,
		Version:        version,
		Status:         status,
		Current:        true,
		AnnotationData: data,
		ErrorMessage:   errMsg,
		JobRunID:       jobRunID,
	}
	if err := a.store.CreateVariantAnnotationStatus(ctx, row); err != nil {
		return fmt.Errorf("adding %s annotation for variant %d: %w", annotationType, variantID, err)
	}
	return nil
}

// GetCurrent returns a current annotation status row for a variant and
// annotation type. It does not filter by version: when rows of different
// versions are each current, which of them it returns is not defined.
func (a *AnnotationManager) GetCurrent(ctx context.Context, variantID int64, annotationType domain.AnnotationType) (*domain.VariantAnnotationStatus, error) {
	return a.store.GetCurrentAnnotationStatus(ctx, variantID, annotationType)
}
