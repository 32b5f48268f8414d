package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// CreateVariantAnnotationStatus appends a new annotation attempt record,
// demoting any prior current row for the same (variant_id, annotation_type,
// version) first — VariantAnnotationStatus is append-only history with a
// single current flag per (spec §3 VariantAnnotationStatus).
func (s *Store) CreateVariantAnnotationStatus(ctx context.Context, status *domain.VariantAnnotationStatus) error {
	data, err := json.Marshal(status.AnnotationData)
	if err != nil {
		return fmt.Errorf("marshaling annotation_data: %w", err)
	}

	_, err = withTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		if status.Current {
			if _, err := tx.Exec(ctx,
				`UPDATE variant_annotation_statuses SET current = false
				 WHERE variant_id = $1 AND annotation_type = $2 AND version IS NOT DISTINCT FROM $3 AND current = true`,
				status.VariantID, status.AnnotationType, status.Version,
			); err != nil {
				return struct{}{}, fmt.Errorf("demoting prior current annotation status: %w", err)
			}
		}

		err := tx.QueryRow(ctx,
			`INSERT INTO variant_annotation_statuses (
				variant_id, annotation_type, version, status, current, annotation_data, error_message, job_run_id
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
			status.VariantID, status.AnnotationType, status.Version, status.Status, status.Current,
			data, status.ErrorMessage, status.JobRunID,
		).Scan(&status.ID, &status.CreatedAt)
		if err != nil {
			return struct{}{}, fmt.Errorf("creating variant annotation status for variant %d: %w", status.VariantID, err)
		}
		return struct{}{}, nil
	})
	return err
}

// GetCurrentAnnotationStatus fetches the current annotation status for one
// variant and annotation type, if any.
func (s *Store) GetCurrentAnnotationStatus(ctx context.Context, variantID int64, annotationType domain.AnnotationType) (*domain.VariantAnnotationStatus, error) {
	status := &domain.VariantAnnotationStatus{}
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, variant_id, annotation_type, version, status, current, annotation_data, error_message, job_run_id, created_at
		 FROM variant_annotation_statuses
		 WHERE variant_id = $1 AND annotation_type = $2 AND current = true`, variantID, annotationType,
	).Scan(&status.ID, &status.VariantID, &status.AnnotationType, &status.Version, &status.Status,
		&status.Current, &data, &status.ErrorMessage, &status.JobRunID, &status.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting current annotation status for variant %d: %w", variantID, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &status.AnnotationData); err != nil {
			return nil, fmt.Errorf("unmarshaling annotation_data: %w", err)
		}
	}
	return status, nil
}
