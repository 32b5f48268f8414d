package jobs

import (
	"context"
	"fmt"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// RunGuaranteed implements with_guaranteed_job_run_record (spec §4.F): it
// creates the JobRun row itself (rather than requiring a caller to have
// pre-created one) and then runs it through the managed-job decorator. It
// is the entrypoint component H's cron-like jobs use, since those are
// triggered on a schedule rather than enqueued as a pipeline step.
//
// Combining a guaranteed job run record with pipeline management is
// rejected (spec §4.F "attempting to combine ... is rejected") — a
// guaranteed job always owns its own JobRun from scratch, which conflicts
// with a pipeline step's JobRun being created by CoordinatePipeline.
func (m *Manager) RunGuaranteed(ctx context.Context, jobType string, jobFunction domain.JobFunction, params map[string]any, maxRetries int, pipelineID *int64, fn JobFunc) (JobResult, error) {
	if pipelineID != nil {
		return JobResult{}, domain.ErrGuaranteedWithPipeline
	}

	job := &domain.JobRun{
		JobType:     jobType,
		JobFunction: jobFunction,
		Status:      domain.JobPending,
		JobParams:   params,
		MaxRetries:  maxRetries,
	}
	if err := m.Store.CreateJobRun(ctx, job); err != nil {
		return JobResult{}, fmt.Errorf("creating guaranteed job run for %s: %w", jobFunction, err)
	}

	return m.RunManagedJob(ctx, job.ID, fn)
}
