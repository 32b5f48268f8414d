package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// RunPipelineStep implements the managed-pipeline decorator layered on top
// of RunManagedJob (spec §4.F "Pipeline coordination"). It enforces
// CREATED → RUNNING before the job executes, runs the step as a managed
// job, then coordinates the pipeline's next transition from the outcome.
func (m *Manager) RunPipelineStep(ctx context.Context, jobRunID, pipelineID int64, fn JobFunc) (JobResult, error) {
	pipeline, err := m.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		return JobResult{}, fmt.Errorf("loading pipeline %d: %w", pipelineID, err)
	}

	if pipeline.Status == domain.PipelineCreated {
		pipeline.Status = domain.PipelineRunning
		if err := m.Store.UpdatePipeline(ctx, pipeline); err != nil {
			return JobResult{}, fmt.Errorf("starting pipeline %d: %w", pipelineID, err)
		}
	} else if pipeline.Status != domain.PipelineRunning {
		return JobResult{}, fmt.Errorf("pipeline %d: %w", pipelineID, domain.ErrPipelineNotCreated)
	}

	result, err := m.RunManagedJob(ctx, jobRunID, fn)
	if err != nil {
		return result, err
	}

	if err := m.CoordinatePipeline(ctx, pipeline, result); err != nil {
		return result, fmt.Errorf("coordinating pipeline %d: %w", pipelineID, err)
	}
	return result, nil
}

// CoordinatePipeline applies the three-way transition spec §4.F specifies
// for pipeline coordination after each step completes:
//
//   - SUCCEEDED, not the last step: enqueue the next step's JobRun, advance
//     CurrentStep, leave the pipeline RUNNING.
//   - SUCCEEDED, last step: pipeline SUCCEEDED.
//   - FAILED (not RETRIED): pipeline FAILED, no further jobs enqueued.
//   - RETRIED: no-op — the pipeline stays RUNNING and the same step will
//     run again once its JobRun is re-enqueued by RunManagedJob.
func (m *Manager) CoordinatePipeline(ctx context.Context, pipeline *domain.Pipeline, result JobResult) error {
	switch result.Status {
	case domain.JobRetried:
		return nil

	case domain.JobFailed:
		finished := time.Now()
		pipeline.Status = domain.PipelineFailed
		pipeline.FinishedAt = &finished
		if err := m.Store.UpdatePipeline(ctx, pipeline); err != nil {
			return fmt.Errorf("marking pipeline %d failed: %w", pipeline.ID, err)
		}
		m.log.WithFields(logrus.Fields{"pipeline_id": pipeline.ID}).Error("pipeline failed")
		return nil

	case domain.JobSucceeded:
		if pipeline.IsLastStep() {
			finished := time.Now()
			pipeline.Status = domain.PipelineSucceeded
			pipeline.FinishedAt = &finished
			if err := m.Store.UpdatePipeline(ctx, pipeline); err != nil {
				return fmt.Errorf("marking pipeline %d succeeded: %w", pipeline.ID, err)
			}
			m.log.WithFields(logrus.Fields{"pipeline_id": pipeline.ID}).Info("pipeline succeeded")
			return nil
		}

		pipeline.CurrentStep++
		step := pipeline.Steps[pipeline.CurrentStep]
		next := &domain.JobRun{
			JobType:     string(pipeline.PipelineType),
			JobFunction: step.JobFunction,
			Status:      domain.JobPending,
			JobParams:   step.ParamTemplate,
			MaxRetries:  3,
			PipelineID:  &pipeline.ID,
		}
		if err := m.Store.CreateJobRun(ctx, next); err != nil {
			return fmt.Errorf("creating job run for pipeline %d step %d: %w", pipeline.ID, pipeline.CurrentStep, err)
		}
		if err := m.Store.UpdatePipeline(ctx, pipeline); err != nil {
			return fmt.Errorf("advancing pipeline %d to step %d: %w", pipeline.ID, pipeline.CurrentStep, err)
		}
		if m.Queue != nil {
			if err := m.Queue.Enqueue(ctx, next.ID); err != nil {
				return fmt.Errorf("enqueuing pipeline %d step %d: %w", pipeline.ID, pipeline.CurrentStep, err)
			}
		}
		return nil

	default:
		return nil
	}
}

// StartPipeline registers a new Pipeline in CREATED status and creates (but
// does not enqueue until the caller is ready) the JobRun for its first step.
func (m *Manager) StartPipeline(ctx context.Context, pipelineType domain.PipelineType, steps []domain.PipelineStep) (*domain.Pipeline, *domain.JobRun, error) {
	if len(steps) == 0 {
		return nil, nil, fmt.Errorf("pipeline %s: no steps registered", pipelineType)
	}
	pipeline := &domain.Pipeline{
		Status:       domain.PipelineCreated,
		PipelineType: pipelineType,
		Steps:        steps,
		CurrentStep:  0,
	}
	if err := m.Store.CreatePipeline(ctx, pipeline); err != nil {
		return nil, nil, fmt.Errorf("creating pipeline %s: %w", pipelineType, err)
	}

	first := &domain.JobRun{
		JobType:     string(pipelineType),
		JobFunction: steps[0].JobFunction,
		Status:      domain.JobPending,
		JobParams:   steps[0].ParamTemplate,
		MaxRetries:  3,
		PipelineID:  &pipeline.ID,
	}
	if err := m.Store.CreateJobRun(ctx, first); err != nil {
		return nil, nil, fmt.Errorf("creating first job run for pipeline %s: %w", pipelineType, err)
	}
	return pipeline, first, nil
}
