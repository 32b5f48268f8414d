package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/store"
)

// JobFunc is a unit of work the managed-job decorator wraps: it receives the
// injected JobManager and the JobRun's params, and returns the data to
// persist as JobRun.Result (spec §4.F "inject a JobManager ... execute the
// wrapped function").
type JobFunc func(ctx context.Context, jm *JobManager, params map[string]any) (map[string]any, error)

// JobResult is what RunManagedJob always returns, successful or not — the
// decorator never re-raises (spec §4.F "the decorated error flow does not
// re-raise; keep this behavior").
type JobResult struct {
	Status    domain.JobStatus
	Data      map[string]any
	Exception *domain.JobError
}

// Manager coordinates the job and pipeline lifecycle: loading/persisting
// JobRun and Pipeline rows, and re-enqueuing retried or follow-on steps.
type Manager struct {
	Store       *store.Store
	Queue       Queue
	Broadcaster *ProgressBroadcaster
	log         *logrus.Logger
}

func NewManager(s *store.Store, q Queue, log *logrus.Logger) *Manager {
	return &Manager{Store: s, Queue: q, Broadcaster: NewProgressBroadcaster(), log: log}
}

// RunManagedJob implements the managed-job lifecycle decorator (spec §4.F):
// load the JobRun by id, mark it RUNNING, inject a JobManager, execute fn,
// and persist a terminal or retried status depending on the outcome. It
// never returns an error for a job failure — only for infrastructure faults
// (the JobRun row itself is missing, or a status write fails), since those
// leave nothing to report through.
func (m *Manager) RunManagedJob(ctx context.Context, jobRunID int64, fn JobFunc) (JobResult, error) {
	job, err := m.Store.GetJobRun(ctx, jobRunID)
	if err != nil {
		return JobResult{}, fmt.Errorf("loading job run %d: %w", jobRunID, err)
	}

	now := time.Now()
	job.Status = domain.JobRunning
	job.StartedAt = &now
	if err := m.Store.UpdateJobRun(ctx, job); err != nil {
		return JobResult{}, fmt.Errorf("marking job run %d running: %w", jobRunID, err)
	}

	jm := &JobManager{store: m.Store, jobRunID: jobRunID, log: m.log, broadcaster: m.Broadcaster, contextData: map[string]any{}}

	result, runErr := fn(ctx, jm, job.JobParams)

	finished := time.Now()
	job.FinishedAt = &finished

	if runErr == nil {
		data := mergeContext(result, jm.contextData)
		job.Status = domain.JobSucceeded
		job.Result = data
		job.JobError = nil
		if err := m.Store.UpdateJobRun(ctx, job); err != nil {
			return JobResult{}, fmt.Errorf("persisting success for job run %d: %w", jobRunID, err)
		}
		m.log.WithFields(logrus.Fields{"job_run_id": jobRunID, "job_function": job.JobFunction}).Info("job succeeded")
		return JobResult{Status: domain.JobSucceeded, Data: data}, nil
	}

	jobErr := &domain.JobError{ExceptionClass: exceptionClass(runErr), Message: runErr.Error()}

	if domain.IsRetryable(runErr) && job.CanRetry() {
		job.Status = domain.JobRetried
		job.RetryCount++
		job.JobError = jobErr
		job.FinishedAt = nil
		if err := m.Store.UpdateJobRun(ctx, job); err != nil {
			return JobResult{}, fmt.Errorf("persisting retry for job run %d: %w", jobRunID, err)
		}
		if m.Queue != nil {
			if err := m.Queue.Enqueue(ctx, jobRunID); err != nil {
				return JobResult{}, fmt.Errorf("re-enqueuing job run %d: %w", jobRunID, err)
			}
		}
		m.log.WithFields(logrus.Fields{"job_run_id": jobRunID, "retry_count": job.RetryCount}).Warn("job retried")
		return JobResult{Status: domain.JobRetried, Exception: jobErr}, nil
	}

	job.Status = domain.JobFailed
	job.JobError = jobErr
	if err := m.Store.UpdateJobRun(ctx, job); err != nil {
		return JobResult{}, fmt.Errorf("persisting failure for job run %d: %w", jobRunID, err)
	}
	m.log.WithFields(logrus.Fields{"job_run_id": jobRunID, "error": runErr}).Error("job failed")
	return JobResult{Status: domain.JobFailed, Exception: jobErr}, nil
}

func mergeContext(result map[string]any, ctxData map[string]any) map[string]any {
	if result == nil {
		result = map[string]any{}
	}
	for k, v := range ctxData {
		if _, exists := result[k]; !exists {
			result[k] = v
		}
	}
	return result
}

func exceptionClass(err error) string {
	return fmt.Sprintf("%T", err)
}

// JobManager is injected into a JobFunc, giving it the ability to report
// progress and stash data that survives into the final result even if the
// function's own return value doesn't carry it (spec §4.F "update_progress,
// save_to_context").
type JobManager struct {
	store       *store.Store
	jobRunID    int64
	log         *logrus.Logger
	broadcaster *ProgressBroadcaster
	mu          sync.Mutex
	contextData map[string]any
}

// UpdateProgress persists progress counters immediately, independent of the
// job's terminal status write, so a long-running job's progress is visible
// to pollers mid-run, and fans the same update out to any websocket
// subscribers watching this job run.
func (jm *JobManager) UpdateProgress(ctx context.Context, completed, total int, message string) error {
	job, err := jm.store.GetJobRun(ctx, jm.jobRunID)
	if err != nil {
		return fmt.Errorf("loading job run %d for progress update: %w", jm.jobRunID, err)
	}
	job.Progress = domain.JobProgress{Completed: completed, Total: total, Message: message}
	if err := jm.store.UpdateJobRun(ctx, job); err != nil {
		return fmt.Errorf("persisting progress for job run %d: %w", jm.jobRunID, err)
	}
	if jm.broadcaster != nil {
		jm.broadcaster.Publish(ProgressEvent{JobRunID: jm.jobRunID, Progress: job.Progress})
	}
	return nil
}

// SaveToContext merges kv into the job's in-memory context, folded into the
// final result map once the job function returns.
func (jm *JobManager) SaveToContext(kv map[string]any) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	for k, v := range kv {
		jm.contextData[k] = v
	}
}

// JobRunID returns the id of the JobRun this JobManager was built for, for
// job functions that need to reference their own run (e.g. to set it as the
// source of a VariantAnnotationStatus).
func (jm *JobManager) JobRunID() int64 { return jm.jobRunID }

// Store exposes the underlying domain store for job functions that need
// direct database access beyond progress/context bookkeeping.
func (jm *JobManager) Store() *store.Store { return jm.store }
