package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// CreateJobRun persists a new JobRun record before its function executes
// (spec §3 JobRun "Created before execution").
func (s *Store) CreateJobRun(ctx context.Context, j *domain.JobRun) error {
	params, err := json.Marshal(j.JobParams)
	if err != nil {
		return fmt.Errorf("marshaling job_params: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO job_runs (job_type, job_function, status, job_params, max_retries, pipeline_id, mavedb_version)
		 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at`,
		j.JobType, j.JobFunction, j.Status, params, j.MaxRetries, j.PipelineID, j.MavedbVersion,
	).Scan(&j.ID, &j.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating job run: %w", err)
	}
	return nil
}

// GetJobRun loads a JobRun by id, returning domain.ErrNotFound if absent
// (spec §4.F "Load the JobRun by id; refuse if absent").
func (s *Store) GetJobRun(ctx context.Context, id int64) (*domain.JobRun, error) {
	j := &domain.JobRun{ID: id}
	var params, result, jobErr []byte
	err := s.pool.QueryRow(ctx,
		`SELECT job_type, job_function, status, job_params, progress_completed, progress_total,
			progress_message, result, job_error, retry_count, max_retries, pipeline_id,
			mavedb_version, created_at, started_at, finished_at
		 FROM job_runs WHERE id = $1`, id,
	).Scan(&j.JobType, &j.JobFunction, &j.Status, &params, &j.Progress.Completed, &j.Progress.Total,
		&j.Progress.Message, &result, &jobErr, &j.RetryCount, &j.MaxRetries, &j.PipelineID,
		&j.MavedbVersion, &j.CreatedAt, &j.StartedAt, &j.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting job run %d: %w", id, err)
	}
	if len(params) > 0 {
		json.Unmarshal(params, &j.JobParams)
	}
	if len(result) > 0 {
		json.Unmarshal(result, &j.Result)
	}
	if len(jobErr) > 0 {
		j.JobError = &domain.JobError{}
		json.Unmarshal(jobErr, j.JobError)
	}
	return j, nil
}

// UpdateJobRun persists a JobRun's mutable lifecycle fields: status,
// progress, result/error payload, retry count, and timestamps (spec §4.F
// steps 2-5, the managed-job decorator's only write path).
func (s *Store) UpdateJobRun(ctx context.Context, j *domain.JobRun) error {
	result, err := json.Marshal(j.Result)
	if err != nil {
		return fmt.Errorf("marshaling job result: %w", err)
	}
	var jobErr []byte
	if j.JobError != nil {
		jobErr, err = json.Marshal(j.JobError)
		if err != nil {
			return fmt.Errorf("marshaling job error: %w", err)
		}
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE job_runs SET status = $1, progress_completed = $2, progress_total = $3,
			progress_message = $4, result = $5, job_error = $6, retry_count = $7,
			started_at = $8, finished_at = $9
		 WHERE id = $10`,
		j.Status, j.Progress.Completed, j.Progress.Total, j.Progress.Message, result, jobErr,
		j.RetryCount, j.StartedAt, j.FinishedAt, j.ID,
	)
	if err != nil {
		return fmt.Errorf("updating job run %d: %w", j.ID, err)
	}
	return nil
}

// CreatePipeline persists a pre-registered pipeline's step list and initial
// CREATED status (spec §3 Pipeline).
func (s *Store) CreatePipeline(ctx context.Context, p *domain.Pipeline) error {
	steps, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("marshaling pipeline steps: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO pipelines (status, pipeline_type, steps, current_step)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		p.Status, p.PipelineType, steps, p.CurrentStep,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}
	return nil
}

// GetPipeline loads a Pipeline by id.
func (s *Store) GetPipeline(ctx context.Context, id int64) (*domain.Pipeline, error) {
	p := &domain.Pipeline{ID: id}
	var steps []byte
	err := s.pool.QueryRow(ctx,
		`SELECT status, pipeline_type, steps, current_step, created_at, finished_at
		 FROM pipelines WHERE id = $1`, id,
	).Scan(&p.Status, &p.PipelineType, &steps, &p.CurrentStep, &p.CreatedAt, &p.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting pipeline %d: %w", id, err)
	}
	if err := json.Unmarshal(steps, &p.Steps); err != nil {
		return nil, fmt.Errorf("unmarshaling pipeline steps: %w", err)
	}
	return p, nil
}

// UpdatePipeline persists a Pipeline's mutable fields: status, current
// step, and terminal timestamp (spec §4.F "Pipeline lifecycle").
func (s *Store) UpdatePipeline(ctx context.Context, p *domain.Pipeline) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE pipelines SET status = $1, current_step = $2, finished_at = $3 WHERE id = $4`,
		p.Status, p.CurrentStep, p.FinishedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pipeline %d: %w", p.ID, err)
	}
	return nil
}
