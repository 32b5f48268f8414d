package domain

import "time"

// JobProgress is the (completed, total, message) tuple a running job reports
// through JobManager.UpdateProgress (spec §4.F).
type JobProgress struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
}

// JobRun is the persistent lifecycle record for one job execution
// (spec §3 JobRun).
type JobRun struct {
	ID          int64
	JobType     string
	JobFunction JobFunction
	Status      JobStatus
	JobParams   map[string]any
	Progress    JobProgress
	Result      map[string]any
	JobError    *JobError

	RetryCount int
	MaxRetries int

	PipelineID *int64

	MavedbVersion string

	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

// CanRetry reports whether another retry attempt is permitted.
func (j *JobRun) CanRetry() bool { return j.RetryCount < j.MaxRetries }

// PipelineStep is one entry in a pipeline's pre-registered ordered steps
// (spec §3 Pipeline, §4.F).
type PipelineStep struct {
	JobFunction   JobFunction
	ParamTemplate map[string]any
}

// Pipeline coordinates a multi-step workflow across JobRuns
// (spec §3 Pipeline).
type Pipeline struct {
	ID           int64
	Status       PipelineStatus
	PipelineType PipelineType
	Steps        []PipelineStep
	CurrentStep  int

	CreatedAt  time.Time
	FinishedAt *time.Time
}

// IsLastStep reports whether CurrentStep is the final registered step.
func (p *Pipeline) IsLastStep() bool { return p.CurrentStep == len(p.Steps)-1 }
