package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/store/storetest"
)

func TestJobRun_CreateGetUpdate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	job := &domain.JobRun{
		JobType:     "variant_processing",
		JobFunction: domain.JobCreateVariantsForScoreSet,
		Status:      domain.JobPending,
		JobParams:   map[string]any{"score_set_id": float64(1)},
		MaxRetries:  3,
	}
	require.NoError(t, s.CreateJobRun(ctx, job))
	assert.NotZero(t, job.ID)
	assert.NotZero(t, job.CreatedAt)

	fetched, err := s.GetJobRun(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.JobType, fetched.JobType)
	assert.Equal(t, domain.JobPending, fetched.Status)
	assert.Equal(t, float64(1), fetched.JobParams["score_set_id"])

	fetched.Status = domain.JobSucceeded
	fetched.Result = map[string]any{"num_variants": float64(10)}
	fetched.Progress = domain.JobProgress{Completed: 10, Total: 10, Message: "done"}
	require.NoError(t, s.UpdateJobRun(ctx, fetched))

	reloaded, err := s.GetJobRun(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSucceeded, reloaded.Status)
	assert.Equal(t, float64(10), reloaded.Result["num_variants"])
	assert.Equal(t, 10, reloaded.Progress.Completed)
	assert.Equal(t, "done", reloaded.Progress.Message)
}

func TestJobRun_NotFound(t *testing.T) {
	s := storetest.New(t)
	_, err := s.GetJobRun(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPipeline_CreateGetUpdate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	p := &domain.Pipeline{
		Status:       domain.PipelineCreated,
		PipelineType: domain.PipelineVariantIngestAndMap,
		Steps: []domain.PipelineStep{
			{JobFunction: domain.JobCreateVariantsForScoreSet},
			{JobFunction: domain.JobMapVariantsForScoreSet},
		},
	}
	require.NoError(t, s.CreatePipeline(ctx, p))
	assert.NotZero(t, p.ID)

	fetched, err := s.GetPipeline(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Steps, 2)
	assert.Equal(t, domain.JobMapVariantsForScoreSet, fetched.Steps[1].JobFunction)
	assert.False(t, fetched.IsLastStep())

	fetched.CurrentStep = 1
	fetched.Status = domain.PipelineRunning
	require.NoError(t, s.UpdatePipeline(ctx, fetched))

	reloaded, err := s.GetPipeline(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CurrentStep)
	assert.True(t, reloaded.IsLastStep())
	assert.Equal(t, domain.PipelineRunning, reloaded.Status)
}
