package variantjobs

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
	"github.com/mavedb/mavedb-core/internal/store/storetest"
	"github.com/mavedb/mavedb-core/internal/tabular"
)

// TestCreateVariantsForScoreSet_FailureOnReprocessingPrependsNote exercises
// the full managed-job path (RunManagedJob -> CreateVariantsForScoreSet ->
// failProcessing) against a real database, confirming the "Update failed"
// note lands on the persisted ScoreSet.ProcessingErrors.Exception rather
// than only in the job's transient result.
func TestCreateVariantsForScoreSet_FailureOnReprocessingPrependsNote(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	exp, err := s.CreateExperiment(ctx, &domain.Experiment{Title: "exp"}, 1)
	require.NoError(t, err)

	ss, err := s.CreateScoreSet(ctx, &domain.ScoreSet{
		ExperimentID: exp.ID,
		Title:        "score set under reprocessing",
		// No TargetGenes: CreateVariantsForScoreSet's step 2 fails
		// immediately with "ScoreSet has no target genes".
	}, 1)
	require.NoError(t, err)

	// Simulate a prior successful run: one existing variant, num_variants
	// already recorded.
	require.NoError(t, s.CreateVariants(ctx, []*domain.Variant{{
		URN: ss.URN + "#1", ScoreSetID: ss.ID,
	}}))
	require.NoError(t, s.SetNumVariants(ctx, ss.ID, 1))

	job := &domain.JobRun{
		JobType:     "variant_processing",
		JobFunction: domain.JobCreateVariantsForScoreSet,
		Status:      domain.JobPending,
		JobParams:   map[string]any{"score_set_id": float64(ss.ID), "user_id": float64(1)},
		MaxRetries:  0,
	}
	require.NoError(t, s.CreateJobRun(ctx, job))

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	manager := jobs.NewManager(s, nil, log)

	scores := &tabular.DataFrame{Columns: []string{"hgvs_nt", "score"}, Rows: [][]*string{}}
	deps := Deps{Store: s}
	fn := CreateVariantsForScoreSet(deps)

	result, err := manager.RunManagedJob(ctx, job.ID, func(ctx context.Context, jm *jobs.JobManager, params map[string]any) (map[string]any, error) {
		params["scores_df"] = scores
		return fn(ctx, jm, params)
	})
	require.NoError(t, err)
	require.Equal(t, domain.JobSucceeded, result.Status)

	fetched, err := s.GetScoreSetByID(ctx, ss.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ProcessingErrors)
	require.Contains(t, fetched.ProcessingErrors.Exception, "Update failed, variants were not updated. ")
	require.Contains(t, fetched.ProcessingErrors.Exception, "ScoreSet has no target genes")
	require.Equal(t, 1, fetched.NumVariants, "prior variant count must be preserved across a failed reprocessing run")
}

// TestCreateVariantsForScoreSet_FirstFailureHasNoNote confirms the note is
// only added when reprocessing an already-populated score set, not on a
// first-time validation failure.
func TestCreateVariantsForScoreSet_FirstFailureHasNoNote(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	exp, err := s.CreateExperiment(ctx, &domain.Experiment{Title: "exp"}, 1)
	require.NoError(t, err)
	ss, err := s.CreateScoreSet(ctx, &domain.ScoreSet{ExperimentID: exp.ID, Title: "new score set"}, 1)
	require.NoError(t, err)

	job := &domain.JobRun{
		JobType:     "variant_processing",
		JobFunction: domain.JobCreateVariantsForScoreSet,
		Status:      domain.JobPending,
		JobParams:   map[string]any{"score_set_id": float64(ss.ID), "user_id": float64(1)},
	}
	require.NoError(t, s.CreateJobRun(ctx, job))

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	manager := jobs.NewManager(s, nil, log)
	deps := Deps{Store: s}
	fn := CreateVariantsForScoreSet(deps)

	scores := &tabular.DataFrame{Columns: []string{"hgvs_nt", "score"}, Rows: [][]*string{}}
	result, err := manager.RunManagedJob(ctx, job.ID, func(ctx context.Context, jm *jobs.JobManager, params map[string]any) (map[string]any, error) {
		params["scores_df"] = scores
		return fn(ctx, jm, params)
	})
	require.NoError(t, err)
	require.Equal(t, domain.JobSucceeded, result.Status)

	fetched, err := s.GetScoreSetByID(ctx, ss.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ProcessingErrors)
	require.Equal(t, "ScoreSet has no target genes", fetched.ProcessingErrors.Exception)
}
