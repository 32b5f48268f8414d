package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/store"
	"github.com/mavedb/mavedb-core/internal/store/storetest"
)

func createTestScoreSet(t *testing.T, s *store.Store, contributorID int64) *domain.ScoreSet {
	t.Helper()
	exp, err := s.CreateExperiment(context.Background(), &domain.Experiment{
		Title: "test experiment",
	}, contributorID)
	require.NoError(t, err)

	ss := &domain.ScoreSet{
		ExperimentID: exp.ID,
		Title:        "test score set",
		TargetGenes: []domain.TargetGene{
			{Label: "BRCA1", Taxonomy: "9606", Sequence: &domain.TargetSequence{Sequence: "ATG", Type: domain.SequenceDNA}},
		},
	}
	created, err := s.CreateScoreSet(context.Background(), ss, contributorID)
	require.NoError(t, err)
	return created
}

func TestCreateScoreSet_PersistsUnderExperiment(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	ss := createTestScoreSet(t, s, 1)

	assert.NotZero(t, ss.ID)
	assert.NotEmpty(t, ss.URN)
	assert.True(t, ss.IsTemporary())

	fetched, err := s.GetScoreSetByID(ctx, ss.ID)
	require.NoError(t, err)
	assert.Equal(t, ss.ExperimentID, fetched.ExperimentID)
	assert.Equal(t, "test score set", fetched.Title)
	assert.Equal(t, domain.ProcessingIncomplete, fetched.ProcessingState)
}

func TestGetScoreSetByURN_NotFound(t *testing.T) {
	s := storetest.New(t)
	_, err := s.GetScoreSetByURN(context.Background(), "urn:mavedb:nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProcessingState_PersistsProcessingErrors(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	ss := createTestScoreSet(t, s, 1)

	procErrors := &domain.ProcessingErrors{
		Exception: "Update failed, variants were not updated. bad row 3",
		Detail:    []domain.RowError{{Row: 3, Message: "bad row"}},
	}
	require.NoError(t, s.UpdateProcessingState(ctx, ss.ID, domain.ProcessingFailed, procErrors))

	fetched, err := s.GetScoreSetByID(ctx, ss.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessingFailed, fetched.ProcessingState)
	require.NotNil(t, fetched.ProcessingErrors)
	assert.Equal(t, procErrors.Exception, fetched.ProcessingErrors.Exception)
	require.Len(t, fetched.ProcessingErrors.Detail, 1)
	assert.Equal(t, 3, fetched.ProcessingErrors.Detail[0].Row)
}

func TestTargetGeneMappedReferenceSequence_RoundTrips(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	ss := createTestScoreSet(t, s, 1)

	genes, err := s.GetTargetGenes(ctx, ss.ID)
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Nil(t, genes[0].MappedReferenceSequence)

	info := domain.ReferenceSequenceInfo{
		GeneInfo: domain.GeneInfo{HGNCSymbol: "BRCA1", SelectionMethod: "manual"},
		Layers: map[string]domain.ReferenceLayer{
			"protein": {ComputedReferenceSequence: "MA", MappedReferenceSequence: "MA"},
		},
	}
	require.NoError(t, s.UpdateTargetGeneMappedReferenceSequence(ctx, genes[0].ID, info))

	genes, err = s.GetTargetGenes(ctx, ss.ID)
	require.NoError(t, err)
	require.Len(t, genes, 1)
	require.NotNil(t, genes[0].MappedReferenceSequence)
	assert.Equal(t, "BRCA1", genes[0].MappedReferenceSequence.GeneInfo.HGNCSymbol)
	assert.Equal(t, "MA", genes[0].MappedReferenceSequence.Layers["protein"].MappedReferenceSequence)
}

func TestSetNumVariants_AndDeleteScoreSet(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	ss := createTestScoreSet(t, s, 1)

	require.NoError(t, s.SetNumVariants(ctx, ss.ID, 42))
	fetched, err := s.GetScoreSetByID(ctx, ss.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, fetched.NumVariants)

	require.NoError(t, s.DeleteScoreSet(ctx, ss.ID))
	_, err = s.GetScoreSetByID(ctx, ss.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateDatasetColumns(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	ss := createTestScoreSet(t, s, 1)

	cols := domain.DatasetColumns{ScoreColumns: []string{"score"}, CountColumns: []string{"count"}}
	require.NoError(t, s.UpdateDatasetColumns(ctx, ss.ID, cols))

	fetched, err := s.GetScoreSetByID(ctx, ss.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"score"}, fetched.DatasetColumns.ScoreColumns)
}
