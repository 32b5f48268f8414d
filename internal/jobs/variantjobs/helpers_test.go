package variantjobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
)

func TestResolveValidationTarget_Sequence(t *testing.T) {
	genes := []domain.TargetGene{
		{Sequence: &domain.TargetSequence{Sequence: "ATGACC", Type: domain.SequenceDNA}},
	}
	target, err := resolveValidationTarget(genes)
	require.NoError(t, err)
	assert.Equal(t, "ATGACC", target.Sequence)
}

func TestResolveValidationTarget_Mixed(t *testing.T) {
	genes := []domain.TargetGene{
		{Sequence: &domain.TargetSequence{Sequence: "ATG", Type: domain.SequenceDNA}},
		{Accession: &domain.TargetAccession{Accession: "NM_000000.1"}},
	}
	_, err := resolveValidationTarget(genes)
	require.ErrorIs(t, err, domain.ErrMixedTarget)
}

func TestResolveValidationTarget_AccessionOnly(t *testing.T) {
	genes := []domain.TargetGene{
		{Accession: &domain.TargetAccession{Accession: "NM_000000.1"}},
	}
	_, err := resolveValidationTarget(genes)
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestInt64Param(t *testing.T) {
	v, err := int64Param(map[string]any{"score_set_id": float64(42)}, "score_set_id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)

	v, err = int64Param(map[string]any{"score_set_id": "17"}, "score_set_id")
	require.NoError(t, err)
	assert.EqualValues(t, 17, v)

	_, err = int64Param(map[string]any{}, "score_set_id")
	require.Error(t, err)
}

func TestHasMultiCAID(t *testing.T) {
	assert.True(t, HasMultiCAID("CA123,CA456"))
	assert.False(t, HasMultiCAID("CA123"))
}
