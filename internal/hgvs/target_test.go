package hgvs

import (
	"testing"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTargetType_InferDNA(t *testing.T) {
	resolved, err := ResolveTargetType(domain.TargetSequence{Sequence: "ATGACT", Type: domain.SequenceInfer})
	require.NoError(t, err)
	assert.Equal(t, domain.SequenceDNA, resolved)
}

func TestResolveTargetType_InferProtein(t *testing.T) {
	resolved, err := ResolveTargetType(domain.TargetSequence{Sequence: "MTEYK", Type: domain.SequenceInfer})
	require.NoError(t, err)
	assert.Equal(t, domain.SequenceProtein, resolved)
}

func TestResolveTargetType_DNANotMultipleOfThree(t *testing.T) {
	_, err := ResolveTargetType(domain.TargetSequence{Sequence: "ATGAC", Type: domain.SequenceDNA})
	assert.Error(t, err)
}

func TestResolveTargetType_InvalidDNAAlphabet(t *testing.T) {
	_, err := ResolveTargetType(domain.TargetSequence{Sequence: "ATGXCT", Type: domain.SequenceDNA})
	assert.Error(t, err)
}

func TestProteinView_TranslatesDNA(t *testing.T) {
	view, err := ProteinView(domain.TargetSequence{Sequence: "ATGACT", Type: domain.SequenceDNA})
	require.NoError(t, err)
	assert.Equal(t, "MT", view)
}

func TestProteinView_PassesThroughProtein(t *testing.T) {
	view, err := ProteinView(domain.TargetSequence{Sequence: "mt", Type: domain.SequenceProtein})
	require.NoError(t, err)
	assert.Equal(t, "MT", view)
}
