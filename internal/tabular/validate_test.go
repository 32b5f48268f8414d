package tabular

import (
	"testing"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(s string) *string { return &s }

func buildScores() *DataFrame {
	return &DataFrame{
		Columns: []string{"hgvs_nt", "score"},
		Rows: [][]*string{
			{p("c.1A>T"), p("1.5")},
			{p("c.2G>C"), p("-0.3")},
			{p("c.3C>A"), p("bad")},
		},
	}
}

func TestValidate_NumericScoreColumn(t *testing.T) {
	target := domain.TargetSequence{Sequence: "ATGACT", Type: domain.SequenceDNA}
	res := Validate(buildScores(), nil, target, nil)

	var found bool
	for _, e := range res.Errors {
		if e.Column == "score" && e.Row == 2 {
			found = true
		}
	}
	assert.True(t, found, "expected a row-2 error for the non-numeric score value")
}

func TestValidate_EmitsDatasetColumns(t *testing.T) {
	scores := &DataFrame{
		Columns: []string{"hgvs_nt", "score", "replicate"},
		Rows: [][]*string{
			{p("c.1A>T"), p("1.0"), p("rep1")},
		},
	}
	target := domain.TargetSequence{Sequence: "ATGACT", Type: domain.SequenceDNA}
	res := Validate(scores, nil, target, nil)

	assert.Contains(t, res.DatasetColumns.ScoreColumns, "score")
	assert.Contains(t, res.DatasetColumns.ScoreColumns, "replicate")
}

func TestValidate_CountsMustNotHaveScoreColumn(t *testing.T) {
	target := domain.TargetSequence{Sequence: "ATGACT", Type: domain.SequenceDNA}
	counts := &DataFrame{Columns: []string{"hgvs_nt", "score"}, Rows: [][]*string{{p("c.1A>T"), p("3")}}}
	res := Validate(buildScores(), counts, target, nil)
	require.NotEmpty(t, res.Errors)
}

func TestValidate_CrossChecksSharedHGVSColumns(t *testing.T) {
	target := domain.TargetSequence{Sequence: "ATGACTA", Type: domain.SequenceDNA}
	scores := &DataFrame{
		Columns: []string{"hgvs_nt", "score"},
		Rows: [][]*string{
			{p("c.1A>T"), p("1.0")},
			{p("c.2G>C"), p("2.0")},
		},
	}
	counts := &DataFrame{
		Columns: []string{"hgvs_nt", "count"},
		Rows: [][]*string{
			{p("c.1A>T"), p("10")},
			{p("c.7A>T"), p("20")},
		},
	}
	res := Validate(scores, counts, target, nil)

	var found bool
	for _, e := range res.Errors {
		if e.Column == "hgvs_nt" {
			found = true
		}
	}
	assert.True(t, found, "expected a disagreement error between scores and counts hgvs_nt values")
}

func TestValidate_RejectsFullyNullRow(t *testing.T) {
	target := domain.TargetSequence{Sequence: "ATGACT", Type: domain.SequenceDNA}
	scores := &DataFrame{
		Columns: []string{"hgvs_nt", "score"},
		Rows: [][]*string{
			{nil, nil},
		},
	}
	res := Validate(scores, nil, target, nil)
	require.NotEmpty(t, res.Errors)
}
