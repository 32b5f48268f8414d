package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardizeColumns(t *testing.T) {
	got := StandardizeColumns([]string{"HGVS_NT", "Score", "ReplicateScore"})
	assert.Equal(t, []string{"hgvs_nt", "score", "ReplicateScore"}, got)
}

func TestCanonicalizeOrder(t *testing.T) {
	got := CanonicalizeOrder([]string{"extra1", "score", "hgvs_pro", "hgvs_nt", "extra2"})
	assert.Equal(t, []string{"hgvs_nt", "hgvs_pro", "score", "extra1", "extra2"}, got)
}

func TestValidateColumnNames_DuplicateCaseInsensitive(t *testing.T) {
	errs := ValidateColumnNames([]string{"hgvs_nt", "score", "Score"})
	assert.NotEmpty(t, errs)
}

func TestValidateColumnNames_SpliceRequiresNtAndPro(t *testing.T) {
	errs := ValidateColumnNames([]string{"hgvs_splice", "score"})
	assert.NotEmpty(t, errs)

	errs = ValidateColumnNames([]string{"hgvs_nt", "hgvs_splice", "hgvs_pro", "score"})
	assert.Empty(t, errs)
}

func TestValidateColumnNames_RequiresHGVSAndDataColumn(t *testing.T) {
	assert.NotEmpty(t, ValidateColumnNames([]string{"score"}))
	assert.NotEmpty(t, ValidateColumnNames([]string{"hgvs_nt"}))
}

func TestChooseIndexColumn_PrefersHGVSNt(t *testing.T) {
	v1, v2 := "c.1A>T", "c.2G>C"
	df := &DataFrame{
		Columns: []string{"hgvs_nt", "hgvs_pro"},
		Rows: [][]*string{
			{&v1, nil},
			{&v2, nil},
		},
	}
	col, values, err := ChooseIndexColumn(df)
	assert.Nil(t, err)
	assert.Equal(t, "hgvs_nt", col)
	assert.Len(t, values, 2)
}

func TestChooseIndexColumn_RejectsPartialNull(t *testing.T) {
	v1 := "c.1A>T"
	df := &DataFrame{
		Columns: []string{"hgvs_nt"},
		Rows: [][]*string{
			{&v1},
			{nil},
		},
	}
	_, _, err := ChooseIndexColumn(df)
	assert.NotNil(t, err)
}
