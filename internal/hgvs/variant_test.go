package hgvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidateColumnPrefixConsistency(t *testing.T) {
	values := []*string{strPtr("c.1A>T"), strPtr("c.2G>C"), nil, strPtr("g.3A>T")}
	errs := ValidateColumnPrefixConsistency(ColumnNT, values)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Row)
}

func TestValidateRowPrefixCombination(t *testing.T) {
	g, c, p := strPtr("g.1A>T"), strPtr("c.1A>T"), strPtr("p.Gly1Cys")
	assert.Nil(t, ValidateRowPrefixCombination(0, g, c, p))

	n := strPtr("n.1A>T")
	assert.Nil(t, ValidateRowPrefixCombination(1, nil, nil, nil))
	assert.Nil(t, ValidateRowPrefixCombination(2, n, nil, nil))
	assert.Nil(t, ValidateRowPrefixCombination(3, c, nil, p))
	assert.Nil(t, ValidateRowPrefixCombination(4, nil, nil, p))

	gSplice := strPtr("n.1A>T")
	assert.Nil(t, ValidateRowPrefixCombination(5, g, gSplice, nil))

	assert.NotNil(t, ValidateRowPrefixCombination(6, g, nil, nil))
	assert.NotNil(t, ValidateRowPrefixCombination(7, c, c, p))
}

func TestParseVariant_Substitution(t *testing.T) {
	sub, err := ParseVariant(ColumnNT, "c.5A>T")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, 5, sub.Position)
	assert.Equal(t, "A", sub.Ref)
	assert.Equal(t, "T", sub.Alt)
}

func TestParseVariant_NonSubstitutionEvents(t *testing.T) {
	sub, err := ParseVariant(ColumnNT, "c.5del")
	require.NoError(t, err)
	assert.Nil(t, sub)

	sub, err = ParseVariant(ColumnNT, "c.5_7dup")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestParseVariant_Invalid(t *testing.T) {
	_, err := ParseVariant(ColumnNT, "c.notavariant")
	assert.Error(t, err)
}

func TestSubstitution_CheckAgainstTarget(t *testing.T) {
	sub := Substitution{Prefix: "c.", Position: 1, Ref: "A", Alt: "T"}
	assert.NoError(t, sub.CheckAgainstTarget("ATG"))

	sub.Ref = "G"
	assert.Error(t, sub.CheckAgainstTarget("ATG"))
}

func TestValidateColumn_AggregatesAllErrors(t *testing.T) {
	values := []*string{strPtr("c.1A>T"), strPtr("c.bogus"), strPtr("c.3G>A")}
	errs := ValidateColumn(ColumnNT, values, "AGC")
	// row 0 is a valid match (A at position 1); row 1 fails to parse; row 2's
	// ref G does not match target base C at position 3.
	require.Len(t, errs, 2)
}
