package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPubMed(t *testing.T) {
	assert.True(t, IsValidPubMed("12345678"))
	assert.True(t, IsValidPubMed("1"))
	assert.False(t, IsValidPubMed("0123")) // leading zero
	assert.False(t, IsValidPubMed("abc"))
	assert.False(t, IsValidPubMed(""))
}

func TestIsValidCrossrefDOI(t *testing.T) {
	assert.True(t, IsValidCrossrefDOI("10.1038/s41586-020-1234-5"))
	assert.False(t, IsValidCrossrefDOI("12345678"))
	assert.False(t, IsValidCrossrefDOI("10.123/"))
}

func TestIsValidBioRxiv(t *testing.T) {
	assert.True(t, IsValidBioRxiv("123456"), "legacy 6-digit")
	assert.True(t, IsValidBioRxiv("2020.01.01.012345"), "post-changeover date scheme")
	assert.False(t, IsValidBioRxiv("2019.12.10.012345"), "one day before changeover")
	assert.True(t, IsValidBioRxiv("2019.12.11.012345"), "changeover date itself")
	assert.False(t, IsValidBioRxiv("12345678"), "8 digits is medRxiv's shape, not bioRxiv's")
}

func TestIsValidMedRxiv(t *testing.T) {
	assert.True(t, IsValidMedRxiv("12345678"), "legacy 8-digit")
	assert.True(t, IsValidMedRxiv("2020.01.01.012345"))
	assert.False(t, IsValidMedRxiv("123456"), "6 digits is bioRxiv's legacy shape, not medRxiv's")
}

func TestValidatorsFor_DOITakesCrossrefOnly(t *testing.T) {
	dbs := ValidatorsFor("10.1038/s41586-020-1234-5")
	assert.Equal(t, []string{DbCrossref}, dbs)
}

func TestValidatorsFor_AmbiguousNumericMatchesMultiple(t *testing.T) {
	dbs := ValidatorsFor("123456")
	assert.Contains(t, dbs, DbPubMed)
	assert.Contains(t, dbs, DbBioRxiv)
}
