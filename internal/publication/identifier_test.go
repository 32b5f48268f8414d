package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdentifier_BareIdentifierUnchanged(t *testing.T) {
	id, db := NormalizeIdentifier("12345678")
	assert.Equal(t, "12345678", id)
	assert.Empty(t, db)
}

func TestNormalizeIdentifier_DOIURL(t *testing.T) {
	id, db := NormalizeIdentifier("https://dx.doi.org/10.1038/s41586-020-1234-5")
	assert.Equal(t, "10.1038/s41586-020-1234-5", id)
	assert.Equal(t, DbCrossref, db)
}

func TestNormalizeIdentifier_PubMedURL(t *testing.T) {
	id, db := NormalizeIdentifier("https://www.ncbi.nlm.nih.gov/pubmed/12345678")
	assert.Equal(t, "12345678", id)
	assert.Equal(t, DbPubMed, db)
}

func TestNormalizeIdentifier_BioRxivURL(t *testing.T) {
	id, db := NormalizeIdentifier("https://www.biorxiv.org/content/10.1101/2020.01.01.012345")
	assert.Equal(t, "2020.01.01.012345", id)
	assert.Equal(t, DbBioRxiv, db)
}

func TestNormalizeIdentifier_TrimsWhitespace(t *testing.T) {
	id, _ := NormalizeIdentifier("  12345678  ")
	assert.Equal(t, "12345678", id)
}
