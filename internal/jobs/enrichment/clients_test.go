package enrichment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClinVarTSV(t *testing.T) {
	tsv := "VariationID\tVCV\tClinicalSignificance\tReviewStatus\tGeneSymbol\n" +
		"12345\tVCV000012345\tPathogenic\treviewed by expert panel\tBRCA1\n"
	rows, err := ParseClinVarTSV(strings.NewReader(tsv))
	require.NoError(t, err)
	require.Contains(t, rows, "VCV000012345")
	row := rows["VCV000012345"]
	assert.Equal(t, "Pathogenic", row.ClinicalSignificance)
	assert.Equal(t, "BRCA1", row.GeneSymbol)
}

func TestParseClinVarTSV_SkipsRowsMissingVCV(t *testing.T) {
	tsv := "VariationID\tVCV\tClinicalSignificance\tReviewStatus\tGeneSymbol\n" +
		"12345\t\tPathogenic\treviewed\tBRCA1\n"
	rows, err := ParseClinVarTSV(strings.NewReader(tsv))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestJoinCommas(t *testing.T) {
	assert.Equal(t, "CA1,CA2,CA3", joinCommas([]string{"CA1", "CA2", "CA3"}))
	assert.Equal(t, "", joinCommas(nil))
}
