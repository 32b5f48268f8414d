package variantjobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
)

func TestHTTPMapper_MapScoreSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"mapped_scores": [
				{"variant_urn": "urn:mavedb:00000001-a-1#1", "pre_mapped": {"a": 1}, "post_mapped": {"b": 2}, "clingen_allele_id": "CA123"}
			],
			"reference_sequences": {
				"target1": {
					"gene_info": {"hgnc_symbol": "BRCA1", "selection_method": "manual"},
					"layers": {"protein": {"computed_reference_sequence": "MA", "mapped_reference_sequence": "MA"}}
				}
			},
			"mapped_date_utc": "2024-01-15T00:00:00Z",
			"dcd_mapping_version": "1.2.3"
		}`))
	}))
	defer srv.Close()

	mapper := NewHTTPMapper(domain.ExternalServiceConfig{BaseURL: srv.URL})
	result, err := mapper.MapScoreSet(context.Background(), "urn:mavedb:00000001-a-1")
	require.NoError(t, err)
	require.Len(t, result.MappedScores, 1)
	assert.Equal(t, "urn:mavedb:00000001-a-1#1", result.MappedScores[0].VariantURN)
	assert.Equal(t, "CA123", result.MappedScores[0].ClinGenAlleleID)
	require.Contains(t, result.ReferenceSequences, "target1")
	assert.Equal(t, "BRCA1", result.ReferenceSequences["target1"].GeneInfo.HGNCSymbol)
	assert.Equal(t, "1.2.3", result.DCDMappingVersion)
}

func TestHTTPMapper_MapScoreSet_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	mapper := NewHTTPMapper(domain.ExternalServiceConfig{BaseURL: srv.URL})
	_, err := mapper.MapScoreSet(context.Background(), "urn:mavedb:00000001-a-1")
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
}
