package variantjobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// httpMapper is the HTTP-backed Mapper, calling the off-loop VRS mapping
// service spec §6 names ("VRS mapper: map_score_set(urn) returns
// {mapped_scores[], reference_sequences{...}, mapped_date_utc,
// dcd_mapping_version}"). It follows the same rate-limit + circuit-breaker
// wrapping internal/publication/client.go and internal/jobs/enrichment's
// clients use over their external service calls.
type httpMapper struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*vrsMapResponse]
}

// NewHTTPMapper builds a Mapper over the VRS mapping service's HTTP API.
func NewHTTPMapper(cfg domain.ExternalServiceConfig) Mapper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	breaker := gobreaker.NewCircuitBreaker[*vrsMapResponse](gobreaker.Settings{
		Name:        "vrs_mapper",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
	return &httpMapper{baseURL: cfg.BaseURL, client: &http.Client{Timeout: timeout}, limiter: limiter, breaker: breaker}
}

// vrsMapResponse mirrors the wire shape spec §6 documents for the VRS
// mapper's response, decoded into domain.VRSMappingResult by MapScoreSet.
type vrsMapResponse struct {
	MappedScores []struct {
		VariantURN      string         `json:"variant_urn"`
		PreMapped       map[string]any `json:"pre_mapped"`
		PostMapped      map[string]any `json:"post_mapped"`
		ClinGenAlleleID string         `json:"clingen_allele_id"`
	} `json:"mapped_scores"`
	ReferenceSequences map[string]struct {
		GeneInfo struct {
			HGNCSymbol      string `json:"hgnc_symbol"`
			SelectionMethod string `json:"selection_method"`
		} `json:"gene_info"`
		Layers map[string]struct {
			ComputedReferenceSequence string `json:"computed_reference_sequence"`
			MappedReferenceSequence   string `json:"mapped_reference_sequence"`
		} `json:"layers"`
	} `json:"reference_sequences"`
	MappedDateUTC     time.Time `json:"mapped_date_utc"`
	DCDMappingVersion string    `json:"dcd_mapping_version"`
}

func (m *httpMapper) MapScoreSet(ctx context.Context, scoreSetURN string) (*domain.VRSMappingResult, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := m.breaker.Execute(func() (*vrsMapResponse, error) {
		return m.doMap(ctx, scoreSetURN)
	})
	if err != nil {
		return nil, &domain.RetryableError{Err: err}
	}

	result := &domain.VRSMappingResult{
		ReferenceSequences: make(map[string]domain.ReferenceSequenceInfo, len(resp.ReferenceSequences)),
		MappedDateUTC:      resp.MappedDateUTC,
		DCDMappingVersion:  resp.DCDMappingVersion,
	}
	for _, ms := range resp.MappedScores {
		result.MappedScores = append(result.MappedScores, domain.MappedScore{
			VariantURN:      ms.VariantURN,
			PreMapped:       ms.PreMapped,
			PostMapped:      ms.PostMapped,
			ClinGenAlleleID: ms.ClinGenAlleleID,
		})
	}
	for targetID, ref := range resp.ReferenceSequences {
		info := domain.ReferenceSequenceInfo{
			GeneInfo: domain.GeneInfo{
				HGNCSymbol:      ref.GeneInfo.HGNCSymbol,
				SelectionMethod: ref.GeneInfo.SelectionMethod,
			},
			Layers: make(map[string]domain.ReferenceLayer, len(ref.Layers)),
		}
		for layer, l := range ref.Layers {
			info.Layers[layer] = domain.ReferenceLayer{
				ComputedReferenceSequence: l.ComputedReferenceSequence,
				MappedReferenceSequence:   l.MappedReferenceSequence,
			}
		}
		result.ReferenceSequences[targetID] = info
	}
	return result, nil
}

func (m *httpMapper) doMap(ctx context.Context, scoreSetURN string) (*vrsMapResponse, error) {
	reqURL := fmt.Sprintf("%s/api/v1/map/%s", m.baseURL, url.PathEscape(scoreSetURN))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building VRS mapping request: %w", err)
	}
	httpResp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling VRS mapper: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VRS mapper returned status %d", httpResp.StatusCode)
	}
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading VRS mapper response: %w", err)
	}
	var resp vrsMapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding VRS mapper response: %w", err)
	}
	return &resp, nil
}
