// Package enrichment implements component H's external enrichment jobs
// (spec §4.H): joining current MappedVariants against ClinVar (via the
// ClinGen allele registry) and gnomAD, recording per-variant annotation
// status for each.
package enrichment

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// ClinGenClient resolves a ClinGen canonical allele id (CAID) to the
// ClinVar VCV accession it corresponds to (spec §4.H "call ClinGen for the
// associated ClinVar allele id").
type ClinGenClient interface {
	ResolveVCV(ctx context.Context, caid string) (vcv string, found bool, err error)
}

// ClinVarArchiveClient downloads the gzip-compressed ClinVar
// variant_summary archive for a given (year, month) (spec §4.H "Downloads
// the ClinVar archived variant_summary TSV for that date (gzip)").
type ClinVarArchiveClient interface {
	DownloadVariantSummary(ctx context.Context, year, month int) (io.ReadCloser, error)
}

// GnomADClient batch-queries gnomAD for variant records matching a set of
// ClinGen allele ids (spec §4.H "batch-query the gnomAD source (Athena/SQL
// engine) for matching gnomAD records").
type GnomADClient interface {
	BatchQuery(ctx context.Context, caids []string) (map[string]domain.GnomADVariant, error)
}

// breakerHTTPClient wraps an *http.Client with the same rate-limit +
// circuit-breaker pattern internal/publication/client.go established for
// PubMed/Crossref, generalized here to the non-publication external
// services component H talks to (sony/gobreaker + golang.org/x/time/rate).
type breakerHTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newBreakerHTTPClient(name string, cfg domain.ExternalServiceConfig) *breakerHTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
	return &breakerHTTPClient{client: &http.Client{Timeout: timeout}, limiter: limiter, breaker: breaker}
}

func (c *breakerHTTPClient) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return doGet(ctx, c.client, url)
	})
	if err != nil {
		return &domain.RetryableError{Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

func doGet(ctx context.Context, hc *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("external service returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// clinGenClient is the HTTP-backed ClinGenClient, following the
// breakerClient pattern over ClinGen's allele registry lookup API.
type clinGenClient struct {
	baseURL string
	http    *breakerHTTPClient
}

func NewClinGenClient(cfg domain.ExternalServiceConfig) ClinGenClient {
	return &clinGenClient{baseURL: cfg.BaseURL, http: newBreakerHTTPClient("clingen", cfg)}
}

type clinGenAlleleResponse struct {
	ExternalRecords struct {
		ClinVarAlleles []struct {
			VariationID string `json:"variation_id"`
			PreferredName string `json:"preferredName"`
		} `json:"ClinVarAlleles"`
	} `json:"externalRecords"`
}

func (c *clinGenClient) ResolveVCV(ctx context.Context, caid string) (string, bool, error) {
	var resp clinGenAlleleResponse
	url := fmt.Sprintf("%sallele/%s", c.baseURL, caid)
	if err := c.http.getJSON(ctx, url, &resp); err != nil {
		return "", false, fmt.Errorf("resolving CAID %s via ClinGen: %w", caid, err)
	}
	if len(resp.ExternalRecords.ClinVarAlleles) == 0 {
		return "", false, nil
	}
	id := resp.ExternalRecords.ClinVarAlleles[0].VariationID
	if len(id) > 3 && id[:3] == "VCV" {
		return id, true, nil
	}
	var n int
	if _, err := fmt.Sscanf(id, "%d", &n); err != nil {
		return "", false, fmt.Errorf("ClinGen returned non-numeric ClinVar variation id %q for CAID %s", id, caid)
	}
	return fmt.Sprintf("VCV%09d", n), true, nil
}

// clinVarArchiveClient downloads the ClinVar FTP archive's monthly
// variant_summary TSV.
type clinVarArchiveClient struct {
	baseURL string
	client  *http.Client
}

func NewClinVarArchiveClient(cfg domain.ExternalServiceConfig) ClinVarArchiveClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &clinVarArchiveClient{baseURL: cfg.BaseURL, client: &http.Client{Timeout: timeout}}
}

func (c *clinVarArchiveClient) DownloadVariantSummary(ctx context.Context, year, month int) (io.ReadCloser, error) {
	url := fmt.Sprintf("%svariant_summary_%04d-%02d.txt.gz", c.baseURL, year, month)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building clinvar archive request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.RetryableError{Err: fmt.Errorf("downloading clinvar archive: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &domain.RetryableError{Err: fmt.Errorf("clinvar archive returned status %d", resp.StatusCode)}
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("opening clinvar archive gzip stream: %w", err)
	}
	return &gzipReadCloser{gz: gz, underlying: resp.Body}, nil
}

type gzipReadCloser struct {
	gz         *gzip.Reader
	underlying io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	g.gz.Close()
	return g.underlying.Close()
}

// ParseClinVarTSV streams the decompressed variant_summary TSV into a map
// keyed by VCV accession, the join key spec §4.H "Join the allele id to the
// parsed TSV row" uses.
func ParseClinVarTSV(r io.Reader) (map[string]domain.ClinVarTSVRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading clinvar tsv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	rows := map[string]domain.ClinVarTSVRow{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading clinvar tsv row: %w", err)
		}
		vcv := fieldAt(record, col, "VCV")
		if vcv == "" {
			continue
		}
		rows[vcv] = domain.ClinVarTSVRow{
			VariationID:          fieldAt(record, col, "VariationID"),
			VCV:                  vcv,
			ClinicalSignificance: fieldAt(record, col, "ClinicalSignificance"),
			ReviewStatus:         fieldAt(record, col, "ReviewStatus"),
			GeneSymbol:           fieldAt(record, col, "GeneSymbol"),
		}
	}
	return rows, nil
}

func fieldAt(record []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// gnomADClient batch-queries gnomAD's public API for allele frequency
// records matching a set of ClinGen allele ids.
type gnomADClient struct {
	baseURL string
	http    *breakerHTTPClient
}

func NewGnomADClient(cfg domain.ExternalServiceConfig) GnomADClient {
	return &gnomADClient{baseURL: cfg.BaseURL, http: newBreakerHTTPClient("gnomad", cfg)}
}

type gnomadBatchResponse struct {
	Results []struct {
		CAID            string  `json:"caid"`
		VariantID       string  `json:"variant_id"`
		AlleleCount     int     `json:"ac"`
		AlleleNumber    int     `json:"an"`
		AlleleFrequency float64 `json:"af"`
		HomozygoteCount int     `json:"hom"`
	} `json:"results"`
}

func (c *gnomADClient) BatchQuery(ctx context.Context, caids []string) (map[string]domain.GnomADVariant, error) {
	out := map[string]domain.GnomADVariant{}
	if len(caids) == 0 {
		return out, nil
	}

	url := c.baseURL + "batch?caids=" + joinCommas(caids)
	var resp gnomadBatchResponse
	if err := c.http.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("batch-querying gnomad: %w", err)
	}
	for _, r := range resp.Results {
		out[r.CAID] = domain.GnomADVariant{
			GnomADVariantID: r.VariantID,
			AlleleCount:     r.AlleleCount,
			AlleleNumber:    r.AlleleNumber,
			AlleleFrequency: r.AlleleFrequency,
			HomozygoteCount: r.HomozygoteCount,
		}
	}
	return out, nil
}

func joinCommas(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
