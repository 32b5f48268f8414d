package publication

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// httpDoer is the minimal HTTP seam each concrete client fetches through,
// letting tests substitute a fake without a real network round trip.
type httpDoer interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

type stdHTTPDoer struct {
	client *http.Client
}

func (d stdHTTPDoer) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := doGet(ctx, d.client, url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Client fetches a normalized publication record from one external
// database. Implementations are per-service (PubMed, Crossref, bioRxiv,
// medRxiv) but share the same contract (spec §4.D "Each external service is
// behind a thin client").
type Client interface {
	Fetch(ctx context.Context, identifier string) (*domain.PublicationIdentifier, error)
}

// breakerClient wraps a Client's Fetch in a circuit breaker and token-bucket
// rate limiter, replacing the teacher's hand-rolled time.Sleep rate gate
// (pkg/external/pubmed.go) and bespoke ResilientExternalClient breaker
// wiring (pkg/external/circuit_breaker.go) with the real ecosystem packages
// those were standing in for.
type breakerClient struct {
	inner   Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*domain.PublicationIdentifier]
}

// newBreakerClient wraps inner with a per-service circuit breaker and rate
// limiter built from cfg. A RateLimit of 0 leaves requests unthrottled.
func newBreakerClient(name string, inner Client, cfg domain.ExternalServiceConfig) *breakerClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	breaker := gobreaker.NewCircuitBreaker[*domain.PublicationIdentifier](gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &breakerClient{inner: inner, limiter: limiter, breaker: breaker}
}

func (c *breakerClient) Fetch(ctx context.Context, identifier string) (*domain.PublicationIdentifier, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.breaker.Execute(func() (*domain.PublicationIdentifier, error) {
		return c.inner.Fetch(ctx, identifier)
	})
}

func newHTTPClient(cfg domain.ExternalServiceConfig) httpDoer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return stdHTTPDoer{client: &http.Client{Timeout: timeout}}
}

func doGet(ctx context.Context, hc *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("external service returned status %d", resp.StatusCode)
	}
	return resp, nil
}
