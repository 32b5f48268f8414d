package publication

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// crossrefClient resolves a DOI against the Crossref REST API. Crossref is
// the unambiguous resolver for any identifier that is itself a DOI (spec
// §4.D "If absent and identifier is a DOI: resolve against Crossref").
type crossrefClient struct {
	baseURL string
	http    httpDoer
}

func newCrossrefClient(cfg domain.ExternalServiceConfig) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.crossref.org/works/"
	}
	inner := &crossrefClient{baseURL: baseURL, http: newHTTPClient(cfg)}
	return newBreakerClient(DbCrossref, inner, cfg)
}

type crossrefWork struct {
	Message struct {
		Title   []string `json:"title"`
		Abstract string  `json:"abstract"`
		DOI     string   `json:"DOI"`
		URL     string   `json:"URL"`
		ContainerTitle []string `json:"container-title"`
		Author  []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		Published struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"published"`
	} `json:"message"`
}

func (c *crossrefClient) Fetch(ctx context.Context, identifier string) (*domain.PublicationIdentifier, error) {
	resp, err := c.http.Get(ctx, c.baseURL+url.PathEscape(identifier))
	if err != nil {
		return nil, fmt.Errorf("fetching Crossref work: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading Crossref work: %w", err)
	}

	var work crossrefWork
	if err := json.Unmarshal(body, &work); err != nil {
		return nil, fmt.Errorf("parsing Crossref work: %w", err)
	}

	pub := &domain.PublicationIdentifier{
		Identifier: identifier,
		DbName:     DbCrossref,
		DOI:        &work.Message.DOI,
		Abstract:   work.Message.Abstract,
		URL:        work.Message.URL,
	}
	if len(work.Message.Title) > 0 {
		pub.Title = work.Message.Title[0]
	}
	if len(work.Message.ContainerTitle) > 0 {
		pub.Journal = work.Message.ContainerTitle[0]
	}
	if len(work.Message.Published.DateParts) > 0 && len(work.Message.Published.DateParts[0]) > 0 {
		pub.Year = work.Message.Published.DateParts[0][0]
	}
	for _, a := range work.Message.Author {
		pub.Authors = append(pub.Authors, strings.TrimSpace(a.Given+" "+a.Family))
	}
	return pub, nil
}
