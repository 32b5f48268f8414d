package publication

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// rxivClient resolves a bioRxiv/medRxiv preprint DOI suffix against the
// shared api.biorxiv.org details endpoint, which both preprint servers
// publish through (spec §4.D).
type rxivClient struct {
	baseURL    string
	server     string // "biorxiv" or "medrxiv"
	dbName     string
	doiPrefix  string
	http       httpDoer
}

func newBioRxivClient(cfg domain.ExternalServiceConfig) Client {
	return newRxivClient(DbBioRxiv, "biorxiv", "10.1101", cfg)
}

func newMedRxivClient(cfg domain.ExternalServiceConfig) Client {
	return newRxivClient(DbMedRxiv, "medrxiv", "10.1101", cfg)
}

func newRxivClient(dbName, server, doiPrefix string, cfg domain.ExternalServiceConfig) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.biorxiv.org/details/"
	}
	inner := &rxivClient{baseURL: baseURL, server: server, dbName: dbName, doiPrefix: doiPrefix, http: newHTTPClient(cfg)}
	return newBreakerClient(dbName, inner, cfg)
}

type rxivDetailsResponse struct {
	Collection []struct {
		Title   string `json:"title"`
		Authors string `json:"authors"`
		DOI     string `json:"doi"`
		Date    string `json:"date"`
		Abstract string `json:"abstract"`
	} `json:"collection"`
}

func (c *rxivClient) Fetch(ctx context.Context, identifier string) (*domain.PublicationIdentifier, error) {
	doi := c.doiPrefix + "/" + identifier
	resp, err := c.http.Get(ctx, fmt.Sprintf("%s%s/%s", c.baseURL, c.server, doi))
	if err != nil {
		return nil, fmt.Errorf("fetching %s details: %w", c.server, err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading %s details: %w", c.server, err)
	}

	var parsed rxivDetailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing %s details: %w", c.server, err)
	}
	if len(parsed.Collection) == 0 {
		return nil, &domain.NonexistentIdentifierError{Identifier: identifier}
	}

	entry := parsed.Collection[0]
	pub := &domain.PublicationIdentifier{
		Identifier: identifier,
		DbName:     c.dbName,
		DOI:        &entry.DOI,
		Title:      entry.Title,
		Abstract:   entry.Abstract,
		Authors:    splitAuthors(entry.Authors),
		Year:       extractYear(entry.Date),
		Journal:    c.server,
		URL:        "https://doi.org/" + entry.DOI,
	}
	return pub, nil
}
