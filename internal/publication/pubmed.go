package publication

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// pubMedClient queries NCBI PubMed via E-utilities, adapted from the
// teacher's PubMedClient (pkg/external/pubmed.go) and narrowed from
// literature search to single-PMID record resolution: it makes one
// esummary request for the PMID, with no esearch step.
type pubMedClient struct {
	baseURL string
	apiKey  string
	email   string
	http    httpDoer
}

func newPubMedClient(cfg domain.ExternalServiceConfig) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	}
	inner := &pubMedClient{baseURL: baseURL, apiKey: cfg.APIKey, http: newHTTPClient(cfg)}
	return newBreakerClient(DbPubMed, inner, cfg)
}

type pubMedSummaryResponse struct {
	XMLName xml.Name             `xml:"eSummaryResult"`
	Docs    []pubMedDocumentSummary `xml:"DocSum"`
}

type pubMedDocumentSummary struct {
	UID   string        `xml:"Id"`
	Items []pubMedItem `xml:"Item"`
}

type pubMedItem struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",innerxml"`
}

func (c *pubMedClient) Fetch(ctx context.Context, identifier string) (*domain.PublicationIdentifier, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {identifier},
		"retmode": {"xml"},
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	resp, err := c.http.Get(ctx, fmt.Sprintf("%sesummary.fcgi?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetching PubMed summary: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading PubMed summary: %w", err)
	}

	var parsed pubMedSummaryResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing PubMed summary: %w", err)
	}
	if len(parsed.Docs) == 0 {
		return nil, &domain.NonexistentIdentifierError{Identifier: identifier}
	}

	return pubMedToPublication(identifier, parsed.Docs[0]), nil
}

func pubMedToPublication(identifier string, doc pubMedDocumentSummary) *domain.PublicationIdentifier {
	pub := &domain.PublicationIdentifier{Identifier: identifier, DbName: DbPubMed}
	for _, item := range doc.Items {
		switch item.Name {
		case "Title":
			pub.Title = cleanXML(item.Value)
		case "FullJournalName", "Source":
			if pub.Journal == "" {
				pub.Journal = cleanXML(item.Value)
			}
		case "PubDate":
			pub.Year = extractYear(item.Value)
		case "AuthorList":
			pub.Authors = splitAuthors(item.Value)
		}
	}
	pub.URL = "https://pubmed.ncbi.nlm.nih.gov/" + identifier + "/"
	return pub
}

func cleanXML(value string) string {
	replacer := strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "")
	return strings.TrimSpace(replacer.Replace(value))
}

func extractYear(dateStr string) int {
	dateStr = cleanXML(dateStr)
	if len(dateStr) >= 4 {
		if year, err := strconv.Atoi(dateStr[:4]); err == nil && year > 1900 {
			return year
		}
	}
	for _, part := range strings.Fields(dateStr) {
		if len(part) == 4 {
			if year, err := strconv.Atoi(part); err == nil && year > 1900 {
				return year
			}
		}
	}
	return 0
}

func splitAuthors(raw string) []string {
	var authors []string
	for _, a := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			authors = append(authors, trimmed)
		}
	}
	return authors
}
