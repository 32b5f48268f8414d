package publication

import (
	"regexp"
	"strings"
)

// Database names recognized by the resolver (spec §4.D).
const (
	DbPubMed   = "PubMed"
	DbCrossref = "Crossref"
	DbBioRxiv  = "bioRxiv"
	DbMedRxiv  = "medRxiv"
)

var urlPrefixes = []struct {
	pattern *regexp.Regexp
	dbName  string
}{
	{regexp.MustCompile(`(?i)dx\.doi\.org/`), DbCrossref},
	{regexp.MustCompile(`(?i)doi\.org/`), DbCrossref},
	{regexp.MustCompile(`(?i)ncbi\.nlm\.nih\.gov/pubmed/`), DbPubMed},
	{regexp.MustCompile(`(?i)biorxiv\.org/content/(?:10\.\d+/)?`), DbBioRxiv},
	{regexp.MustCompile(`(?i)medrxiv\.org/content/(?:10\.\d+/)?`), DbMedRxiv},
}

// NormalizeIdentifier strips a known URL prefix from raw, returning the bare
// identifier and, when the URL's host pinned it to one database, that
// database's name. dbName is empty when raw was already a bare identifier.
func NormalizeIdentifier(raw string) (identifier string, dbName string) {
	trimmed := strings.TrimSpace(raw)
	for _, p := range urlPrefixes {
		if loc := p.pattern.FindStringIndex(trimmed); loc != nil {
			rest := trimmed[loc[1]:]
			rest = strings.TrimSuffix(rest, "/")
			return rest, p.dbName
		}
	}
	return trimmed, ""
}
