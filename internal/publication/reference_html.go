package publication

import (
	"fmt"
	"strings"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// RenderReferenceHTML builds the stable citation string stored on
// PublicationIdentifier.ReferenceHTML (spec §4.D), following the author,
// title, journal, year convention of a standard citation.
func RenderReferenceHTML(p *domain.PublicationIdentifier) string {
	var b strings.Builder

	if len(p.Authors) > 0 {
		b.WriteString(authorList(p.Authors))
		b.WriteString(". ")
	}
	if p.Title != "" {
		b.WriteString(fmt.Sprintf("<strong>%s</strong>. ", p.Title))
	}
	if p.Journal != "" {
		b.WriteString(fmt.Sprintf("<em>%s</em>", p.Journal))
		if p.Year != 0 {
			b.WriteString(fmt.Sprintf(" (%d)", p.Year))
		}
		b.WriteString(". ")
	} else if p.Year != 0 {
		b.WriteString(fmt.Sprintf("(%d). ", p.Year))
	}
	if p.DOI != nil && *p.DOI != "" {
		b.WriteString(fmt.Sprintf(`<a href="https://doi.org/%s">%s</a>`, *p.DOI, *p.DOI))
	} else if p.URL != "" {
		b.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, p.URL, p.URL))
	}
	return strings.TrimSpace(b.String())
}

func authorList(authors []string) string {
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return authors[0] + ", et al."
}
