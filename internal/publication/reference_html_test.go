package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mavedb/mavedb-core/internal/domain"
)

func TestRenderReferenceHTML_FullRecord(t *testing.T) {
	doi := "10.1038/s41586-020-1234-5"
	p := &domain.PublicationIdentifier{
		Title:   "A study of variant effects",
		Authors: []string{"Smith J", "Doe A"},
		Journal: "Nature",
		Year:    2020,
		DOI:     &doi,
	}
	html := RenderReferenceHTML(p)
	assert.Contains(t, html, "Smith J, Doe A")
	assert.Contains(t, html, "<strong>A study of variant effects</strong>")
	assert.Contains(t, html, "<em>Nature</em> (2020)")
	assert.Contains(t, html, doi)
}

func TestRenderReferenceHTML_ManyAuthorsTruncated(t *testing.T) {
	p := &domain.PublicationIdentifier{
		Authors: []string{"A", "B", "C", "D"},
		Title:   "Title",
	}
	html := RenderReferenceHTML(p)
	assert.Contains(t, html, "A, et al.")
	assert.NotContains(t, html, "D")
}

func TestRenderReferenceHTML_FallsBackToURLWithoutDOI(t *testing.T) {
	p := &domain.PublicationIdentifier{
		Title: "Title",
		URL:   "https://pubmed.ncbi.nlm.nih.gov/12345678/",
	}
	html := RenderReferenceHTML(p)
	assert.Contains(t, html, "https://pubmed.ncbi.nlm.nih.gov/12345678/")
}
