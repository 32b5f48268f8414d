package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// FindPublicationIdentifier looks up a PublicationIdentifier by its unique
// (identifier, db_name) pair, implementing internal/publication's Store
// seam so Resolver.FindOrCreate can check for an already-resolved
// identifier before hitting an external database.
func (s *Store) FindPublicationIdentifier(ctx context.Context, identifier, dbName string) (*domain.PublicationIdentifier, error) {
	p := &domain.PublicationIdentifier{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, identifier, db_name, doi, title, abstract, authors, year, journal, url, reference_html
		 FROM publication_identifiers WHERE identifier = $1 AND db_name = $2`, identifier, dbName,
	).Scan(&p.ID, &p.Identifier, &p.DbName, &p.DOI, &p.Title, &p.Abstract, &p.Authors, &p.Year, &p.Journal, &p.URL, &p.ReferenceHTML)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("finding publication identifier %q/%q: %w", identifier, dbName, err)
	}
	return p, nil
}

// CreatePublicationIdentifier inserts a newly resolved PublicationIdentifier,
// upserting on the (identifier, db_name) unique key so a race between two
// concurrent resolutions of the same identifier converges on one row.
func (s *Store) CreatePublicationIdentifier(ctx context.Context, p *domain.PublicationIdentifier) (*domain.PublicationIdentifier, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO publication_identifiers (identifier, db_name, doi, title, abstract, authors, year, journal, url, reference_html)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (identifier, db_name) DO UPDATE SET identifier = EXCLUDED.identifier
		 RETURNING id`,
		p.Identifier, p.DbName, p.DOI, p.Title, p.Abstract, p.Authors, p.Year, p.Journal, p.URL, p.ReferenceHTML,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("creating publication identifier %q/%q: %w", p.Identifier, p.DbName, err)
	}
	return p, nil
}
