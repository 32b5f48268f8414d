package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// GetOrCreateControlledKeyword resolves a keyword to its row, inserting it
// on first use — these are auxiliary lookups with a unique natural key, not
// entities a user creates directly.
func (s *Store) GetOrCreateControlledKeyword(ctx context.Context, key string) (*domain.ControlledKeyword, error) {
	k := &domain.ControlledKeyword{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO controlled_keywords (key) VALUES ($1)
		 ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		 RETURNING id, key`, key,
	).Scan(&k.ID, &k.Key)
	if err != nil {
		return nil, fmt.Errorf("resolving controlled keyword %q: %w", key, err)
	}
	return k, nil
}

// GetContributorByOrcid looks up a Contributor by their ORCID iD.
func (s *Store) GetContributorByOrcid(ctx context.Context, orcidID string) (*domain.Contributor, error) {
	c := &domain.Contributor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, orcid_id, name FROM contributors WHERE orcid_id = $1`, orcidID,
	).Scan(&c.ID, &c.OrcidID, &c.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting contributor by orcid %q: %w", orcidID, err)
	}
	return c, nil
}

// GetOrCreateContributor resolves an ORCID iD to a Contributor row,
// creating one on first login (spec §4.E contributor binding assumes a
// Contributor already exists for the acting user).
func (s *Store) GetOrCreateContributor(ctx context.Context, orcidID, name string) (*domain.Contributor, error) {
	c := &domain.Contributor{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO contributors (orcid_id, name) VALUES ($1, $2)
		 ON CONFLICT (orcid_id) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, orcid_id, name`, orcidID, name,
	).Scan(&c.ID, &c.OrcidID, &c.Name)
	if err != nil {
		return nil, fmt.Errorf("resolving contributor %q: %w", orcidID, err)
	}
	return c, nil
}

// ListLicenses returns every License a ScoreSet may reference.
func (s *Store) ListLicenses(ctx context.Context) ([]*domain.License, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, short_name, long_name, link FROM licenses ORDER BY short_name`)
	if err != nil {
		return nil, fmt.Errorf("listing licenses: %w", err)
	}
	defer rows.Close()

	var out []*domain.License
	for rows.Next() {
		l := &domain.License{}
		if err := rows.Scan(&l.ID, &l.ShortName, &l.LongName, &l.Link); err != nil {
			return nil, fmt.Errorf("scanning license row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetOrCreateDoiIdentifier resolves a raw DOI string to its lookup row.
func (s *Store) GetOrCreateDoiIdentifier(ctx context.Context, doi string) (*domain.DoiIdentifier, error) {
	d := &domain.DoiIdentifier{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO doi_identifiers (doi) VALUES ($1)
		 ON CONFLICT (doi) DO UPDATE SET doi = EXCLUDED.doi
		 RETURNING id, doi`, doi,
	).Scan(&d.ID, &d.DOI)
	if err != nil {
		return nil, fmt.Errorf("resolving doi identifier %q: %w", doi, err)
	}
	return d, nil
}

// GetOrCreateRawReadIdentifier resolves a raw-read accession to its lookup
// row (e.g. an SRA run accession attached to an Experiment).
func (s *Store) GetOrCreateRawReadIdentifier(ctx context.Context, identifier string) (*domain.RawReadIdentifier, error) {
	r := &domain.RawReadIdentifier{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO raw_read_identifiers (identifier) VALUES ($1)
		 ON CONFLICT (identifier) DO UPDATE SET identifier = EXCLUDED.identifier
		 RETURNING id, identifier`, identifier,
	).Scan(&r.ID, &r.Identifier)
	if err != nil {
		return nil, fmt.Errorf("resolving raw read identifier %q: %w", identifier, err)
	}
	return r, nil
}
