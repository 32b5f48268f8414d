package publication

import (
	"context"
	"sync"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// Store is the persistence seam a Resolver reads/writes through (backed by
// component E's internal/store in production).
type Store interface {
	FindPublicationIdentifier(ctx context.Context, identifier, dbName string) (*domain.PublicationIdentifier, error)
	CreatePublicationIdentifier(ctx context.Context, p *domain.PublicationIdentifier) (*domain.PublicationIdentifier, error)
}

// Resolver implements find_or_create (spec §4.D): normalize an identifier,
// consult the store, and on a miss fetch and persist a new record from the
// appropriate external database(s).
type Resolver struct {
	store   Store
	clients map[string]Client
}

// NewResolver builds a Resolver with one Client per supported database,
// each wrapped in its own circuit breaker and rate limiter via cfg.
func NewResolver(store Store, cfg domain.ExternalAPIConfig) *Resolver {
	return newResolverWithClients(store, map[string]Client{
		DbPubMed:   newPubMedClient(cfg.PubMed),
		DbCrossref: newCrossrefClient(cfg.Crossref),
		DbBioRxiv:  newBioRxivClient(cfg.BioRxiv),
		DbMedRxiv:  newMedRxivClient(cfg.MedRxiv),
	})
}

// newResolverWithClients builds a Resolver from a pre-built client map,
// letting tests substitute fakes for the real external clients.
func newResolverWithClients(store Store, clients map[string]Client) *Resolver {
	return &Resolver{store: store, clients: clients}
}

// FindOrCreate resolves identifier (optionally a URL) to a persisted
// PublicationIdentifier, per spec §4.D's resolution contract. dbName may be
// nil to request automatic database disambiguation.
func (r *Resolver) FindOrCreate(ctx context.Context, rawIdentifier string, dbName *string) (*domain.PublicationIdentifier, error) {
	identifier, urlDbName := NormalizeIdentifier(rawIdentifier)
	if dbName == nil && urlDbName != "" {
		dbName = &urlDbName
	}

	if dbName != nil {
		return r.findOrCreateFor(ctx, identifier, *dbName)
	}

	if IsValidCrossrefDOI(identifier) {
		return r.findOrCreateFor(ctx, identifier, DbCrossref)
	}

	candidates := ValidatorsFor(identifier)
	if len(candidates) == 0 {
		return nil, &domain.NonexistentIdentifierError{Identifier: identifier}
	}

	hits := r.fetchAll(ctx, identifier, candidates)
	switch len(hits) {
	case 0:
		return nil, &domain.NonexistentIdentifierError{Identifier: identifier}
	case 1:
		return r.persist(ctx, hits[0])
	default:
		dbs := make([]string, 0, len(hits))
		for _, h := range hits {
			dbs = append(dbs, h.DbName)
		}
		return nil, &domain.AmbiguousIdentifierError{Identifier: identifier, Databases: dbs}
	}
}

func (r *Resolver) findOrCreateFor(ctx context.Context, identifier, dbName string) (*domain.PublicationIdentifier, error) {
	existing, err := r.store.FindPublicationIdentifier(ctx, identifier, dbName)
	if err == nil && existing != nil {
		return existing, nil
	}

	client, ok := r.clients[dbName]
	if !ok {
		return nil, &domain.NonexistentIdentifierError{Identifier: identifier}
	}
	pub, err := client.Fetch(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return r.persist(ctx, pub)
}

// fetchAll queries every candidate database concurrently, returning the
// subset that produced a hit (spec §4.D "query every applicable database in
// parallel").
func (r *Resolver) fetchAll(ctx context.Context, identifier string, candidates []string) []*domain.PublicationIdentifier {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits []*domain.PublicationIdentifier
	)
	for _, dbName := range candidates {
		client, ok := r.clients[dbName]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(c Client) {
			defer wg.Done()
			pub, err := c.Fetch(ctx, identifier)
			if err != nil || pub == nil {
				return
			}
			mu.Lock()
			hits = append(hits, pub)
			mu.Unlock()
		}(client)
	}
	wg.Wait()
	return hits
}

func (r *Resolver) persist(ctx context.Context, pub *domain.PublicationIdentifier) (*domain.PublicationIdentifier, error) {
	pub.ReferenceHTML = RenderReferenceHTML(pub)
	return r.store.CreatePublicationIdentifier(ctx, pub)
}
