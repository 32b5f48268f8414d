package publication

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedb/mavedb-core/internal/domain"
)

type fakeClient struct {
	pub *domain.PublicationIdentifier
	err error
}

func (f *fakeClient) Fetch(ctx context.Context, identifier string) (*domain.PublicationIdentifier, error) {
	return f.pub, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*domain.PublicationIdentifier
	created []*domain.PublicationIdentifier
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*domain.PublicationIdentifier{}}
}

func (s *fakeStore) key(identifier, dbName string) string { return dbName + ":" + identifier }

func (s *fakeStore) FindPublicationIdentifier(ctx context.Context, identifier, dbName string) (*domain.PublicationIdentifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.records[s.key(identifier, dbName)]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) CreatePublicationIdentifier(ctx context.Context, p *domain.PublicationIdentifier) (*domain.PublicationIdentifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[s.key(p.Identifier, p.DbName)] = p
	s.created = append(s.created, p)
	return p, nil
}

func TestResolver_FindOrCreate_ExplicitDbNameHitsStoreFirst(t *testing.T) {
	store := newFakeStore()
	existing := &domain.PublicationIdentifier{Identifier: "12345678", DbName: DbPubMed, Title: "cached"}
	store.records[store.key("12345678", DbPubMed)] = existing

	r := newResolverWithClients(store, map[string]Client{
		DbPubMed: &fakeClient{err: errors.New("should not be called")},
	})

	dbName := DbPubMed
	got, err := r.FindOrCreate(context.Background(), "12345678", &dbName)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Title)
}

func TestResolver_FindOrCreate_ExplicitDbNameFetchesOnMiss(t *testing.T) {
	store := newFakeStore()
	r := newResolverWithClients(store, map[string]Client{
		DbPubMed: &fakeClient{pub: &domain.PublicationIdentifier{Identifier: "12345678", DbName: DbPubMed, Title: "fetched"}},
	})

	dbName := DbPubMed
	got, err := r.FindOrCreate(context.Background(), "12345678", &dbName)
	require.NoError(t, err)
	assert.Equal(t, "fetched", got.Title)
	assert.Len(t, store.created, 1)
	assert.NotEmpty(t, got.ReferenceHTML)
}

func TestResolver_FindOrCreate_DOIResolvesAgainstCrossrefOnly(t *testing.T) {
	store := newFakeStore()
	r := newResolverWithClients(store, map[string]Client{
		DbCrossref: &fakeClient{pub: &domain.PublicationIdentifier{Identifier: "10.1038/x", DbName: DbCrossref, Title: "crossref hit"}},
		DbPubMed:   &fakeClient{err: errors.New("should not be queried for a DOI")},
	})

	got, err := r.FindOrCreate(context.Background(), "10.1038/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "crossref hit", got.Title)
}

func TestResolver_FindOrCreate_AmbiguousWhenMultipleDatabasesHit(t *testing.T) {
	store := newFakeStore()
	r := newResolverWithClients(store, map[string]Client{
		DbPubMed:  &fakeClient{pub: &domain.PublicationIdentifier{Identifier: "123456", DbName: DbPubMed}},
		DbBioRxiv: &fakeClient{pub: &domain.PublicationIdentifier{Identifier: "123456", DbName: DbBioRxiv}},
	})

	_, err := r.FindOrCreate(context.Background(), "123456", nil)
	require.Error(t, err)
	var ambiguous *domain.AmbiguousIdentifierError
	assert.ErrorAs(t, err, &ambiguous)
}

func TestResolver_FindOrCreate_NonexistentWhenNoneHit(t *testing.T) {
	store := newFakeStore()
	r := newResolverWithClients(store, map[string]Client{
		DbPubMed:  &fakeClient{err: errors.New("not found upstream")},
		DbBioRxiv: &fakeClient{err: errors.New("not found upstream")},
	})

	_, err := r.FindOrCreate(context.Background(), "123456", nil)
	require.Error(t, err)
	var nonexistent *domain.NonexistentIdentifierError
	assert.ErrorAs(t, err, &nonexistent)
}

func TestResolver_FindOrCreate_UnrecognizedIdentifierIsNonexistent(t *testing.T) {
	store := newFakeStore()
	r := newResolverWithClients(store, map[string]Client{})

	_, err := r.FindOrCreate(context.Background(), "not-an-identifier!", nil)
	require.Error(t, err)
	var nonexistent *domain.NonexistentIdentifierError
	assert.ErrorAs(t, err, &nonexistent)
}
