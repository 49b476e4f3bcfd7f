package repo

import (
	"context"

	"github.com/nika-industries/nika-sub000/pkg/model"
	"github.com/nika-industries/nika-sub000/pkg/slug"
)

// Repository wraps the generic indexed-model-store operations for one
// concrete model type, so callers don't pass table name and index
// declarations at every call site.
type Repository[M model.Model[M]] struct {
	store   *model.Store
	table   string
	indices []model.Index[M]
}

// NewRepository builds a Repository for M over store. table and indices
// are read once from a zero-value M, since TableName and UniqueIndices
// never vary by instance.
func NewRepository[M model.Model[M]](store *model.Store) Repository[M] {
	var zero M
	return Repository[M]{store: store, table: zero.TableName(), indices: zero.UniqueIndices()}
}

// Create inserts m and its declared indices, failing if the primary id
// or any index value already exists.
func (r Repository[M]) Create(ctx context.Context, m M) (M, error) {
	return model.Create(ctx, r.store, m)
}

// FetchByID looks up a record by its primary id.
func (r Repository[M]) FetchByID(ctx context.Context, id model.RecordID[M]) (M, bool, error) {
	return model.FetchByID[M](ctx, r.store, r.table, id)
}

// FetchByIndex looks up a record by one of its declared unique indices.
func (r Repository[M]) FetchByIndex(ctx context.Context, indexName string, value slug.EitherSlug) (M, bool, error) {
	return model.FetchByIndex(ctx, r.store, r.table, r.indices, indexName, value)
}

// Enumerate returns every record of M in key order.
func (r Repository[M]) Enumerate(ctx context.Context) ([]M, error) {
	return model.Enumerate[M](ctx, r.store, r.table)
}

// CacheRepository adds the cache-specific named finder to the generic
// Repository.
type CacheRepository struct {
	Repository[Cache]
}

// NewCacheRepository builds a CacheRepository over store.
func NewCacheRepository(store *model.Store) CacheRepository {
	return CacheRepository{Repository: NewRepository[Cache](store)}
}

// FindByName looks up a Cache by its unique name.
func (r CacheRepository) FindByName(ctx context.Context, name slug.StrictSlug) (Cache, bool, error) {
	return r.FetchByIndex(ctx, "name", slug.Strict(name))
}

// EntryRepository adds the entry-specific named finder to the generic
// Repository.
type EntryRepository struct {
	Repository[Entry]
}

// NewEntryRepository builds an EntryRepository over store.
func NewEntryRepository(store *model.Store) EntryRepository {
	return EntryRepository{Repository: NewRepository[Entry](store)}
}

// FindByCacheAndPath looks up the Entry for a given cache and path via
// the composite cache-id-path index.
func (r EntryRepository) FindByCacheAndPath(ctx context.Context, cache model.RecordID[Cache], path slug.LaxSlug) (Entry, bool, error) {
	composite := slug.Lax(slug.NewLaxSlug(cache.String() + "-" + path.String()))
	return r.FetchByIndex(ctx, "cache-id-path", composite)
}

// StoreRepository adds the store-specific named finder to the generic
// Repository.
type StoreRepository struct {
	Repository[Store]
}

// NewStoreRepository builds a StoreRepository over store.
func NewStoreRepository(store *model.Store) StoreRepository {
	return StoreRepository{Repository: NewRepository[Store](store)}
}

// FindByName looks up a Store by its unique name.
func (r StoreRepository) FindByName(ctx context.Context, name slug.StrictSlug) (Store, bool, error) {
	return r.FetchByIndex(ctx, "name", slug.Strict(name))
}

// OrgRepository adds the org-specific named finder to the generic
// Repository.
type OrgRepository struct {
	Repository[Org]
}

// NewOrgRepository builds an OrgRepository over store.
func NewOrgRepository(store *model.Store) OrgRepository {
	return OrgRepository{Repository: NewRepository[Org](store)}
}

// FindByName looks up an Org by its unique name.
func (r OrgRepository) FindByName(ctx context.Context, name slug.StrictSlug) (Org, bool, error) {
	return r.FetchByIndex(ctx, "name", slug.Strict(name))
}

// TokenRepository adds the token-specific named finder to the generic
// Repository.
type TokenRepository struct {
	Repository[Token]
}

// NewTokenRepository builds a TokenRepository over store.
func NewTokenRepository(store *model.Store) TokenRepository {
	return TokenRepository{Repository: NewRepository[Token](store)}
}

// FindBySecret looks up a Token by its secret.
func (r TokenRepository) FindBySecret(ctx context.Context, secret slug.StrictSlug) (Token, bool, error) {
	return r.FetchByIndex(ctx, "secret", slug.Strict(secret))
}
