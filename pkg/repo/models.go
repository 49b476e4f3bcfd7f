// Package repo defines the concrete domain models managed by the
// metadata plane — Org, User, Store, Cache, Entry, Token — and a
// generic repository helper that wires each one to the indexed model
// store adapter in pkg/model.
package repo

import (
	"github.com/nika-industries/nika-sub000/pkg/model"
	"github.com/nika-industries/nika-sub000/pkg/slug"
	"github.com/nika-industries/nika-sub000/pkg/storage"
)

// Org is a tenant boundary: every Store, Cache, Entry, User, and Token
// belongs to exactly one Org.
//
// Ident is exported (with a codec tag) rather than lowercase: the
// msgpack codec kv.Serialize/Deserialize goes through is
// reflection-based and cannot see unexported fields, so a lowercase id
// field would round-trip as a zero RecordID on every fetch. The
// accessor stays named ID() — Ident and ID name different selectors,
// so the two don't collide.
type Org struct {
	Ident model.RecordID[Org] `codec:"id"`
	Name  slug.StrictSlug
}

// NewOrg constructs an Org with a freshly generated id.
func NewOrg(name slug.StrictSlug) Org {
	return Org{Ident: model.NewRecordID[Org](), Name: name}
}

func (o Org) ID() model.RecordID[Org] { return o.Ident }
func (o Org) TableName() string       { return "org" }

func (o Org) UniqueIndices() []model.Index[Org] {
	return []model.Index[Org]{
		{Name: "name", Projection: func(o Org) slug.EitherSlug { return slug.Strict(o.Name) }},
	}
}

// User is an account within an Org.
type User struct {
	Ident model.RecordID[User] `codec:"id"`
	Name  string
	Org   model.RecordID[Org]
}

// NewUser constructs a User with a freshly generated id.
func NewUser(name string, org model.RecordID[Org]) User {
	return User{Ident: model.NewRecordID[User](), Name: name, Org: org}
}

func (u User) ID() model.RecordID[User] { return u.Ident }
func (u User) TableName() string        { return "user" }

// User has no declared unique index in the original model; its
// uniqueness is enforced at the identity-provider boundary, not here.
func (u User) UniqueIndices() []model.Index[User] { return nil }

// Store is a backing object-storage location with connection
// credentials, owned by an Org and optionally shared publicly.
type Store struct {
	Ident  model.RecordID[Store] `codec:"id"`
	Name   slug.StrictSlug
	Config storage.Credentials
	Public bool
	Org    model.RecordID[Org]
}

// NewStore constructs a Store with a freshly generated id.
func NewStore(name slug.StrictSlug, config storage.Credentials, public bool, org model.RecordID[Org]) Store {
	return Store{Ident: model.NewRecordID[Store](), Name: name, Config: config, Public: public, Org: org}
}

func (s Store) ID() model.RecordID[Store] { return s.Ident }
func (s Store) TableName() string         { return "store" }

func (s Store) UniqueIndices() []model.Index[Store] {
	return []model.Index[Store]{
		{Name: "name", Projection: func(s Store) slug.EitherSlug { return slug.Strict(s.Name) }},
	}
}

// Cache is a named artifact namespace backed by a Store.
type Cache struct {
	Ident  model.RecordID[Cache] `codec:"id"`
	Name   slug.StrictSlug
	Public bool
	Store  model.RecordID[Store]
	Org    model.RecordID[Org]
}

// NewCache constructs a Cache with a freshly generated id.
func NewCache(name slug.StrictSlug, public bool, store model.RecordID[Store], org model.RecordID[Org]) Cache {
	return Cache{Ident: model.NewRecordID[Cache](), Name: name, Public: public, Store: store, Org: org}
}

func (c Cache) ID() model.RecordID[Cache] { return c.Ident }
func (c Cache) TableName() string         { return "cache" }

func (c Cache) UniqueIndices() []model.Index[Cache] {
	return []model.Index[Cache]{
		{Name: "name", Projection: func(c Cache) slug.EitherSlug { return slug.Strict(c.Name) }},
	}
}

// Entry is one artifact's metadata record within a Cache: its path and
// byte size, with the actual bytes living in the underlying Store.
type Entry struct {
	Ident model.RecordID[Entry] `codec:"id"`
	Path  slug.LaxSlug
	Size  uint64
	Cache model.RecordID[Cache]
	Org   model.RecordID[Org]
}

// NewEntry constructs an Entry with a freshly generated id.
func NewEntry(path slug.LaxSlug, size uint64, cache model.RecordID[Cache], org model.RecordID[Org]) Entry {
	return Entry{Ident: model.NewRecordID[Entry](), Path: path, Size: size, Cache: cache, Org: org}
}

func (e Entry) ID() model.RecordID[Entry] { return e.Ident }
func (e Entry) TableName() string         { return "entry" }

// cacheIDPathIndex composes the cache id and path into a single lax
// slug so a point lookup can resolve (cache, path) -> Entry directly.
func cacheIDPathIndex(e Entry) slug.EitherSlug {
	return slug.Lax(slug.NewLaxSlug(e.Cache.String() + "-" + e.Path.String()))
}

func (e Entry) UniqueIndices() []model.Index[Entry] {
	return []model.Index[Entry]{
		{Name: "cache-id-path", Projection: cacheIDPathIndex},
	}
}

// CachePermissionType is a granted capability on a Cache.
type CachePermissionType string

const (
	CachePermissionRead  CachePermissionType = "read"
	CachePermissionWrite CachePermissionType = "write"
)

// CachePermission grants a capability against one store.
type CachePermission struct {
	StoreID    model.RecordID[Store]
	Permission CachePermissionType
}

// PermissionSet is an unordered collection of granted permissions.
//
// Perms is exported for the same reason RecordID.Val and every model's
// Ident field are: it travels through kv.Serialize/Deserialize as part
// of a Token record, and the msgpack codec cannot see an unexported
// field.
type PermissionSet struct {
	Perms []CachePermission `codec:"perms"`
}

// NewPermissionSet builds a PermissionSet from a list of permissions.
func NewPermissionSet(perms ...CachePermission) PermissionSet {
	return PermissionSet{Perms: perms}
}

// Contains reports whether p is granted in the set.
func (s PermissionSet) Contains(p CachePermission) bool {
	for _, have := range s.Perms {
		if have.StoreID.Equal(p.StoreID) && have.Permission == p.Permission {
			return true
		}
	}
	return false
}

// ContainsSet reports whether every permission in other is also granted
// in s.
func (s PermissionSet) ContainsSet(other PermissionSet) bool {
	for _, want := range other.Perms {
		if !s.Contains(want) {
			return false
		}
	}
	return true
}

// Token authenticates API requests and carries a scoped PermissionSet.
type Token struct {
	Ident    model.RecordID[Token] `codec:"id"`
	Nickname slug.StrictSlug
	Secret   slug.StrictSlug
	Perms    PermissionSet
	Owner    model.RecordID[User]
	Org      model.RecordID[Org]
}

// NewToken constructs a Token with a freshly generated id, rejecting an
// invalid secret up front.
func NewToken(nickname slug.StrictSlug, secret string, perms PermissionSet, owner model.RecordID[User], org model.RecordID[Org]) (Token, error) {
	if err := ValidateTokenSecret(secret); err != nil {
		return Token{}, err
	}
	return Token{
		Ident:    model.NewRecordID[Token](),
		Nickname: nickname,
		Secret:   slug.NewStrictSlug(secret),
		Perms:    perms,
		Owner:    owner,
		Org:      org,
	}, nil
}

func (t Token) ID() model.RecordID[Token] { return t.Ident }
func (t Token) TableName() string         { return "token" }

func (t Token) UniqueIndices() []model.Index[Token] {
	return []model.Index[Token]{
		{Name: "secret", Projection: func(t Token) slug.EitherSlug { return slug.Strict(t.Secret) }},
	}
}
