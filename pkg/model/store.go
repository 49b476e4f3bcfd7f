package model

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nika-industries/nika-sub000/pkg/health"
	"github.com/nika-industries/nika-sub000/pkg/kv"
	"github.com/nika-industries/nika-sub000/pkg/log"
	"github.com/nika-industries/nika-sub000/pkg/slug"
)

// Store is the indexed model store adapter: it turns (record, declared
// unique indices) into transactional KV operations against an
// underlying kv.Store. It is generic over nothing itself — the model
// type parameter is supplied per call, matching a runtime registry
// approach as well as Go's compile-time generics allow.
type Store struct {
	kv  kv.Store
	log zerolog.Logger
}

// NewStore wraps a kv.Store as an indexed model store adapter.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store, log: log.WithComponent("model.store")}
}

// Name implements health.Reporter.
func (s *Store) Name() string { return "model.Store" }

// HealthCheck implements health.Reporter by delegating to the
// underlying kv.Store if it is itself a health.Reporter.
func (s *Store) HealthCheck(ctx context.Context) health.ComponentHealth {
	if reporter, ok := s.kv.(health.Reporter); ok {
		return health.AdditiveFromContext(ctx, reporter)
	}
	return health.IntrinsicallyUp()
}

func primaryKey[M any](table string, id RecordID[M]) kv.Key {
	return kv.NewKey(
		slug.Strict(slug.NewStrictSlug("model")),
		slug.Strict(slug.NewStrictSlug(table)),
		slug.Strict(id.Slug()),
	)
}

func indexBaseKey(table, indexName string) kv.Key {
	return kv.NewKey(
		slug.Strict(slug.NewStrictSlug("index")),
		slug.Strict(slug.NewStrictSlug(table)),
		slug.Strict(slug.NewStrictSlug(indexName)),
	)
}

func indexKey(table, indexName string, value slug.EitherSlug) kv.Key {
	return indexBaseKey(table, indexName).With(value)
}

// Create runs the 6-step protocol from the adapter spec: a pessimistic
// transaction checks primary existence, inserts the primary record, then
// for each declared index in order checks and inserts, rolling back and
// returning a typed error on the first failure.
func Create[M Model[M]](ctx context.Context, s *Store, m M) (M, error) {
	var zero M
	table := m.TableName()
	l := log.WithTable(table)

	modelKey := primaryKey(table, m.ID())
	modelValue, err := kv.Serialize(m)
	if err != nil {
		return zero, &ErrSerde{Cause: err}
	}
	idValue, err := kv.Serialize(m.ID().ULID())
	if err != nil {
		return zero, &ErrSerde{Cause: err}
	}

	txn, err := s.kv.BeginPessimistic(ctx)
	if err != nil {
		return zero, &ErrDB{Cause: err}
	}
	csm := kv.NewTicket(txn)

	csm, exists, err := csm.CsmExists(ctx, modelKey)
	if err != nil {
		return zero, &ErrDB{Cause: err}
	}
	if exists {
		if rerr := csm.ToRollback(ctx); rerr != nil {
			return zero, &ErrRetryableTransaction{Cause: rerr}
		}
		l.Warn().Str("id", m.ID().String()).Msg("model already exists")
		return zero, &ErrModelAlreadyExists{Table: table}
	}

	csm, err = csm.CsmInsert(ctx, modelKey, modelValue)
	if err != nil {
		return zero, &ErrDB{Cause: err}
	}

	for _, idx := range m.UniqueIndices() {
		value := idx.Projection(m)
		ik := indexKey(table, idx.Name, value)

		var idxExists bool
		csm, idxExists, err = csm.CsmExists(ctx, ik)
		if err != nil {
			return zero, &ErrDB{Cause: err}
		}
		if idxExists {
			if rerr := csm.ToRollback(ctx); rerr != nil {
				return zero, &ErrRetryableTransaction{Cause: rerr}
			}
			l.Warn().Str("index", idx.Name).Str("value", value.String()).Msg("index already exists")
			return zero, &ErrIndexAlreadyExists{Name: idx.Name, Value: value.String()}
		}

		csm, err = csm.CsmInsert(ctx, ik, idValue)
		if err != nil {
			return zero, &ErrDB{Cause: err}
		}
	}

	if err := csm.ToCommit(ctx); err != nil {
		return zero, &ErrRetryableTransaction{Cause: err}
	}

	l.Debug().Str("id", m.ID().String()).Msg("created model")
	return m, nil
}

// FetchByID opens an optimistic transaction, reads the primary key, and
// deserializes it. A missing key yields (zero, false, nil); a
// deserialization failure is a consistency-error bug.
func FetchByID[M Model[M]](ctx context.Context, s *Store, table string, id RecordID[M]) (M, bool, error) {
	var zero M
	modelKey := primaryKey(table, id)

	txn, err := s.kv.BeginOptimistic(ctx)
	if err != nil {
		return zero, false, &ErrRetryableTransaction{Cause: err}
	}
	csm := kv.NewTicket(txn)

	csm, value, ok, err := csm.CsmGet(ctx, modelKey)
	if err != nil {
		return zero, false, &ErrDB{Cause: err}
	}
	if err := csm.ToCommit(ctx); err != nil {
		return zero, false, &ErrRetryableTransaction{Cause: err}
	}
	if !ok {
		return zero, false, nil
	}

	var m M
	if err := kv.Deserialize(value, &m); err != nil {
		return zero, false, &ErrSerde{Cause: err}
	}
	return m, true, nil
}

// FetchByIndex rejects index names the model never declared, then reads
// the index key for the record id, then fetches by id. A present index
// key whose primary is missing is IndexMalformed: the dangling-index
// detection case.
func FetchByIndex[M Model[M]](ctx context.Context, s *Store, table string, indices []Index[M], indexName string, value slug.EitherSlug) (M, bool, error) {
	var zero M

	declared := false
	for _, idx := range indices {
		if idx.Name == indexName {
			declared = true
			break
		}
	}
	if !declared {
		return zero, false, &ErrIndexDoesNotExistOnModel{Name: indexName}
	}

	ik := indexKey(table, indexName, value)

	txn, err := s.kv.BeginOptimistic(ctx)
	if err != nil {
		return zero, false, &ErrRetryableTransaction{Cause: err}
	}
	csm := kv.NewTicket(txn)

	csm, idValue, ok, err := csm.CsmGet(ctx, ik)
	if err != nil {
		return zero, false, &ErrDB{Cause: err}
	}
	if err := csm.ToCommit(ctx); err != nil {
		return zero, false, &ErrRetryableTransaction{Cause: err}
	}
	if !ok {
		return zero, false, nil
	}

	var rawID [16]byte
	if err := kv.Deserialize(idValue, &rawID); err != nil {
		return zero, false, &ErrSerde{Cause: err}
	}
	id := FromULID[M](rawID)

	m, found, err := FetchByID[M](ctx, s, table, id)
	if err != nil {
		return zero, false, err
	}
	if !found {
		return zero, false, &ErrIndexMalformed{Name: indexName, Value: value.String()}
	}
	return m, true, nil
}

// Enumerate scans the full primary key range for table and deserializes
// every value, returning them in key order (== ID order == creation
// order under the monotonic ID scheme).
func Enumerate[M Model[M]](ctx context.Context, s *Store, table string) ([]M, error) {
	first := primaryKey(table, MinRecordID[M]())
	last := primaryKey(table, MaxRecordID[M]())

	txn, err := s.kv.BeginOptimistic(ctx)
	if err != nil {
		return nil, &ErrRetryableTransaction{Cause: err}
	}
	csm := kv.NewTicket(txn)

	csm, results, err := csm.CsmScan(ctx, kv.BoundIncluded(first), kv.BoundIncluded(last), nil)
	if err != nil {
		return nil, &ErrDB{Cause: err}
	}
	if err := csm.ToCommit(ctx); err != nil {
		return nil, &ErrRetryableTransaction{Cause: err}
	}

	out := make([]M, 0, len(results))
	for _, kv := range results {
		var m M
		if err := Deserialize(kv.Value, &m); err != nil {
			return nil, &ErrSerde{Cause: err}
		}
		out = append(out, m)
	}
	return out, nil
}

// Deserialize is re-exported for Enumerate's call site; it matches
// kv.Deserialize's signature exactly but keeps this file's imports tidy.
func Deserialize(v kv.Value, out any) error { return kv.Deserialize(v, out) }
