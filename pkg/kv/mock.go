package kv

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nika-industries/nika-sub000/pkg/health"
	"github.com/nika-industries/nika-sub000/pkg/log"
)

// MockStore is an in-memory reference implementation of Store. It holds
// the entire data map under a reader-writer lock and a separate locked-
// key set under a plain mutex, matching the concurrency model of §5: the
// commit path takes the write lock, readers take the read lock, and lock
// acquisition is strictly nested per transaction.
type MockStore struct {
	mu   sync.RWMutex
	data map[string]entry

	lockMu sync.Mutex
	locked map[string]struct{}

	log zerolog.Logger
}

type entry struct {
	key   Key
	value Value
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		data:   make(map[string]entry),
		locked: make(map[string]struct{}),
		log:    log.WithComponent("kv.mock"),
	}
}

// Name implements health.Reporter.
func (s *MockStore) Name() string { return "MockStore" }

// HealthCheck implements health.Reporter: the in-memory mock cannot
// statefully fail.
func (s *MockStore) HealthCheck(context.Context) health.ComponentHealth {
	return health.IntrinsicallyUp()
}

// PutForTest writes directly to the store bypassing any transaction,
// for constructing invariant-violating fixtures in tests (e.g. a
// dangling index pointing at no primary record).
func (s *MockStore) PutForTest(key Key, value Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key.String()] = entry{key: key, value: value}
}

func (s *MockStore) BeginOptimistic(ctx context.Context) (Txn, error) {
	return &optimisticTxn{store: s, readSet: make(map[string]readRecord), writeSet: make(map[string]writeRecord)}, nil
}

func (s *MockStore) BeginPessimistic(ctx context.Context) (Txn, error) {
	return &pessimisticTxn{store: s, lockedKeys: make(map[string]Key), writeSet: make(map[string]writeRecord)}, nil
}

func matchBound(b Bound, key Key, isStart bool) bool {
	switch b.Kind {
	case Unbounded:
		return true
	case Included:
		if isStart {
			return !key.Less(b.Key)
		}
		return !b.Key.Less(key)
	case Excluded:
		if isStart {
			return b.Key.Less(key)
		}
		return key.Less(b.Key)
	default:
		return true
	}
}

// scanSorted applies start/end bounds over data and returns matches in
// key order (the backend's sort order), honoring an optional limit. The
// Rust reference mock iterated an unordered HashMap for scan; ordering
// is promoted to a hard guarantee here per spec's enumerate-order
// invariant, satisfied by sorting matches before truncating to limit.
func scanSorted(data map[string]entry, start, end Bound, limit *uint32) []KeyValue {
	matched := make([]entry, 0, len(data))
	for _, e := range data {
		if matchBound(start, e.key, true) && matchBound(end, e.key, false) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].key.Less(matched[j].key) })

	out := make([]KeyValue, 0, len(matched))
	for _, e := range matched {
		out = append(out, KeyValue{Key: e.key, Value: e.value})
		if limit != nil && uint32(len(out)) == *limit {
			break
		}
	}
	return out
}
