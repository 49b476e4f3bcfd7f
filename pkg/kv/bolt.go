package kv

import (
	"context"
	"sort"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/nika-industries/nika-sub000/pkg/health"
	"github.com/nika-industries/nika-sub000/pkg/slug"
)

var bucketName = []byte("kv")

// BoltStore is a durable, single-file Store backed by go.etcd.io/bbolt,
// demonstrating that the transactional KV contract is backend-agnostic:
// it satisfies the exact same Store interface MockStore does. Optimistic
// transactions take a consistent bbolt read snapshot and validate their
// read set against a fresh view at commit; pessimistic transactions use
// an in-memory per-key lock table, the same nested locking discipline as
// MockStore, and buffer writes until commit.
//
// Each stored record is an envelope of its Key's segments plus the
// caller's Value payload, because the bolt key (used for ordering) is
// the segments' joined display string, which alone isn't enough to
// reconstruct a Key's per-segment slug flavor for Scan results.
type BoltStore struct {
	db *bolt.DB

	lockMu sync.Mutex
	locked map[string]struct{}
}

type segmentDTO struct {
	Lax   bool   `codec:"lax"`
	Value string `codec:"value"`
}

type boltEnvelope struct {
	Segments []segmentDTO `codec:"segments"`
	Payload  []byte       `codec:"payload"`
}

func encodeKey(k Key) []segmentDTO {
	segs := k.Segments()
	out := make([]segmentDTO, len(segs))
	for i, s := range segs {
		out[i] = segmentDTO{Lax: s.Flavor() == slug.FlavorLax, Value: s.String()}
	}
	return out
}

func decodeKey(dtos []segmentDTO) Key {
	segs := make([]slug.EitherSlug, len(dtos))
	for i, d := range dtos {
		if d.Lax {
			segs[i] = slug.Lax(slug.NewLaxSlug(d.Value))
		} else {
			segs[i] = slug.Strict(slug.NewStrictSlug(d.Value))
		}
	}
	if len(segs) == 0 {
		return Key{}
	}
	return NewKey(segs[0], segs[1:]...)
}

// OpenBoltStore opens (creating if necessary) a bbolt database file at
// path and ensures the kv bucket exists.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, &ErrDBOpen{Cause: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, &ErrDBOpen{Cause: err}
	}
	return &BoltStore{db: db, locked: make(map[string]struct{})}, nil
}

// Close closes the underlying database file.
func (s *BoltStore) Close() error { return s.db.Close() }

// Name implements health.Reporter.
func (s *BoltStore) Name() string { return "BoltStore" }

// HealthCheck implements health.Reporter: a read-only transaction
// confirms the database file is still reachable.
func (s *BoltStore) HealthCheck(ctx context.Context) health.ComponentHealth {
	err := s.db.View(func(tx *bolt.Tx) error { return nil })
	if err != nil {
		return health.Singular(health.Down(health.NewFailureMessage(err.Error())))
	}
	return health.Singular(health.StatusOk())
}

func (s *BoltStore) BeginOptimistic(ctx context.Context) (Txn, error) {
	viewTx, err := s.db.Begin(false)
	if err != nil {
		return nil, &ErrDBOpen{Cause: err}
	}
	return &optimisticBoltTxn{
		store:    s,
		viewTx:   viewTx,
		readSet:  make(map[string]readRecord),
		writeSet: make(map[string]writeRecord),
	}, nil
}

func (s *BoltStore) BeginPessimistic(ctx context.Context) (Txn, error) {
	return &pessimisticBoltTxn{
		store:      s,
		lockedKeys: make(map[string]Key),
		writeSet:   make(map[string]writeRecord),
	}, nil
}

// decodeEnvelope turns a raw bolt value into its Key and Value.
func decodeEnvelope(raw []byte) (Key, Value, error) {
	var env boltEnvelope
	if err := Deserialize(NewValue(raw), &env); err != nil {
		return Key{}, Value{}, &ErrDBOpen{Cause: err}
	}
	return decodeKey(env.Segments), NewValue(env.Payload), nil
}

func encodeEnvelope(key Key, value Value) ([]byte, error) {
	env := boltEnvelope{Segments: encodeKey(key), Payload: value.Bytes()}
	v, err := Serialize(env)
	if err != nil {
		return nil, &ErrDBOpen{Cause: err}
	}
	return v.Bytes(), nil
}

func (s *BoltStore) boltGet(key Key) (Value, bool, error) {
	var (
		v  Value
		ok bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		raw := b.Get([]byte(key.String()))
		if raw == nil {
			return nil
		}
		_, decoded, err := decodeEnvelope(raw)
		if err != nil {
			return err
		}
		v, ok = decoded, true
		return nil
	})
	if err != nil {
		return Value{}, false, err
	}
	return v, ok, nil
}

func (s *BoltStore) scanAll() ([]KeyValue, error) {
	var out []KeyValue
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		c := b.Cursor()
		for k, raw := c.First(); k != nil; k, raw = c.Next() {
			key, value, err := decodeEnvelope(raw)
			if err != nil {
				return err
			}
			out = append(out, KeyValue{Key: key, Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) applyWrites(writes map[string]writeRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for ks, w := range writes {
			if len(w.value.Bytes()) == 0 {
				if err := b.Delete([]byte(ks)); err != nil {
					return err
				}
				continue
			}
			raw, err := encodeEnvelope(w.key, w.value)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(ks), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrDBOpen wraps a bbolt-level failure (opening the file, a view/update
// transaction, or envelope encoding failing at the storage-engine level).
type ErrDBOpen struct{ Cause error }

func (e *ErrDBOpen) Error() string { return "bolt store error: " + e.Cause.Error() }
func (e *ErrDBOpen) Unwrap() error { return e.Cause }

type optimisticBoltTxn struct {
	store    *BoltStore
	viewTx   *bolt.Tx
	readSet  map[string]readRecord
	writeSet map[string]writeRecord
	done     bool
}

func (t *optimisticBoltTxn) Close() {
	if t.done {
		return
	}
	if len(t.readSet) != 0 || len(t.writeSet) != 0 {
		panic("optimistic bolt transaction dropped without commit or rollback")
	}
}

func (t *optimisticBoltTxn) snapshotGet(key Key) (Value, bool, error) {
	b := t.viewTx.Bucket(bucketName)
	raw := b.Get([]byte(key.String()))
	if raw == nil {
		return Value{}, false, nil
	}
	_, v, err := decodeEnvelope(raw)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

func (t *optimisticBoltTxn) Get(ctx context.Context, key Key) (Value, bool, error) {
	if w, ok := t.writeSet[key.String()]; ok {
		if len(w.value.Bytes()) == 0 {
			return Value{}, false, nil
		}
		return w.value, true, nil
	}
	v, ok, err := t.snapshotGet(key)
	if err != nil {
		return Value{}, false, err
	}
	if ok {
		t.readSet[key.String()] = readRecord{key: key, value: &v}
	} else {
		t.readSet[key.String()] = readRecord{key: key, value: nil}
	}
	return v, ok, nil
}

func (t *optimisticBoltTxn) Put(ctx context.Context, key Key, value Value) error {
	if _, ok := t.readSet[key.String()]; !ok {
		v, ok, err := t.snapshotGet(key)
		if err != nil {
			return err
		}
		if ok {
			t.readSet[key.String()] = readRecord{key: key, value: &v}
		} else {
			t.readSet[key.String()] = readRecord{key: key, value: nil}
		}
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *optimisticBoltTxn) Insert(ctx context.Context, key Key, value Value) error {
	if _, existsInWrites := t.writeSet[key.String()]; existsInWrites {
		return &ErrKeyExists{Key: key}
	}
	_, exists, err := t.snapshotGet(key)
	if err != nil {
		return err
	}
	if exists {
		return &ErrKeyExists{Key: key}
	}
	t.readSet[key.String()] = readRecord{key: key, value: nil}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *optimisticBoltTxn) Scan(ctx context.Context, start, end Bound, limit *uint32) ([]KeyValue, error) {
	b := t.viewTx.Bucket(bucketName)
	var matched []KeyValue
	c := b.Cursor()
	for k, raw := c.First(); k != nil; k, raw = c.Next() {
		key, value, err := decodeEnvelope(raw)
		if err != nil {
			return nil, err
		}
		if matchBound(start, key, true) && matchBound(end, key, false) {
			matched = append(matched, KeyValue{Key: key, Value: value})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key.Less(matched[j].Key) })

	for _, kv := range matched {
		v := kv.Value
		t.readSet[kv.Key.String()] = readRecord{key: kv.Key, value: &v}
	}
	out := make([]KeyValue, 0, len(matched))
	for _, kv := range matched {
		out = append(out, kv)
		if limit != nil && uint32(len(out)) == *limit {
			break
		}
	}
	return out, nil
}

func (t *optimisticBoltTxn) Delete(ctx context.Context, key Key) (bool, error) {
	_, existed, err := t.Get(ctx, key)
	if err != nil {
		return false, err
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: NewValue(nil)}
	return existed, nil
}

func (t *optimisticBoltTxn) checkConflicts() error {
	for _, rec := range t.readSet {
		got, ok, err := t.store.boltGet(rec.key)
		if err != nil {
			return err
		}
		switch {
		case rec.value == nil && !ok:
			continue
		case rec.value == nil && ok:
			return &ErrKeyConflict{Key: rec.key}
		case rec.value != nil && !ok:
			return &ErrKeyConflict{Key: rec.key}
		case rec.value != nil && ok && !valueEqual(*rec.value, got):
			return &ErrKeyConflict{Key: rec.key}
		}
	}
	return nil
}

func (t *optimisticBoltTxn) Commit(ctx context.Context) error {
	_ = t.viewTx.Rollback()
	if err := t.checkConflicts(); err != nil {
		t.readSet = map[string]readRecord{}
		t.writeSet = map[string]writeRecord{}
		t.done = true
		return err
	}
	if err := t.store.applyWrites(t.writeSet); err != nil {
		t.readSet = map[string]readRecord{}
		t.writeSet = map[string]writeRecord{}
		t.done = true
		return err
	}
	t.readSet = map[string]readRecord{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

func (t *optimisticBoltTxn) Rollback(ctx context.Context) error {
	_ = t.viewTx.Rollback()
	t.readSet = map[string]readRecord{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

// pessimisticBoltTxn acquires an exclusive in-memory lock on every key it
// touches and buffers writes, applying them in a single bolt update
// transaction at Commit.
type pessimisticBoltTxn struct {
	store      *BoltStore
	lockedKeys map[string]Key
	writeSet   map[string]writeRecord
	done       bool
}

func (t *pessimisticBoltTxn) Close() {
	if t.done {
		return
	}
	if len(t.lockedKeys) != 0 || len(t.writeSet) != 0 {
		panic("pessimistic bolt transaction dropped without commit or rollback")
	}
}

func (t *pessimisticBoltTxn) lockKey(key Key) error {
	ks := key.String()
	if _, already := t.lockedKeys[ks]; already {
		return nil
	}
	t.store.lockMu.Lock()
	defer t.store.lockMu.Unlock()
	if _, locked := t.store.locked[ks]; locked {
		return &ErrKeyLocked{Key: key}
	}
	t.store.locked[ks] = struct{}{}
	t.lockedKeys[ks] = key
	return nil
}

func (t *pessimisticBoltTxn) unlockAll() {
	t.store.lockMu.Lock()
	defer t.store.lockMu.Unlock()
	for ks := range t.lockedKeys {
		delete(t.store.locked, ks)
	}
}

func (t *pessimisticBoltTxn) Get(ctx context.Context, key Key) (Value, bool, error) {
	if err := t.lockKey(key); err != nil {
		return Value{}, false, err
	}
	if w, ok := t.writeSet[key.String()]; ok {
		if len(w.value.Bytes()) == 0 {
			return Value{}, false, nil
		}
		return w.value, true, nil
	}
	return t.store.boltGet(key)
}

func (t *pessimisticBoltTxn) Put(ctx context.Context, key Key, value Value) error {
	if err := t.lockKey(key); err != nil {
		return err
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *pessimisticBoltTxn) Insert(ctx context.Context, key Key, value Value) error {
	if err := t.lockKey(key); err != nil {
		return err
	}
	_, exists, err := t.store.boltGet(key)
	if err != nil {
		return err
	}
	if exists {
		return &ErrKeyExists{Key: key}
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *pessimisticBoltTxn) Scan(ctx context.Context, start, end Bound, limit *uint32) ([]KeyValue, error) {
	all, err := t.store.scanAll()
	if err != nil {
		return nil, err
	}
	var matched []KeyValue
	for _, kv := range all {
		if matchBound(start, kv.Key, true) && matchBound(end, kv.Key, false) {
			matched = append(matched, kv)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key.Less(matched[j].Key) })

	out := make([]KeyValue, 0, len(matched))
	for _, kv := range matched {
		out = append(out, kv)
		if limit != nil && uint32(len(out)) == *limit {
			break
		}
	}
	return out, nil
}

func (t *pessimisticBoltTxn) Delete(ctx context.Context, key Key) (bool, error) {
	if err := t.lockKey(key); err != nil {
		return false, err
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: NewValue(nil)}
	return true, nil
}

func (t *pessimisticBoltTxn) Commit(ctx context.Context) error {
	if err := t.store.applyWrites(t.writeSet); err != nil {
		t.unlockAll()
		t.lockedKeys = map[string]Key{}
		t.writeSet = map[string]writeRecord{}
		t.done = true
		return err
	}
	t.unlockAll()
	t.lockedKeys = map[string]Key{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

func (t *pessimisticBoltTxn) Rollback(ctx context.Context) error {
	t.unlockAll()
	t.lockedKeys = map[string]Key{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}
