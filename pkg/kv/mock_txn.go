package kv

import "context"

type readRecord struct {
	key   Key
	value *Value // nil means "observed absent"
}

type writeRecord struct {
	key   Key
	value Value
}

// optimisticTxn records a read set and a write set; Commit validates the
// read set against the committed store and fails KeyConflict on
// mismatch, leaving the caller to retry with a fresh transaction.
type optimisticTxn struct {
	store    *MockStore
	readSet  map[string]readRecord
	writeSet map[string]writeRecord
	done     bool
}

func (t *optimisticTxn) Close() {
	if t.done {
		return
	}
	if len(t.readSet) != 0 || len(t.writeSet) != 0 {
		panic("optimistic transaction dropped without commit or rollback")
	}
}

func (t *optimisticTxn) observeRead(key Key) {
	t.store.mu.RLock()
	e, ok := t.store.data[key.String()]
	t.store.mu.RUnlock()
	if ok {
		v := e.value
		t.readSet[key.String()] = readRecord{key: key, value: &v}
	} else {
		t.readSet[key.String()] = readRecord{key: key, value: nil}
	}
}

func (t *optimisticTxn) Get(ctx context.Context, key Key) (Value, bool, error) {
	t.store.mu.RLock()
	e, ok := t.store.data[key.String()]
	t.store.mu.RUnlock()

	if ok {
		v := e.value
		t.readSet[key.String()] = readRecord{key: key, value: &v}
		return e.value, true, nil
	}
	t.readSet[key.String()] = readRecord{key: key, value: nil}
	return Value{}, false, nil
}

func (t *optimisticTxn) Put(ctx context.Context, key Key, value Value) error {
	t.observeRead(key)
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *optimisticTxn) Insert(ctx context.Context, key Key, value Value) error {
	t.store.mu.Lock()
	_, exists := t.store.data[key.String()]
	t.store.mu.Unlock()
	if exists {
		return &ErrKeyExists{Key: key}
	}
	t.readSet[key.String()] = readRecord{key: key, value: nil}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *optimisticTxn) Scan(ctx context.Context, start, end Bound, limit *uint32) ([]KeyValue, error) {
	t.store.mu.RLock()
	result := scanSorted(t.store.data, start, end, limit)
	t.store.mu.RUnlock()

	for _, kv := range result {
		v := kv.Value
		t.readSet[kv.Key.String()] = readRecord{key: kv.Key, value: &v}
	}
	return result, nil
}

func (t *optimisticTxn) Delete(ctx context.Context, key Key) (bool, error) {
	t.observeRead(key)
	t.writeSet[key.String()] = writeRecord{key: key, value: NewValue(nil)}
	return true, nil
}

func (t *optimisticTxn) checkConflicts() error {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for ks, rec := range t.readSet {
		got, ok := t.store.data[ks]
		switch {
		case rec.value == nil && !ok:
			continue
		case rec.value == nil && ok:
			return &ErrKeyConflict{Key: rec.key}
		case rec.value != nil && !ok:
			return &ErrKeyConflict{Key: rec.key}
		case rec.value != nil && ok && !valueEqual(*rec.value, got.value):
			return &ErrKeyConflict{Key: rec.key}
		}
	}
	return nil
}

func (t *optimisticTxn) Commit(ctx context.Context) error {
	if err := t.checkConflicts(); err != nil {
		return err
	}
	t.store.mu.Lock()
	for ks, w := range t.writeSet {
		t.store.data[ks] = entry{key: w.key, value: w.value}
	}
	t.store.mu.Unlock()
	t.readSet = map[string]readRecord{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

func (t *optimisticTxn) Rollback(ctx context.Context) error {
	t.readSet = map[string]readRecord{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

// pessimisticTxn acquires an exclusive lock on every key it touches,
// failing immediately (non-blocking) if a concurrent pessimistic
// transaction already holds that lock.
type pessimisticTxn struct {
	store      *MockStore
	lockedKeys map[string]Key
	writeSet   map[string]writeRecord
	done       bool
}

func (t *pessimisticTxn) Close() {
	if t.done {
		return
	}
	if len(t.lockedKeys) != 0 || len(t.writeSet) != 0 {
		panic("pessimistic transaction dropped without commit or rollback")
	}
}

func (t *pessimisticTxn) lockKey(key Key) error {
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

func (t *pessimisticTxn) unlockAll() {
	t.store.lockMu.Lock()
	defer t.store.lockMu.Unlock()
	for ks := range t.lockedKeys {
		delete(t.store.locked, ks)
	}
}

func (t *pessimisticTxn) Get(ctx context.Context, key Key) (Value, bool, error) {
	if err := t.lockKey(key); err != nil {
		return Value{}, false, err
	}
	t.store.mu.RLock()
	e, ok := t.store.data[key.String()]
	t.store.mu.RUnlock()
	return e.value, ok, nil
}

func (t *pessimisticTxn) Put(ctx context.Context, key Key, value Value) error {
	if err := t.lockKey(key); err != nil {
		return err
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *pessimisticTxn) Insert(ctx context.Context, key Key, value Value) error {
	if err := t.lockKey(key); err != nil {
		return err
	}
	t.store.mu.RLock()
	_, exists := t.store.data[key.String()]
	t.store.mu.RUnlock()
	if exists {
		return &ErrKeyExists{Key: key}
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: value}
	return nil
}

func (t *pessimisticTxn) Scan(ctx context.Context, start, end Bound, limit *uint32) ([]KeyValue, error) {
	t.store.mu.RLock()
	result := scanSorted(t.store.data, start, end, limit)
	t.store.mu.RUnlock()
	return result, nil
}

func (t *pessimisticTxn) Delete(ctx context.Context, key Key) (bool, error) {
	if err := t.lockKey(key); err != nil {
		return false, err
	}
	t.writeSet[key.String()] = writeRecord{key: key, value: NewValue(nil)}
	return true, nil
}

func (t *pessimisticTxn) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	for ks, w := range t.writeSet {
		t.store.data[ks] = entry{key: w.key, value: w.value}
	}
	t.store.mu.Unlock()
	t.unlockAll()
	t.lockedKeys = map[string]Key{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

func (t *pessimisticTxn) Rollback(ctx context.Context) error {
	t.unlockAll()
	t.lockedKeys = map[string]Key{}
	t.writeSet = map[string]writeRecord{}
	t.done = true
	return nil
}

func valueEqual(a, b Value) bool {
	if len(a.bytes) != len(b.bytes) {
		return false
	}
	for i := range a.bytes {
		if a.bytes[i] != b.bytes[i] {
			return false
		}
	}
	return true
}
