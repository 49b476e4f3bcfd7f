package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("OpenBoltStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltOptimisticTransactionCommit(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()

	txn, err := store.BeginOptimistic(ctx)
	if err != nil {
		t.Fatal(err)
	}
	key := testKey("key1")
	value := NewValue([]byte("value1"))
	if err := txn.Put(ctx, key, value); err != nil {
		t.Fatal(err)
	}
	if err := txn.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	readTxn, _ := store.BeginOptimistic(ctx)
	got, ok, err := readTxn.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected value present, err=%v ok=%v", err, ok)
	}
	if !valueEqual(got, value) {
		t.Fatalf("got %v, want %v", got.Bytes(), value.Bytes())
	}
	_ = readTxn.Rollback(ctx)
}

func TestBoltPessimisticTransactionCommit(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()

	txn, _ := store.BeginPessimistic(ctx)
	key := testKey("key2")
	value := NewValue([]byte("value2"))
	if err := txn.Put(ctx, key, value); err != nil {
		t.Fatal(err)
	}
	if err := txn.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	readTxn, _ := store.BeginPessimistic(ctx)
	got, ok, err := readTxn.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected value present, err=%v ok=%v", err, ok)
	}
	if !valueEqual(got, value) {
		t.Fatalf("got %v, want %v", got.Bytes(), value.Bytes())
	}
	_ = readTxn.Rollback(ctx)
}

func TestBoltOptimisticConflict(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()
	key := testKey("key3")

	seed, _ := store.BeginPessimistic(ctx)
	_ = seed.Put(ctx, key, NewValue([]byte("value3")))
	_ = seed.Commit(ctx)

	txn, _ := store.BeginOptimistic(ctx)
	if _, _, err := txn.Get(ctx, key); err != nil {
		t.Fatal(err)
	}

	txn2, _ := store.BeginOptimistic(ctx)
	_ = txn2.Put(ctx, key, NewValue([]byte("other_value")))
	if err := txn2.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	err := txn.Commit(ctx)
	if err == nil {
		t.Fatal("expected commit to fail with a conflict")
	}
	var conflict *ErrKeyConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrKeyConflict, got %T: %v", err, err)
	}
}

func TestBoltPessimisticLock(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()
	key := testKey("key4")

	txn1, _ := store.BeginPessimistic(ctx)
	txn2, _ := store.BeginPessimistic(ctx)

	if err := txn1.Put(ctx, key, NewValue([]byte("value4"))); err != nil {
		t.Fatal(err)
	}

	err := txn2.Put(ctx, key, NewValue([]byte("other_value")))
	if err == nil {
		t.Fatal("expected txn2 to fail due to lock")
	}
	var locked *ErrKeyLocked
	if !errors.As(err, &locked) {
		t.Fatalf("expected ErrKeyLocked, got %T: %v", err, err)
	}

	if err := txn1.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	if err := txn2.Put(ctx, key, NewValue([]byte("other_value"))); err != nil {
		t.Fatal(err)
	}
	_ = txn2.Rollback(ctx)
}

func TestBoltScanOperation(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()

	seed, _ := store.BeginPessimistic(ctx)
	_ = seed.Put(ctx, testKey("a"), NewValue([]byte("1")))
	_ = seed.Put(ctx, testKey("b"), NewValue([]byte("2")))
	_ = seed.Put(ctx, testKey("c"), NewValue([]byte("3")))
	_ = seed.Commit(ctx)

	txn, _ := store.BeginOptimistic(ctx)
	result, err := txn.Scan(ctx, BoundIncluded(testKey("a")), BoundIncluded(testKey("b")), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result))
	}
	if result[0].Key.String() != "a" || result[1].Key.String() != "b" {
		t.Fatalf("expected scan in key order, got %v", result)
	}
	_ = txn.Commit(ctx)
}

func TestBoltInsertFailsOnExistingKey(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()
	key := testKey("dup")

	txn, _ := store.BeginPessimistic(ctx)
	if err := txn.Insert(ctx, key, NewValue([]byte("1"))); err != nil {
		t.Fatal(err)
	}
	if err := txn.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	txn2, _ := store.BeginPessimistic(ctx)
	err := txn2.Insert(ctx, key, NewValue([]byte("2")))
	if err == nil {
		t.Fatal("expected insert to fail on existing key")
	}
	_ = txn2.Rollback(ctx)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()
	key := testKey("durable")

	store, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("OpenBoltStore() error = %v", err)
	}
	txn, _ := store.BeginPessimistic(ctx)
	_ = txn.Put(ctx, key, NewValue([]byte("durable_value")))
	if err := txn.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("reopen OpenBoltStore() error = %v", err)
	}
	defer reopened.Close()

	readTxn, _ := reopened.BeginOptimistic(ctx)
	got, ok, err := readTxn.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected value present after reopen, err=%v ok=%v", err, ok)
	}
	if string(got.Bytes()) != "durable_value" {
		t.Fatalf("got %q, want %q", got.Bytes(), "durable_value")
	}
	_ = readTxn.Rollback(ctx)
}

func TestBoltDropWithoutTerminationPanics(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()

	txn, _ := store.BeginOptimistic(ctx)
	_ = txn.Put(ctx, testKey("leaked"), NewValue([]byte("x")))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected Close on a live transaction to panic")
		}
	}()
	txn.Close()
}
