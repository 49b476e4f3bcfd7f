// Package kv implements the transactional, ordered key-value contract
// the indexed model store is built on: optimistic transactions validate
// their read set at commit, pessimistic transactions take per-key
// exclusive locks eagerly. An in-memory Store satisfies the same
// interface a durable backend would.
package kv

import (
	"context"
	"fmt"
)

// BoundKind tags a Bound as Included, Excluded, or Unbounded.
type BoundKind int

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one endpoint of a scan range.
type Bound struct {
	Kind BoundKind
	Key  Key
}

// BoundIncluded builds an inclusive bound at key.
func BoundIncluded(key Key) Bound { return Bound{Kind: Included, Key: key} }

// BoundExcluded builds an exclusive bound at key.
func BoundExcluded(key Key) Bound { return Bound{Kind: Excluded, Key: key} }

// BoundUnbounded builds an unbounded endpoint.
func BoundUnbounded() Bound { return Bound{Kind: Unbounded} }

// KeyValue pairs a Key with its stored Value, returned from Scan in key
// order.
type KeyValue struct {
	Key   Key
	Value Value
}

// ErrKeyConflict is returned by an optimistic transaction's Commit when a
// key in its read set no longer matches the committed store. Callers
// must treat this as retryable with a fresh transaction.
type ErrKeyConflict struct{ Key Key }

func (e *ErrKeyConflict) Error() string { return fmt.Sprintf("key conflict: %q", e.Key.String()) }

// ErrKeyLocked is returned immediately (non-blocking) when a pessimistic
// transaction attempts to touch a key already locked by a concurrent
// pessimistic transaction.
type ErrKeyLocked struct{ Key Key }

func (e *ErrKeyLocked) Error() string { return fmt.Sprintf("key locked: %q", e.Key.String()) }

// ErrKeyExists is returned by Insert when the key is already present.
type ErrKeyExists struct{ Key Key }

func (e *ErrKeyExists) Error() string { return fmt.Sprintf("key already exists: %q", e.Key.String()) }

// ErrTransactionConsumed names the fatal programming-error condition of a
// transaction handle used again after an operation already terminated
// it. No code in this package returns it: reusing a consumed Ticket
// (consumptive.go) panics, and so does Close on an unterminated Txn.
type ErrTransactionConsumed struct{}

func (e *ErrTransactionConsumed) Error() string {
	return "transaction used after commit, rollback, or a failed operation"
}

// Txn is the common surface both optimistic and pessimistic transactions
// expose. Every transaction obtained from a Store MUST terminate with
// Commit or Rollback; Close enforces this as a runtime guard.
type Txn interface {
	Get(ctx context.Context, key Key) (Value, bool, error)
	Put(ctx context.Context, key Key, value Value) error
	Insert(ctx context.Context, key Key, value Value) error
	Scan(ctx context.Context, start, end Bound, limit *uint32) ([]KeyValue, error)
	Delete(ctx context.Context, key Key) (bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Close is the drop guard: it panics if the transaction never
	// reached Commit or Rollback while it still holds a non-empty read
	// or write set or a key lock. Callers should `defer txn.Close()`
	// immediately after a successful Begin as a backstop against a
	// forgotten terminal call on an early-return path.
	Close()
}

// Store is the transactional KV contract external backends implement.
type Store interface {
	BeginOptimistic(ctx context.Context) (Txn, error)
	BeginPessimistic(ctx context.Context) (Txn, error)
}
