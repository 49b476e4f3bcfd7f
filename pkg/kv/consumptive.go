package kv

import "context"

// Ticket wraps a live Txn so that every consumptive operation takes
// ownership of it and returns either a continuation Ticket or a
// terminal error. Go has no move semantics, so the "you cannot reuse a
// transaction after a failed operation" discipline is enforced at
// runtime: once a Ticket's transaction is consumed (by a failure or a
// terminal commit/rollback), calling any further method on it panics.
//
// This mirrors the source's `ConsumptiveTransaction` / `KvTransactionExt`
// traits: every operation there consumes `self` and returns either
// `(Self, value)` on success or performs the rollback internally and
// returns only an error.
type Ticket struct {
	txn  Txn
	used bool
}

// NewTicket wraps a freshly begun transaction as a Ticket.
func NewTicket(txn Txn) *Ticket { return &Ticket{txn: txn} }

func (t *Ticket) mustBeLive() {
	if t.used {
		panic("kv: ticket reused after being consumed")
	}
}

// CsmGet reads a key; on success it returns a continuation ticket and the
// value (or ok=false if absent). On backend failure it rolls back and
// returns only an error; the ticket is consumed either way.
func (t *Ticket) CsmGet(ctx context.Context, key Key) (*Ticket, Value, bool, error) {
	t.mustBeLive()
	t.used = true
	v, ok, err := t.txn.Get(ctx, key)
	if err != nil {
		t.used = true
		_ = t.txn.Rollback(ctx)
		return nil, Value{}, false, err
	}
	return &Ticket{txn: t.txn}, v, ok, nil
}

// CsmExists reports whether a key exists, consuming and returning a
// continuation ticket on success.
func (t *Ticket) CsmExists(ctx context.Context, key Key) (*Ticket, bool, error) {
	next, _, ok, err := t.CsmGet(ctx, key)
	return next, ok, err
}

// CsmInsert inserts a key, rolling back and returning an error if the key
// already existed or the backend failed.
func (t *Ticket) CsmInsert(ctx context.Context, key Key, value Value) (*Ticket, error) {
	t.mustBeLive()
	t.used = true
	if err := t.txn.Insert(ctx, key, value); err != nil {
		t.used = true
		_ = t.txn.Rollback(ctx)
		return nil, err
	}
	return &Ticket{txn: t.txn}, nil
}

// CsmScan scans a range, rolling back and returning an error on backend
// failure.
func (t *Ticket) CsmScan(ctx context.Context, start, end Bound, limit *uint32) (*Ticket, []KeyValue, error) {
	t.mustBeLive()
	t.used = true
	result, err := t.txn.Scan(ctx, start, end, limit)
	if err != nil {
		t.used = true
		_ = t.txn.Rollback(ctx)
		return nil, nil, err
	}
	return &Ticket{txn: t.txn}, result, nil
}

// ToCommit consumes the ticket by committing the underlying transaction.
func (t *Ticket) ToCommit(ctx context.Context) error {
	t.mustBeLive()
	t.used = true
	return t.txn.Commit(ctx)
}

// ToRollback consumes the ticket by rolling back the underlying
// transaction, discarding any prior error.
func (t *Ticket) ToRollback(ctx context.Context) error {
	t.mustBeLive()
	t.used = true
	return t.txn.Rollback(ctx)
}

// ToRollbackWithError consumes the ticket by rolling back and then
// returns the given error, letting callers write
// `return csm.ToRollbackWithError(ctx, err)` at a single call site.
func (t *Ticket) ToRollbackWithError(ctx context.Context, err error) error {
	_ = t.ToRollback(ctx)
	return err
}
