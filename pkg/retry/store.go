package retry

import (
	"context"
	"fmt"

	"github.com/nika-industries/nika-sub000/pkg/health"
	"github.com/nika-industries/nika-sub000/pkg/kv"
)

// RetryableStore adapts a Retryable[kv.Store] into a kv.Store itself:
// once the wrapped store is up, every call delegates straight through
// to it; if initialization never succeeded, every call fails fast with
// the stored error instead of touching a nil store.
type RetryableStore struct {
	r *Retryable[kv.Store]
}

// NewRetryableStore wraps a Retryable[kv.Store] as a kv.Store.
func NewRetryableStore(r *Retryable[kv.Store]) *RetryableStore {
	return &RetryableStore{r: r}
}

func (s *RetryableStore) BeginOptimistic(ctx context.Context) (kv.Txn, error) {
	inner, err := s.r.Inner()
	if err != nil {
		return nil, fmt.Errorf("store failed to initialize: %w", err)
	}
	return inner.BeginOptimistic(ctx)
}

func (s *RetryableStore) BeginPessimistic(ctx context.Context) (kv.Txn, error) {
	inner, err := s.r.Inner()
	if err != nil {
		return nil, fmt.Errorf("store failed to initialize: %w", err)
	}
	return inner.BeginPessimistic(ctx)
}

// Name implements health.Reporter.
func (s *RetryableStore) Name() string { return "RetryableStore" }

// HealthCheck implements health.Reporter by delegating to the wrapped
// Retryable, which itself reports Down if initialization never
// succeeded.
func (s *RetryableStore) HealthCheck(ctx context.Context) health.ComponentHealth {
	return s.r.HealthCheck(ctx)
}
