// Package retry implements the retryable initialization wrapper: a
// stateful error surface for dependencies whose construction can fail
// and is worth reattempting a bounded number of times before giving up
// for good.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/nika-industries/nika-sub000/pkg/health"
	"github.com/nika-industries/nika-sub000/pkg/log"
)

// InitFunc constructs a value of R, possibly failing.
type InitFunc[R any] func(ctx context.Context) (R, error)

// Retryable holds the outcome of a bounded retry loop: either the
// constructed value, or the last error observed once every attempt is
// exhausted. Once built, the outcome is immutable — this is a one-shot
// initialization wrapper, not a circuit breaker that re-attempts later.
type Retryable[R any] struct {
	value R
	err   error
}

// Init calls fn up to attemptLimit times, sleeping delay between
// attempts, returning as soon as one succeeds. If every attempt fails,
// the Retryable carries the last error and Inner reports it.
func Init[R any](ctx context.Context, attemptLimit uint32, delay time.Duration, fn InitFunc[R]) *Retryable[R] {
	l := log.WithComponent("retry")
	l.Info().Msg("attempting to init")

	var lastErr error
	for attempt := uint32(1); attempt <= attemptLimit; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return &Retryable[R]{value: value}
		}
		l.Warn().Uint32("attempt", attempt).Err(err).Msg("attempt to init failed")
		lastErr = err
		if attempt < attemptLimit {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return &Retryable[R]{err: ctx.Err()}
			}
		}
	}
	return &Retryable[R]{err: lastErr}
}

// Inner returns the constructed value and whether initialization
// ultimately succeeded. A non-nil error means every attempt failed;
// value is the zero value of R in that case.
func (r *Retryable[R]) Inner() (R, error) { return r.value, r.err }

// Name implements health.Reporter.
func (r *Retryable[R]) Name() string { return "Retryable" }

// HealthCheck implements health.Reporter: a statefully-errored
// Retryable reports Down without attempting to reach the (nonexistent)
// wrapped value; otherwise it delegates to the value if it is itself a
// health.Reporter.
func (r *Retryable[R]) HealthCheck(ctx context.Context) health.ComponentHealth {
	if r.err != nil {
		return health.Singular(health.Down(health.NewFailureMessage(
			fmt.Sprintf("stateful error: %v", r.err),
		)))
	}
	if reporter, ok := any(r.value).(health.Reporter); ok {
		return health.AdditiveFromContext(ctx, reporter)
	}
	return health.IntrinsicallyUp()
}
