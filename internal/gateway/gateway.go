// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway wraps outbound backend calls with bounded concurrency,
// a rolling-window rate ceiling, a per-call timeout, and a retry policy
// for transient failures. Each backend gets its own gateway so limits are
// enforced independently per backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Gateway serializes access to one external backend. Callers submit work
// through Do; the gateway never drops a request past the rate ceiling, it
// queues and releases in submission order.
type Gateway struct {
	name    string
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	timeout time.Duration
	policy  Policy
}

// New builds a gateway from configuration. A RequestsPerWindow of zero
// disables the rate ceiling; MaxConcurrent always bounds in-flight calls.
func New(name string, cfg types.GatewayConfig) *Gateway {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	// Burst of 1 spaces dispatches window/R apart, which is strictly
	// stronger than "at most R per rolling window" and keeps release
	// order equal to submission order.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerWindow > 0 {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(cfg.RequestsPerWindow)), 1)
	}

	return &Gateway{
		name:    name,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		limiter: limiter,
		timeout: timeout,
		policy:  PolicyFromConfig(cfg.Retry),
	}
}

// Name returns the backend label the gateway was built for.
func (g *Gateway) Name() string { return g.name }

// Do runs call under the gateway's limits. Transient failures are retried
// per the policy; permanent failures and caller cancellation return
// immediately. When retries exhaust, the last error is returned wrapped
// so the caller can record a terminal per-item failure.
//
// The caller's context gates admission only: the concurrency slot, the
// rate wait, and each retry. A call already dispatched runs detached from
// the caller, bounded by the per-call timeout alone, so a run deadline
// lets work on the wire finish instead of discarding it.
func (g *Gateway) Do(ctx context.Context, call func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < g.policy.MaxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		err := call(callCtx)
		cancel()

		if err == nil {
			return nil
		}

		// The detached call context only expires from the per-call
		// timeout, so this is a timeout of the attempt, not a caller
		// abort.
		if errors.Is(err, context.DeadlineExceeded) {
			err = Transientf("%s: call timed out after %v", g.name, g.timeout)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt+1 >= g.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.policy.Backoff(attempt)):
		}
	}

	return fmt.Errorf("%s: %d attempts exhausted: %w", g.name, g.policy.MaxAttempts, lastErr)
}
