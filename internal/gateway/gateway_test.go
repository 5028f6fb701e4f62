// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// fastPolicy keeps retries snappy in tests.
func fastGateway(cfg types.GatewayConfig) *Gateway {
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = time.Millisecond
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 2 * time.Millisecond
	}
	return New("test", cfg)
}

func TestDoSuccess(t *testing.T) {
	g := fastGateway(types.GatewayConfig{})

	var calls int32
	err := g.Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoRetriesTransient(t *testing.T) {
	g := fastGateway(types.GatewayConfig{Retry: types.RetryConfig{MaxAttempts: 4, BaseDelay: time.Millisecond}})

	var calls int32
	err := g.Do(context.Background(), func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return Transientf("backend overloaded")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoPermanentNoRetry(t *testing.T) {
	g := fastGateway(types.GatewayConfig{Retry: types.RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond}})

	var calls int32
	err := g.Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return Permanentf("invalid credentials")
	})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoExhaustsAttempts(t *testing.T) {
	g := fastGateway(types.GatewayConfig{Retry: types.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}})

	var calls int32
	err := g.Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return Transientf("still failing")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts exhausted")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoUnclassifiedErrorIsTransient(t *testing.T) {
	g := fastGateway(types.GatewayConfig{Retry: types.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}})

	var calls int32
	err := g.Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("something unexpected")
	})
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoCallerCancellationStopsRetries(t *testing.T) {
	g := fastGateway(types.GatewayConfig{Retry: types.RetryConfig{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond}})

	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Do(ctx, func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return Transientf("transient")
		})
	}()

	// Let the first attempt happen, then cancel during the backoff wait.
	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestDoPerCallTimeoutIsTransient(t *testing.T) {
	g := fastGateway(types.GatewayConfig{
		Timeout: 10 * time.Millisecond,
		Retry:   types.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond},
	})

	var calls int32
	err := g.Do(context.Background(), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	// The per-call deadline is retried, not surfaced as caller cancellation.
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "attempts exhausted")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoBoundsConcurrency(t *testing.T) {
	const maxConcurrent = 3
	g := fastGateway(types.GatewayConfig{MaxConcurrent: maxConcurrent})

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&current, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(maxConcurrent))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(0))
}

func TestDoRateCeiling(t *testing.T) {
	// 3 requests per 300ms window spaces dispatches 100ms apart, so any
	// 300ms rolling window observes at most 3 dispatches.
	g := fastGateway(types.GatewayConfig{
		MaxConcurrent:     10,
		RequestsPerWindow: 3,
		Window:            300 * time.Millisecond,
	})

	const backlog = 8
	var mu sync.Mutex
	var stamps []time.Time

	var wg sync.WaitGroup
	for i := 0; i < backlog; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Do(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				stamps = append(stamps, time.Now())
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	require.Len(t, stamps, backlog)
	for _, start := range stamps {
		var inWindow int
		for _, s := range stamps {
			if !s.Before(start) && s.Before(start.Add(300*time.Millisecond)) {
				inWindow++
			}
		}
		// Allow one extra for scheduling slop at window edges.
		assert.LessOrEqual(t, inWindow, 4, "rolling window exceeded the ceiling")
	}
}

func TestDoDrainsDispatchedCallPastCallerDeadline(t *testing.T) {
	g := fastGateway(types.GatewayConfig{
		Timeout: time.Second,
		Retry:   types.RetryConfig{MaxAttempts: 1},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var calls int32
	err := g.Do(ctx, func(callCtx context.Context) error {
		atomic.AddInt32(&calls, 1)
		// Outlive the caller deadline; only the per-call timeout may
		// cancel a dispatched call.
		select {
		case <-callCtx.Done():
			return callCtx.Err()
		case <-time.After(60 * time.Millisecond):
			return nil
		}
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoNoRetryAfterCallerDeadline(t *testing.T) {
	g := fastGateway(types.GatewayConfig{
		Timeout: time.Second,
		Retry:   types.RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var calls int32
	err := g.Do(ctx, func(callCtx context.Context) error {
		atomic.AddInt32(&calls, 1)
		time.Sleep(30 * time.Millisecond)
		return Transientf("late failure")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoSemaphoreRespectsContext(t *testing.T) {
	g := fastGateway(types.GatewayConfig{MaxConcurrent: 1})

	release := make(chan struct{})
	go g.Do(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Do(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}
