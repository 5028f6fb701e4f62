// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"math/rand"
	"time"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Policy is an explicit, independently testable retry policy: bounded
// attempts with exponential backoff and jitter. It is injected into the
// gateway rather than inlined per call site.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt; it doubles
	// each subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration

	// Jitter is the random fraction (0..1) added to each delay.
	Jitter float64
}

// PolicyFromConfig builds a Policy from configuration, filling defaults.
func PolicyFromConfig(cfg types.RetryConfig) Policy {
	p := Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		Jitter:      cfg.Jitter,
	}
	return p.normalized()
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 2 * time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 60 * time.Second
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		p.Jitter = 0.2
	}
	return p
}

// Backoff returns the delay before retry number attempt (0-based: the
// delay after the first failure is Backoff(0)).
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return d
}
