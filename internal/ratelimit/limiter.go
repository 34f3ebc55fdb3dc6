// Package ratelimit provides per-region token buckets toward the rendering
// provider and per-caller analysis budgets.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultRegionRate is the request rate (per second) allowed toward one region.
const DefaultRegionRate = 2.0

// RegionLimiter rate-limits capture requests per region using token buckets.
// Buckets are created lazily the first time a region is seen.
type RegionLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewRegionLimiter creates a limiter allowing rps requests per second per region.
// A non-positive rps disables limiting.
func NewRegionLimiter(rps float64) *RegionLimiter {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RegionLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// Wait blocks until a token is available for region, or ctx is done.
func (rl *RegionLimiter) Wait(ctx context.Context, region string) error {
	if rl == nil || rl.rps <= 0 {
		return nil
	}
	if err := rl.limiter(region).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", region, err)
	}
	return nil
}

func (rl *RegionLimiter) limiter(region string) *rate.Limiter {
	rl.mu.RLock()
	l, ok := rl.limiters[region]
	rl.mu.RUnlock()
	if ok {
		return l
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok = rl.limiters[region]; ok {
		return l
	}
	l = rate.NewLimiter(rate.Limit(rl.rps), rl.burst)
	rl.limiters[region] = l
	return l
}
