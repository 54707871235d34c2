// Package middleware holds request throttling shared by the HTTP handlers.
package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// Throttle keeps one token bucket per key, typically a user id. Buckets for
// keys that go quiet are evicted so the set stays bounded.
type Throttle struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewThrottle allows perSecond events per key with the given burst. A
// non-positive perSecond disables throttling.
func NewThrottle(perSecond float64, burst, size int, idle time.Duration) *Throttle {
	if size <= 0 {
		size = DefaultThrottleSize
	}
	if idle <= 0 {
		idle = DefaultThrottleIdle
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, idle),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether key may proceed now and consumes a token if so
func (t *Throttle) Allow(ctx context.Context, key string) bool {
	if t == nil || t.rate <= 0 {
		return true
	}

	if !t.limiter(key).Allow() {
		logger.FromContext(ctx).Warn(LogMsgThrottled, "key", key)
		return false
	}
	return true
}

// Len returns the number of tracked keys
func (t *Throttle) Len() int {
	return t.limiters.Len()
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Get leaves the expiry alone; re-adding slides it so active keys keep
	// their bucket and only idle keys are evicted
	l, ok := t.limiters.Get(key)
	if !ok {
		l = rate.NewLimiter(t.rate, t.burst)
	}
	t.limiters.Add(key, l)
	return l
}
