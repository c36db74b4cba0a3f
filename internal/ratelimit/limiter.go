// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for rate limiting implementations.
//
// Implementations control navigation rates per host so a batch of
// workers does not hammer the quote site and get the IP banned.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow checks if a request for the given URL can proceed immediately
	// without blocking. Returns true if allowed, false otherwise.
	Allow(urlStr string) bool
}

// DomainLimiter provides per-domain rate limiting using the token
// bucket algorithm.
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit // Requests per second per host
	burst    int        // Burst capacity
}

// NewDomainLimiter creates a new rate limiter with the specified per-host rate
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 3.0
	}
	if burst <= 0 {
		burst = 5
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for the given URL can proceed according to rate limits
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return dl.limiterFor(urlStr).Wait(ctx)
}

// Allow reports whether a request for the given URL can proceed immediately.
func (dl *DomainLimiter) Allow(urlStr string) bool {
	return dl.limiterFor(urlStr).Allow()
}

func (dl *DomainLimiter) limiterFor(urlStr string) *rate.Limiter {
	host := hostOf(urlStr)

	dl.mu.RLock()
	lim, ok := dl.limiters[host]
	dl.mu.RUnlock()
	if ok {
		return lim
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if lim, ok := dl.limiters[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = lim
	return lim
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return urlStr
	}
	return u.Host
}
