package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"herald/pkg/errors"
)

// HostLimiter rate-limits outbound requests per target host so that
// polling many feeds or price pages on the same site stays polite.
type HostLimiter struct {
	requestsPerMinute int
	limiters          map[string]*rate.Limiter
	mu                sync.Mutex
}

// NewHostLimiter creates a per-host limiter.
// requestsPerMinute: maximum number of requests allowed per minute per host.
func NewHostLimiter(requestsPerMinute int) *HostLimiter {
	return &HostLimiter{
		requestsPerMinute: requestsPerMinute,
		limiters:          make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the limiter for rawURL's host allows a request.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)

	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		rps := float64(h.requestsPerMinute) / 60.0
		burst := h.requestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return errors.Wrapf(errors.ErrRateLimitExceeded, "host %s: %v", host, err)
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
