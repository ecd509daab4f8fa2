// Package ratelimit throttles requests to remote catalog hosts.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a limiter allowing requestsPerSecond with an equal burst.
func New(name string, requestsPerSecond int) *Limiter {
	return NewWithBurst(name, requestsPerSecond, requestsPerSecond)
}

// NewWithBurst creates a limiter with a custom burst size.
func NewWithBurst(name string, requestsPerSecond, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		name:    name,
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Allow reports whether a request can proceed without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the name of this limiter.
func (l *Limiter) Name() string {
	return l.name
}

// Hosts hands out one shared limiter per host so that the books and
// languages sources on the same server share a budget.
type Hosts struct {
	mu                sync.Mutex
	requestsPerSecond int
	limiters          map[string]*Limiter
}

// NewHosts creates a per-host registry.
func NewHosts(requestsPerSecond int) *Hosts {
	return &Hosts{
		requestsPerSecond: requestsPerSecond,
		limiters:          make(map[string]*Limiter),
	}
}

// For returns the limiter for host, creating it on first use.
func (h *Hosts) For(host string) *Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = New(host, h.requestsPerSecond)
		h.limiters[host] = l
	}
	return l
}
