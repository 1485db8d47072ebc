package http

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter tracks one token bucket per client IP. Idle entries are
// dropped after expiry so the map does not grow without bound.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	expiry  time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		expiry:  10 * time.Minute,
		now:     time.Now,
	}
}

func (c *clientLimiter) allow(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.clients[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[ip] = entry
	}
	entry.lastSeen = now

	for key, other := range c.clients {
		if now.Sub(other.lastSeen) > c.expiry {
			delete(c.clients, key)
		}
	}

	return entry.limiter.Allow()
}

// RateLimit rejects clients that exceed the per-IP budget with 429. It is
// applied to the credential endpoints (login, OTP, reset) only.
func RateLimit(limit rate.Limit, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := newClientLimiter(limit, burst)
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.allow(ip) {
				responder.writeError(r.Context(), w, http.StatusTooManyRequests, errTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
