package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*windowEntry
}

// RateLimit applies a fixed-window per-IP request limit. Exceeding the
// limit yields 429 with a retryAfter hint; every response carries
// X-RateLimit-* headers.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	rl := &rateLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
	return rl.middleware
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		now := time.Now()

		rl.mu.Lock()
		// Drop expired windows opportunistically.
		for k, e := range rl.entries {
			if !e.resetAt.After(now) {
				delete(rl.entries, k)
			}
		}

		entry, ok := rl.entries[key]
		if !ok {
			entry = &windowEntry{resetAt: now.Add(rl.window)}
			rl.entries[key] = entry
		}

		if entry.count >= rl.max {
			retryAfter := int(time.Until(entry.resetAt).Seconds()) + 1
			rl.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error": "too many requests", "retryAfter": %d}`, retryAfter)
			return
		}

		entry.count++
		remaining := rl.max - entry.count
		resetAt := entry.resetAt
		rl.mu.Unlock()

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.max))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))
		next.ServeHTTP(w, r)
	})
}

// clientIP trusts RemoteAddr; the RealIP middleware rewrites it when the
// server sits behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
