package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stoicjournal/stoic/internal/ctxkeys"
	"github.com/stoicjournal/stoic/internal/respond"
)

// RateLimiter is a sliding-window counter per key (client IP or user id).
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
// When it is not, the second value is how long until a slot frees up.
// A limit of zero or less disables limiting.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if rl.limit <= 0 || rl.window <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		if len(valid) == 0 {
			return false, rl.window
		}
		return false, valid[0].Sub(cutoff)
	}

	rl.requests[key] = append(valid, now)
	return true, 0
}

// Run drops idle keys every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RateLimit rejects requests over the limit with 429. keyFn returning ""
// exempts the request.
func RateLimit(limiter *RateLimiter, keyFn func(*http.Request) string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next(w, r)
				return
			}

			ok, retryAfter := limiter.Allow(key)
			if !ok {
				slog.Warn("rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
				)
				seconds := int(retryAfter.Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				respond.Error(w, http.StatusTooManyRequests, respond.CodeRateLimited, "Too many requests. Please try again later.")
				return
			}

			next(w, r)
		}
	}
}

// ClientIPKey keys a limiter by client address.
func ClientIPKey(r *http.Request) string {
	return "ip:" + getClientIP(r)
}

// UserKey keys a limiter by authenticated user.
func UserKey(r *http.Request) string {
	if id := ctxkeys.UserID(r.Context()); id != "" {
		return "user:" + id
	}
	return ""
}

func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}
