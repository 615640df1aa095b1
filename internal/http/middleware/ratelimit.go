package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleCutoff    = 10 * time.Minute
)

// RateLimiter throttles callers by IP with a token bucket per address.
// Buckets refill continuously at the configured rate up to the burst
// ceiling, and idle buckets are swept so the map does not grow with
// every address ever seen.
type RateLimiter struct {
	mu    sync.Mutex
	perIP map[string]*tokenBucket
	rate  float64
	burst int
}

type tokenBucket struct {
	tokens float64
	seenAt time.Time
}

// NewRateLimiter creates a limiter allowing rate requests per second
// with the given burst per IP and starts the background sweep.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		perIP: make(map[string]*tokenBucket),
		rate:  rate,
		burst: burst,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request from ip fits the current budget,
// consuming one token when it does. New addresses start with a full
// bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.perIP[ip]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.burst), seenAt: now}
		rl.perIP[ip] = b
	}

	refill := now.Sub(b.seenAt).Seconds() * rl.rate
	if b.tokens += refill; b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.seenAt = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-limiterIdleCutoff)
		rl.mu.Lock()
		for ip, b := range rl.perIP {
			if b.seenAt.Before(cutoff) {
				delete(rl.perIP, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests over the configured rate with
// 429 Too Many Requests. The client address comes from X-Real-Ip when
// chi's RealIP middleware set it, falling back to RemoteAddr.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
