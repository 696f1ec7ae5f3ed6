package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"sanita/internal/logger"

	"go.uber.org/zap"
)

// RateLimiter is a fixed-window per-IP limiter for the public API.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	requests  map[string]int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    window,
		requests:  make(map[string]int),
		lastReset: time.Now(),
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastReset) > rl.window {
		rl.requests = make(map[string]int)
		rl.lastReset = time.Now()
	}

	count := rl.requests[ip]
	if count >= rl.limit {
		return false
	}

	rl.requests[ip] = count + 1
	return true
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !rl.Allow(ip) {
			logger.Log.Warn("rate limit exceeded", zap.String("ip", ip))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
