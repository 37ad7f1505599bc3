package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/pkg/response"
)

// ipLimiter tracks request counts per client IP over fixed windows.
// Batch ingestion clients retry aggressively, so counting whole windows
// is enough; per-request timestamps are not needed.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	count       int
	windowStart time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[ip]
	if !ok || now.Sub(b.windowStart) >= l.window {
		l.buckets[ip] = &bucket{count: 1, windowStart: now}
		l.prune(now)
		return true
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

// prune drops expired buckets. Called under the lock whenever a window
// rolls over, which bounds the map to active clients.
func (l *ipLimiter) prune(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, ip)
		}
	}
}

// RateLimit limits requests per client IP to limit per window.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := newIPLimiter(limit, window)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
