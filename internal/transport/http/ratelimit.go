package http

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter keeps a token bucket per client IP. Used on the auth
// endpoints, which are the only unauthenticated surface.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
}

func newIPRateLimiter(requests int, window time.Duration) *ipRateLimiter {
	if requests <= 0 {
		return &ipRateLimiter{}
	}
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

func (rl *ipRateLimiter) allow(ip string) bool {
	if rl.limiters == nil {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.limiters[ip]
	if !ok {
		bucket = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = bucket
	}
	rl.lastSeen[ip] = time.Now()

	// Drop buckets idle for an hour to bound memory.
	if len(rl.lastSeen) > 1024 {
		cutoff := time.Now().Add(-time.Hour)
		for addr, seen := range rl.lastSeen {
			if seen.Before(cutoff) {
				delete(rl.limiters, addr)
				delete(rl.lastSeen, addr)
			}
		}
	}

	return bucket.Allow()
}

// clientIP keys the limiter by the connecting address. X-Forwarded-For is
// attacker-controlled on a directly exposed server, so it is consulted only
// when the deployment declares a trusted proxy in front.
func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			return strings.TrimSpace(ips[len(ips)-1])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware rejects requests from IPs that exceed the configured rate.
func RateLimitMiddleware(rl *ipRateLimiter, trustForwarded bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(clientIP(c.Request, trustForwarded)) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
