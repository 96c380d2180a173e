package echomw

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit // requests per second
	burst    int        // how many requests are allowed instantly
	idleTime time.Duration
	now      func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*client),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		idleTime: time.Minute,
		now:      time.Now,
	}
}

// Allow reports whether one more request from ip fits in its bucket.
func (limiter *RateLimiter) Allow(ip string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	limiter.evictIdle(now)

	entry, exists := limiter.clients[ip]
	if !exists {
		entry = &client{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// caller holds mu
func (limiter *RateLimiter) evictIdle(now time.Time) {
	for ip, entry := range limiter.clients {
		if now.Sub(entry.lastSeen) > limiter.idleTime {
			delete(limiter.clients, ip)
		}
	}
}

// Middleware rejects requests over the client's rate with 429.
func (limiter *RateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !limiter.Allow(c.RealIP()) {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many requests",
			})
		}
		return next(c)
	}
}
