package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateLimiter struct {
	requests map[string]*clientRequest
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

type clientRequest struct {
	count     int
	resetTime time.Time
}

// RateLimiter enforces a fixed-window per-IP request limit. Each call
// builds an independent limiter, so different route groups can carry
// different budgets.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := &rateLimiter{
		requests: make(map[string]*clientRequest),
		limit:    limit,
		window:   window,
	}

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		defer rl.mu.Unlock()

		client, exists := rl.requests[ip]
		now := time.Now()

		if !exists || now.After(client.resetTime) {
			rl.requests[ip] = &clientRequest{
				count:     1,
				resetTime: now.Add(rl.window),
			}
			c.Next()
			return
		}

		if client.count >= rl.limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": client.resetTime.Sub(now).Seconds(),
			})
			c.Abort()
			return
		}

		client.count++
		c.Next()
	}
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.requests {
		if now.After(client.resetTime) {
			delete(rl.requests, ip)
		}
	}
}
