package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	throttleClients = 4096
	throttleIdleTTL = 10 * time.Minute
)

// LoginThrottle allows perMinute attempts per client IP, refilled evenly.
// Idle buckets fall out of the LRU after throttleIdleTTL.
func LoginThrottle(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 1
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(perMinute)).Seconds()) + 1)

	var mu sync.Mutex
	buckets := expirable.NewLRU[string, *rate.Limiter](throttleClients, nil, throttleIdleTTL)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		l, ok := buckets.Get(ip)
		if !ok {
			l = rate.NewLimiter(every, perMinute)
			buckets.Add(ip, l)
		}
		mu.Unlock()

		if !l.Allow() {
			c.Header("Retry-After", retryAfter)
			c.String(http.StatusTooManyRequests, "Too many login attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
