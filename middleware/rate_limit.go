package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"aishare/utils"
)

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
	mu      sync.Mutex
}

// RateLimit applies a per-IP token bucket. Each handler chain gets its own
// limiter table so tests and multiple routers never share state.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute < 1 {
		perMinute = 1
	}
	r := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	limiters := map[string]*rateLimiter{}
	var limitersMu sync.Mutex

	getLimiter := func(key string) *rateLimiter {
		limitersMu.Lock()
		defer limitersMu.Unlock()

		now := time.Now()
		for k, l := range limiters {
			if now.After(l.expires) {
				delete(limiters, k)
			}
		}

		if l, ok := limiters[key]; ok {
			l.expires = now.Add(5 * time.Minute)
			return l
		}
		l := &rateLimiter{
			limiter: rate.NewLimiter(r, burst),
			expires: now.Add(5 * time.Minute),
		}
		limiters[key] = l
		return l
	}

	return func(ctx *gin.Context) {
		l := getLimiter(ctx.ClientIP())

		l.mu.Lock()
		allowed := l.limiter.Allow()
		l.mu.Unlock()

		if !allowed {
			utils.Error(ctx, 429, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
