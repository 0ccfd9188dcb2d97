package middleware

import (
	"net/http"
	"sync"
	"time"

	"radbook/config"
	"radbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ipLimiters keeps one token bucket per client IP. Entries live for the
// lifetime of the process.
type ipLimiters struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

var limiters = &ipLimiters{buckets: make(map[string]*rate.Limiter)}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[ip]
	if !ok {
		perMin := config.AppConfig.MaxRequestsPerMin
		if perMin <= 0 {
			perMin = 100
		}
		bucket = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)
		l.buckets[ip] = bucket
	}
	return bucket
}

// RateLimitMiddleware throttles each client IP to the configured request
// rate. Bursts up to one minute's allowance pass through.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !limiters.get(ip).Allow() {
			utils.GetLogger().Warn("request rate exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
			return
		}
		c.Next()
	}
}
