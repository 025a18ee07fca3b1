package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/postboard/utils"
)

// idleLimiterTTL is how long an unused per-IP bucket is kept.
const idleLimiterTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

type limiterStore struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rateLimiter
}

func newLimiterStore(perMinute int) *limiterStore {
	perMinute = max(perMinute, 1)
	return &limiterStore{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		limiters: map[string]*rateLimiter{},
	}
}

func (s *limiterStore) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, l := range s.limiters {
		if now.After(l.expires) {
			delete(s.limiters, k)
		}
	}

	l, ok := s.limiters[key]
	if !ok {
		l = &rateLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = l
	}
	l.expires = now.Add(idleLimiterTTL)
	return l.limiter.AllowN(now, 1)
}

// RateLimit applies a per-IP token bucket allowing perMinute requests with a
// burst of half that. API callers get the JSON envelope, pages a plain 429.
func RateLimit(perMinute int) gin.HandlerFunc {
	store := newLimiterStore(perMinute)
	retryAfter := strconv.Itoa(max(int(time.Minute/time.Second)/max(perMinute, 1), 1))

	return func(ctx *gin.Context) {
		if store.allow(ctx.ClientIP(), time.Now()) {
			ctx.Next()
			return
		}

		ctx.Header("Retry-After", retryAfter)
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
		} else {
			ctx.String(http.StatusTooManyRequests, "Too many requests, please slow down.")
		}
		ctx.Abort()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
