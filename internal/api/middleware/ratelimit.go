package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/0xDyno/healthy-blend/pkg/logger"
	"github.com/0xDyno/healthy-blend/pkg/response"
)

// 本地 limiter 的保留时长，超过未使用的条目在下次清扫时回收
const localLimiterTTL = 3 * time.Minute

type localLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 每用户请求频率上限。多实例部署用 redis 固定窗口计数，
// 没有 redis 时退回进程内 token bucket。限流与业务错误分开，429 + Retry-After。
type RateLimiter struct {
	cache   *redis.Client
	enabled bool

	mu      sync.Mutex
	local   map[string]*localLimiter
	sweepAt time.Time
}

func NewRateLimiter(cache *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{cache: cache, enabled: enabled, local: make(map[string]*localLimiter)}
}

// Limit 返回限流中间件，perMinute 为该路由每用户每分钟的上限
func (l *RateLimiter) Limit(scope string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.enabled || perMinute <= 0 {
			c.Next()
			return
		}

		id := fmt.Sprintf("u%d", UserID(c))
		if id == "u0" {
			id = c.ClientIP()
		}

		allowed, retryAfter := l.allow(c, scope, id, perMinute)
		if !allowed {
			response.TooManyRequests(c, retryAfter)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(c *gin.Context, scope, id string, perMinute int) (bool, int) {
	const window = time.Minute

	if l.cache != nil {
		now := time.Now()
		windowStart := now.Truncate(window)
		key := fmt.Sprintf("rl:%s:%s:%d", scope, id, windowStart.Unix())

		count, err := l.cache.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// redis 故障时放行，限流不应该放大故障
			logger.Warn("rate limiter redis error", zap.Error(err))
			return true, 0
		}
		if count == 1 {
			l.cache.Expire(c.Request.Context(), key, window)
		}
		if count > int64(perMinute) {
			return false, int(windowStart.Add(window).Sub(now).Seconds()) + 1
		}
		return true, 0
	}

	if !l.localFor(scope+":"+id, perMinute).Allow() {
		return false, int(window.Seconds())
	}
	return true, 0
}

// localFor 取进程内 limiter，顺带回收过期条目，map 不随用户数无界增长
func (l *RateLimiter) localFor(key string, perMinute int) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.sweepAt) {
		for k, e := range l.local {
			if now.Sub(e.lastSeen) > localLimiterTTL {
				delete(l.local, k)
			}
		}
		l.sweepAt = now.Add(localLimiterTTL)
	}

	e, ok := l.local[key]
	if !ok {
		e = &localLimiter{
			lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		}
		l.local[key] = e
	}
	e.lastSeen = now
	return e.lim
}
