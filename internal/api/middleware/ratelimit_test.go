package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(limiter *RateLimiter, perMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/checkout", limiter.Limit("checkout", perMinute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitRedisWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newLimitedRouter(NewRateLimiter(cache, true), 2)

	assert.Equal(t, http.StatusOK, hit(r).Code)
	assert.Equal(t, http.StatusOK, hit(r).Code)

	w := hit(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitLocalFallback(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(nil, true), 2)

	assert.Equal(t, http.StatusOK, hit(r).Code)
	assert.Equal(t, http.StatusOK, hit(r).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r).Code)
}

func TestRateLimitLocalEvictsIdleEntries(t *testing.T) {
	limiter := NewRateLimiter(nil, true)
	limiter.localFor("checkout:u1", 2)
	limiter.localFor("promo:u1", 2)

	// 条目闲置超过保留时长后，下一次清扫回收
	limiter.mu.Lock()
	for _, e := range limiter.local {
		e.lastSeen = time.Now().Add(-2 * localLimiterTTL)
	}
	limiter.sweepAt = time.Time{}
	limiter.mu.Unlock()

	limiter.localFor("api:u2", 2)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.local, 1)
	assert.Contains(t, limiter.local, "api:u2")
}

func TestRateLimitDisabled(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(nil, false), 1)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(r).Code)
	}
}

func TestRateLimitFailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close() // redis 故障

	r := newLimitedRouter(NewRateLimiter(cache, true), 1)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r).Code)
	}
}

func TestRateLimitScopesAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(cache, true)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/checkout", limiter.Limit("checkout", 1), ok)
	r.GET("/promo", limiter.Limit("promo", 1), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkout", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// checkout 限流不影响 promo
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/promo", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
