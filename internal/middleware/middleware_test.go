package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/practice-booking/internal/config"
	"github.com/iliyamo/practice-booking/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, target string, mod ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, m := range mod {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "availability",
	}
}

func TestRedisCache_HitAfterMiss(t *testing.T) {
	_, rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/slots", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, NewRedisCache(testCacheConfig(), rdb))

	first := do(e, http.MethodGet, "/slots?date=2025-01-01")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/slots?date=2025-01-01")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), "application/json")
	assert.Equal(t, 1, calls)

	other := do(e, http.MethodGet, "/slots?date=2025-01-02")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCache_SkipsErrorsAndDisabled(t *testing.T) {
	_, rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/fail", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false})
	}, NewRedisCache(testCacheConfig(), rdb))

	do(e, http.MethodGet, "/fail")
	rec := do(e, http.MethodGet, "/fail")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	e2 := echo.New()
	e2.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, NewRedisCache(testCacheConfig(), nil))
	assert.Empty(t, do(e2, http.MethodGet, "/x").Header().Get("X-Cache"))
}

func TestCachePurger(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("availability:a", "1"))
	require.NoError(t, mr.Set("availability:b", "2"))
	require.NoError(t, mr.Set("rl:ip:1", "3"))

	n, err := NewCachePurger(rdb, "availability").Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists("availability:a"))
	assert.True(t, mr.Exists("rl:ip:1"))

	var nilPurger *CachePurger
	n, err = nilPurger.Purge(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
	n, err = NewCachePurger(nil, "availability").Purge(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func testRateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func rateLimitedEcho(rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.POST("/v1/contact", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, NewTokenBucket(testRateConfig(), rdb, zerolog.Nop()))
	return e
}

func fromIP(ip string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = ip + ":1234" }
}

func TestTokenBucket_Redis(t *testing.T) {
	mr, rdb := newRedis(t)
	e := rateLimitedEcho(rdb)

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
	}
	blocked := do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), `"success":false`)

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.2")).Code)
	assert.True(t, mr.Exists("rl:ip:10.0.0.1:route:POST /v1/contact"))
}

func TestTokenBucket_LocalFallback(t *testing.T) {
	e := rateLimitedEcho(nil)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.2")).Code)
}

func TestTokenBucket_RedisDownFallsBack(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	e := rateLimitedEcho(rdb)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/v1/contact", fromIP("10.0.0.1")).Code)
}

func TestLocalLimiter_Refills(t *testing.T) {
	l := newLocalLimiter(testRateConfig())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, l.decide("k", now).allowed)
	assert.True(t, l.decide("k", now).allowed)
	d := l.decide("k", now)
	assert.False(t, d.allowed)
	assert.InDelta(t, time.Minute.Seconds(), d.retry.Seconds(), 1)
	assert.True(t, l.decide("k", now.Add(time.Minute)).allowed)
}

func adminEcho(secret string) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", AdminSession(secret), RequireRole(utils.RoleAdmin))
	g.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, currentUserID(c)) })
	return e
}

func TestAdminSession(t *testing.T) {
	const secret = "test-secret"
	e := adminEcho(secret)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/admin/me").Code)

	tok, err := utils.NewSessionToken(secret, "admin@example.com", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/admin/me", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", rec.Body.String())

	rec = do(e, http.MethodGet, "/admin/me", func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	forged, err := utils.NewSessionToken("other-secret", "admin@example.com", utils.RoleAdmin, time.Hour)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/admin/me", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged.Token})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	visitor, err := utils.NewSessionToken(secret, "someone", "VISITOR", time.Hour)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/admin/me", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: visitor.Token})
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zerolog.Nop()))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusTeapot, do(e, http.MethodGet, "/boom").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ok").Code)
}
