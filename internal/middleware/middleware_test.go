package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/config"
)

const testSecret = "secret"

func signed(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub, role string) jwt.MapClaims {
	return jwt.MapClaims{"sub": sub, "role": role, "exp": time.Now().Add(time.Hour).Unix()}
}

func serve(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(testSecret))
	g.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, strconv.FormatInt(id, 10)+" "+Role(c))
	})

	rec := serve(e, http.MethodGet, "/me", signed(t, validClaims("7", "CUSTOMER"), jwt.SigningMethodHS256, []byte(testSecret)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7 CUSTOMER", rec.Body.String())

	cases := map[string]string{
		"missing":      "",
		"wrong secret": signed(t, validClaims("7", "CUSTOMER"), jwt.SigningMethodHS256, []byte("other")),
		"expired":      signed(t, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(-time.Minute).Unix()}, jwt.SigningMethodHS256, []byte(testSecret)),
		"no exp":       signed(t, jwt.MapClaims{"sub": "7"}, jwt.SigningMethodHS256, []byte(testSecret)),
		"bad subject":  signed(t, validClaims("alice", "CUSTOMER"), jwt.SigningMethodHS256, []byte(testSecret)),
		"wrong alg":    signed(t, validClaims("7", "CUSTOMER"), jwt.SigningMethodHS512, []byte(testSecret)),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/me", tok)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"auth"`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	g := e.Group("/admin", JWTAuth(testSecret), RequireRole("ADMIN"))
	g.POST("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	admin := signed(t, validClaims("1", "ADMIN"), jwt.SigningMethodHS256, []byte(testSecret))
	customer := signed(t, validClaims("2", "CUSTOMER"), jwt.SigningMethodHS256, []byte(testSecret))

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/admin/x", admin).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/admin/x", customer).Code)
}

func TestRequestLoggerSetsID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zap.NewNop().Sugar()))
	e.GET("/ping", func(c echo.Context) error {
		assert.NotNil(t, Logger(c))
		return c.String(http.StatusOK, "pong")
	})

	rec := serve(e, http.MethodGet, "/ping", "")
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCacheHitAndMiss(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}

	calls := 0
	e := echo.New()
	e.GET("/trains/:name", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"name": c.Param("name"), "calls": calls})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, http.MethodGet, "/trains/L1?date=2020-01-05", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/trains/L1?date=2020-01-05", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	other := serve(e, http.MethodGet, "/trains/L2?date=2020-01-05", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}

	calls := 0
	e := echo.New()
	e.GET("/seats", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation"})
	}, NewRedisCache(cfg, rdb))

	serve(e, http.MethodGet, "/seats", "")
	rec := serve(e, http.MethodGet, "/seats", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
}

func rateLimited(cfg config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	return e
}

func TestTokenBucketRedis(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl"}
	e := rateLimited(cfg, rdb)

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/x", "").Code)
	rec := serve(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.Len(t, mr.Keys(), 1)
}

func TestTokenBucketFallsBackToLocal(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl"}
	e := rateLimited(cfg, nil)

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/x", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/x", "").Code)

	mr, rdb := newRedis(t)
	mr.Close()
	e = rateLimited(cfg, rdb)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/x", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/x", "").Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/x")
	c.Set(ContextUserID, int64(9))

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:9:route:GET /x", buildRateKey(cfg, c))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:9", buildRateKey(cfg, c))
}
