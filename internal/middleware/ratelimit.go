package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/train-seat-reservation/internal/config"
)

var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket limits requests per key (see buildRateKey).  Buckets live in
// Redis so every instance shares them.  When rdb is nil, or a Redis call
// fails, the request is charged to an in-process bucket with the same shape.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	local := newLocalLimiter(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)

			allowed, remaining, retry, ok := redisTake(c, cfg, rdb, key)
			if !ok {
				allowed, remaining, retry = local.take(key, time.Now())
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if !allowed {
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// redisTake runs the bucket script.  ok is false when Redis could not answer.
func redisTake(c echo.Context, cfg config.RateLimitConfig, rdb *redis.Client, key string) (allowed bool, remaining int64, retry time.Duration, ok bool) {
	if rdb == nil {
		return false, 0, 0, false
	}
	vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil || len(vals) != 3 {
		if cfg.Debug {
			Logger(c).Warnw("ratelimit: redis unavailable, using local bucket", "key", key, "error", err)
		}
		return false, 0, 0, false
	}
	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, true
}

// localLimiter keeps one rate.Limiter per key.  Idle limiters are dropped
// after cfg.TTL.
type localLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	buckets map[string]*localBucket
	sweep   time.Time
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
	return &localLimiter{
		limit:   rate.Limit(float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()),
		burst:   cfg.Capacity,
		ttl:     cfg.TTL,
		buckets: map[string]*localBucket{},
	}
}

func (l *localLimiter) take(key string, now time.Time) (bool, int64, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweep) > l.ttl {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.ttl {
				delete(l.buckets, k)
			}
		}
		l.sweep = now
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now

	r := b.lim.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, 0, d
	}
	return true, int64(b.lim.TokensAt(now)), 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userKey(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
