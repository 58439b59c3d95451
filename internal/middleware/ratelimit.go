package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/expo-management/internal/config"
)

// Token bucket kept as a Redis hash and updated atomically in Lua.
// Returns {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_s = tonumber(ARGV[5])

	local st = redis.call('HMGET', key, 'tokens', 'refilled_ms')
	local tokens = tonumber(st[1])
	local refilled = tonumber(st[2])
	if tokens == nil or refilled == nil then
		tokens = capacity
		refilled = now_ms
	end

	local elapsed = now_ms - refilled
	if elapsed > 0 then
		local cycles = math.floor(elapsed / interval_ms)
		if cycles > 0 then
			tokens = math.min(capacity, tokens + cycles * refill)
			refilled = refilled + cycles * interval_ms
		end
	end

	local allowed = 0
	local retry_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_ms = math.max(0, interval_ms - (now_ms - refilled))
	end

	redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
	redis.call('EXPIRE', key, ttl_s)
	return { allowed, tokens, retry_ms }
`)

// NewTokenBucket rate limits per the configured key strategy. Redis being
// down fails open: protecting the API is not worth refusing all traffic.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := bucketKey(cfg, c)
			res, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("rate limiter unavailable for %s: %v", key, err)
				}
				return next(c)
			}
			allowed, remaining, retryMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := (retryMs + 999) / 1000
				h.Set("Retry-After", strconv.FormatInt(secs, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"success": false,
					"message": "too many requests, slow down",
					"data":    map[string]any{"retry_after_seconds": secs},
				})
			}
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func bucketKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := "anon"
	if v, ok := c.Get("user_id").(uint64); ok {
		uid = strconv.FormatUint(v, 10)
	}
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
	default: // ip_user_route
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
