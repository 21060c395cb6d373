package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"FindIt/internal/config"
)

var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// VerifyRateLimit ограничивает попытки ввода кода передачи token bucket'ом
// в Redis, по ключу пользователь + заявка. Без Redis и при ошибках Redis
// запросы пропускаются: сервис всё равно считает неудачные попытки в БД.
func VerifyRateLimit(cfg config.RateLimit, rdb *redis.Client) func(http.Handler) http.Handler {
	if rdb == nil || cfg.Capacity <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	ttl := int64(cfg.Refill/time.Second) * int64(cfg.Capacity)
	if ttl < 60 {
		ttl = 60
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(cfg.Prefix, r)
			vals, err := limiterScript.Run(r.Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.Refill.Milliseconds(), ttl).Result()
			if err != nil {
				logger.Warnw("ratelimit: redis error", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			arr, ok := vals.([]any)
			if !ok || len(arr) != 3 {
				logger.Warnw("ratelimit: unexpected script result", "key", key, "result", vals)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(asInt64(arr[1]), 10))
			if asInt64(arr[0]) != 1 {
				secs := int(math.Ceil(float64(asInt64(arr[2])) / 1000.0))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = fmt.Fprintf(w, `{"error":"rate_limited","message":"too many attempts, retry in %d s"}`, secs)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(prefix string, r *http.Request) string {
	uid := "anon"
	if id, ok := GetUserIDFromContext(r.Context()); ok {
		uid = strconv.FormatInt(id, 10)
	}
	claimID := chi.URLParam(r, "claimID")
	if claimID == "" {
		claimID = "-"
	}
	return strings.Join([]string{prefix, "user", uid, "claim", claimID}, ":")
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}
