package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// payoutRateLimitScript counts one attempt in a fixed window and decides
// admission atomically. It returns {1, 0} while the subject is within the
// limit and {0, <window ttl in ms>} once the window is exhausted.
var payoutRateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current <= tonumber(ARGV[2]) then
  return {1, 0}
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {0, ttl}
`)

// RedisPayoutRateLimiter gates payout creation with a distributed
// fixed-window counter in Redis.
type RedisPayoutRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisPayoutRateLimiter(client redis.UniversalClient, prefix string) *RedisPayoutRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "creatorstream:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisPayoutRateLimiter{
		client: client,
		prefix: trimmedPrefix,
	}
}

// Allow records one attempt for the subject and reports whether it fits
// inside the window. When it does not, retryAfterSeconds tells the caller how
// long to back off. A nil limiter, missing client, or non-positive limit
// admits everything.
func (r *RedisPayoutRateLimiter) Allow(
	ctx context.Context,
	scope string,
	subject string,
	limit int,
	window time.Duration,
) (allowed bool, retryAfterSeconds int, err error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return true, 0, nil
	}

	normalizedScope := strings.TrimSpace(scope)
	normalizedSubject := strings.TrimSpace(subject)
	if normalizedScope == "" || normalizedSubject == "" {
		return true, 0, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, normalizedScope, normalizedSubject)
	rawResult, err := payoutRateLimitScript.Run(ctx, r.client, []string{key}, windowMs, limit).Result()
	if err != nil {
		return false, 0, err
	}

	values, ok := rawResult.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected redis limiter response shape: %T", rawResult)
	}

	admitted, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis limiter verdict type: %T", values[0])
	}
	if admitted == 1 {
		return true, 0, nil
	}

	ttlMs, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	retryAfter := int((ttlMs + 999) / 1000)
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter, nil
}
