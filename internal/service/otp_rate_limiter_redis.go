package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ventana fija: el primer hit crea el contador con TTL, los siguientes solo incrementan.
const fixedWindowScript = `
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return hits
`

const otpLimiterKeyPrefix = "otp:rl:"

type scriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisFixedWindowLimiter comparte el conteo entre réplicas de la API.
type redisFixedWindowLimiter struct {
	runner     scriptRunner
	ttlSeconds int
	limit      int64
}

func NewRedisOTPRateLimiter(client redis.UniversalClient, window time.Duration, max int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisFixedWindowLimiter(client, window, max)
}

func newRedisFixedWindowLimiter(runner scriptRunner, window time.Duration, max int) *redisFixedWindowLimiter {
	ttl := int(window / time.Second)
	if ttl <= 0 {
		ttl = 60
	}
	if max <= 0 {
		max = 1
	}
	return &redisFixedWindowLimiter{runner: runner, ttlSeconds: ttl, limit: int64(max)}
}

// Allow falla abierto: si redis no responde se permite la solicitud.
func (l *redisFixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.runner == nil {
		return true
	}
	k, ok := limiterKey(key)
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	hits, err := l.runner.Eval(ctx, fixedWindowScript, []string{otpLimiterKeyPrefix + k}, l.ttlSeconds).Int64()
	if err != nil {
		return true
	}
	return hits <= l.limit
}
