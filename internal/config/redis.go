package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimit: параметры token bucket для проверки кода передачи.
type RateLimit struct {
	Capacity int
	Refill   time.Duration
	Prefix   string
}

// VerifyRateLimit собирает параметры лимитера из конфигурации.
func (c *Config) VerifyRateLimit() RateLimit {
	return RateLimit{
		Capacity: c.VerifyRateCapacity,
		Refill:   c.VerifyRateRefill,
		Prefix:   "findit:verify",
	}
}

// NewRedisClient подключается к Redis. Возвращает nil, если адрес не задан
// или сервер недоступен: тогда лимитер отключается.
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
