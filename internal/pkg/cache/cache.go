package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/Natsku123/ttv-tools/internal/pkg/env"
)

var client *redis.Client

// SetupCache connects the shared Redis client used by the job queue,
// the dedup set and the rate limiter.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "redis")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetEnvInt("CACHE_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to redis at %s:%s: %v", host, port, err)
	} else {
		log.Infof("[Cache] Connected to redis: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// SetClient replaces the shared client. Tests use it to point at an isolated DB.
func SetClient(c *redis.Client) {
	client = c
}
