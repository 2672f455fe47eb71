package router

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/Natsku123/ttv-tools/internal/pkg/cache"
	"github.com/Natsku123/ttv-tools/internal/pkg/env"
)

// NewLimiterStorage keeps rate limiter counters in Redis so every API
// replica shares them.
func NewLimiterStorage() fiber.Storage {
	// Get Redis client configuration from existing cache setup
	cacheClient := cache.GetClient()
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	// Separate database from the job queue and dedup set
	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: env.GetEnvInt("LIMITER_CACHE_DB", 1),
		Reset:    false,
	})
}
