// Package cachetest locates a Redis instance for integration tests.
package cachetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Natsku123/ttv-tools/internal/pkg/env"
)

// resolve tries the configured endpoint and a few local fallbacks. The test
// is skipped when none answers.
func resolve(t *testing.T) (string, string) {
	t.Helper()

	hosts := unique(env.GetEnv("CACHE_HOST", ""), "redis", "localhost", "127.0.0.1")
	passwords := unique(env.GetEnv("CACHE_PASSWORD", ""), "")
	port := env.GetEnv("CACHE_PORT", "6379")

	var lastErr error
	for _, host := range hosts {
		for _, password := range passwords {
			addr := fmt.Sprintf("%s:%s", host, port)
			client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			err := client.Ping(ctx).Err()
			cancel()
			_ = client.Close()
			if err == nil {
				return addr, password
			}
			lastErr = err
		}
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return "", ""
}

func unique(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NewIsolatedClient returns a client on a flushed database that is flushed
// again when the test ends. Packages use distinct db numbers so they can run
// in parallel.
func NewIsolatedClient(t *testing.T, db int) *redis.Client {
	t.Helper()

	addr, password := resolve(t)
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Skipping Redis-dependent test: cannot use db %d (%v)", db, err)
	}

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}
