// Package dedup records provider message ids so that redelivered webhooks
// are processed at most once.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Natsku123/ttv-tools/app/models"
	"github.com/Natsku123/ttv-tools/internal/pkg/cache"
	"github.com/Natsku123/ttv-tools/internal/pkg/database"
	"github.com/Natsku123/ttv-tools/internal/pkg/env"
)

// SetKey is the Redis set holding every admitted message id. Entries never
// expire.
const SetKey = "twitchmessageids"

var ErrEmptyMessageID = errors.New("empty message id")

// Store admits a message id exactly once. Admit must be atomic across
// processes.
type Store interface {
	Admit(ctx context.Context, messageID string) (bool, error)
}

// RedisStore keeps ids in a single Redis set.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: SetKey}
}

// Admit adds the id with SADD; a reply of 1 means it was not present before.
func (s *RedisStore) Admit(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, ErrEmptyMessageID
	}
	added, err := s.client.SAdd(ctx, s.key, messageID).Result()
	if err != nil {
		return false, fmt.Errorf("dedup sadd: %w", err)
	}
	return added == 1, nil
}

// SQLStore keeps ids in the processed_messages table.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Admit inserts the id and relies on the primary key to reject repeats.
func (s *SQLStore) Admit(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, ErrEmptyMessageID
	}
	result := database.Scoped(ctx, s.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedMessage{MessageID: messageID})
	if result.Error != nil {
		return false, fmt.Errorf("dedup insert: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MemoryStore keeps ids in process memory. It is only correct with a single
// worker process and forgets everything on restart.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) Admit(_ context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, ErrEmptyMessageID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[messageID]; ok {
		return false, nil
	}
	s.seen[messageID] = struct{}{}
	return true, nil
}

// NewFromEnv picks the backend named by DEDUP_BACKEND ("redis", "sql" or
// "memory").
func NewFromEnv() Store {
	backend := strings.ToLower(strings.TrimSpace(env.GetEnv("DEDUP_BACKEND", "redis")))
	switch backend {
	case "sql", "database", "mysql":
		log.Info("[Dedup] Using processed_messages table")
		return NewSQLStore(database.GetDB())
	case "memory":
		log.Warn("[Dedup] Using in-memory store; duplicates are only caught within this process")
		return NewMemoryStore()
	case "redis":
	default:
		log.Warnf("[Dedup] Unknown DEDUP_BACKEND %q, falling back to redis", backend)
	}
	return NewRedisStore(cache.GetClient())
}
