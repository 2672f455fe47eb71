package dedup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natsku123/ttv-tools/internal/pkg/cache/cachetest"
	"github.com/Natsku123/ttv-tools/internal/pkg/database/databasetest"
)

const dedupTestRedisDB = 12

func TestRedisStore_AdmitsOnce(t *testing.T) {
	client := cachetest.NewIsolatedClient(t, dedupTestRedisDB)
	store := NewRedisStore(client)
	ctx := context.Background()

	first, err := store.Admit(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, first)

	for range 3 {
		again, err := store.Admit(ctx, "msg-1")
		require.NoError(t, err)
		assert.False(t, again)
	}

	other, err := store.Admit(ctx, "msg-2")
	require.NoError(t, err)
	assert.True(t, other)

	members, err := client.SMembers(ctx, SetKey).Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"msg-1", "msg-2"}, members)

	ttl, err := client.TTL(ctx, SetKey).Result()
	require.NoError(t, err)
	assert.Negative(t, ttl, "the set must not expire")
}

func TestRedisStore_ConcurrentAdmit(t *testing.T) {
	store := NewRedisStore(cachetest.NewIsolatedClient(t, dedupTestRedisDB))

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Admit(context.Background(), "race")
			assert.NoError(t, err)
			if ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, admitted.Load())
}

func TestSQLStore_AdmitsOnce(t *testing.T) {
	store := NewSQLStore(databasetest.Open(t))
	ctx := context.Background()

	for i := range 5 {
		id := fmt.Sprintf("msg-%d", i)

		first, err := store.Admit(ctx, id)
		require.NoError(t, err)
		assert.True(t, first, id)

		again, err := store.Admit(ctx, id)
		require.NoError(t, err)
		assert.False(t, again, id)
	}
}

func TestMemoryStore_AdmitsOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Admit(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.Admit(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, again)
}

func TestNewFromEnv_Memory(t *testing.T) {
	t.Setenv("DEDUP_BACKEND", "memory")
	assert.IsType(t, &MemoryStore{}, NewFromEnv())
}

func TestAdmit_RejectsEmptyID(t *testing.T) {
	_, err := NewSQLStore(databasetest.Open(t)).Admit(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessageID)

	_, err = NewRedisStore(nil).Admit(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessageID)

	_, err = NewMemoryStore().Admit(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessageID)
}
