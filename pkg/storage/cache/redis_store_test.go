package cache

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hashvault/pkg/core"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 1. SpyStore (间谍存储)
// 统计底层方法被调用的次数，验证请求是否穿透了缓存
// -----------------------------------------------------------------------------
type SpyStore struct {
	hasCount int32
	putCount int32

	mu      sync.Mutex
	objects map[types.Hash][]byte
}

func NewSpyStore() *SpyStore {
	return &SpyStore{
		objects: make(map[types.Hash][]byte),
	}
}

func (s *SpyStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	atomic.AddInt32(&s.hasCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[hash]
	return ok, nil
}

func (s *SpyStore) Put(ctx context.Context, obj core.Object) error {
	atomic.AddInt32(&s.putCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj.ID()] = obj.Bytes()
	return nil
}

func (s *SpyStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (s *SpyStore) ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	return types.Hash{}, storage.ErrNotFound
}

// -----------------------------------------------------------------------------
// 2. Mock Object
// -----------------------------------------------------------------------------
type mockObject struct {
	id types.Hash
}

func (m mockObject) ID() types.Hash        { return m.id }
func (m mockObject) Bytes() []byte         { return []byte("fake data") }
func (m mockObject) Type() core.ObjectType { return core.TypeChunk }

// -----------------------------------------------------------------------------
// 3. 降级测试 (不需要 Redis)
// -----------------------------------------------------------------------------

func TestCachedStore_DegradesWhenRedisDown(t *testing.T) {
	// 指向一个不会有人监听的端口
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	spy := NewSpyStore()
	store := newWithClient(spy, client, time.Minute)
	ctx := context.Background()
	obj := mockObject{id: types.Sum256("degraded")}

	exists, err := store.Has(ctx, obj.id)
	require.NoError(t, err, "Redis 故障不应该影响 Has")
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, obj))
	assert.Equal(t, int32(1), atomic.LoadInt32(&spy.putCount))

	exists, err = store.Has(ctx, obj.id)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNewCachedStore_InvalidURL(t *testing.T) {
	_, err := NewCachedStore(NewSpyStore(), Config{RedisURL: "not-a-url"})
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
// 4. 集成测试
// -----------------------------------------------------------------------------

func TestCachedStore_Integration(t *testing.T) {
	redisAddr := "localhost:6379"
	conn, err := net.DialTimeout("tcp", redisAddr, 1*time.Second)
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	conn.Close()

	ctx := context.Background()
	spy := NewSpyStore()
	cachedStore, err := NewCachedStore(spy, Config{
		RedisURL: fmt.Sprintf("redis://%s/0", redisAddr),
		TTL:      1 * time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { cachedStore.Close() })

	hash := types.Sum256("cache-integration")
	obj := mockObject{id: hash}
	require.NoError(t, cachedStore.client.Del(ctx, cachedStore.cacheKey(hash)).Err())

	// Step 1: Cache Miss
	exists, err := cachedStore.Has(ctx, hash)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, int32(1), atomic.LoadInt32(&spy.hasCount), "Backend Has() should be called on miss")

	// Step 2: Put (Put 内部的 Has 预检会再穿透一次)
	require.NoError(t, cachedStore.Put(ctx, obj))
	assert.Equal(t, int32(1), atomic.LoadInt32(&spy.putCount), "Backend Put() should be called")

	redisVal, err := cachedStore.client.Exists(ctx, cachedStore.cacheKey(hash)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), redisVal, "Redis key should be set after Put")

	// Step 3: Cache Hit，底层 Has 调用次数保持为 2
	exists, err = cachedStore.Has(ctx, hash)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int32(2), atomic.LoadInt32(&spy.hasCount), "Backend Has() should NOT be called on hit")
}
