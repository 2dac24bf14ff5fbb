package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppable-video/backend/internal/models"
)

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	readErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return redis.NewStringResult("", f.readErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

type countingStore struct {
	videos   map[string]*models.Video
	products map[string]*models.Product
	calls    int
}

func (s *countingStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	s.calls++
	if v, ok := s.videos[id]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (s *countingStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.calls++
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func TestCachedStore_ReadThrough(t *testing.T) {
	store := &countingStore{
		products: map[string]*models.Product{"p1": {ID: "p1", Title: "Tee", Price: "$25"}},
	}
	rdb := newFakeRedis()
	cached := NewCachedStore(store, rdb, 30*time.Second, nil)

	first, err := cached.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	second, err := cached.GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 30*time.Second, rdb.ttls["catalog:product:p1"])
}

func TestCachedStore_VideoRoundTrip(t *testing.T) {
	size := 80.0
	v := &models.Video{ID: "v1", VideoURL: "/uploads/v1.mp4", Duration: 60, ProductPlacements: []models.Placement{{ID: "pl1", ProductID: "p1", StartTime: 1, EndTime: 2}}}
	v.CarouselConfig.ThumbnailSize = &size
	store := &countingStore{videos: map[string]*models.Video{"v1": v}}
	cached := NewCachedStore(store, newFakeRedis(), 0, nil)

	_, err := cached.GetVideo(context.Background(), "v1")
	require.NoError(t, err)
	got, err := cached.GetVideo(context.Background(), "v1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, v, got)
}

func TestCachedStore_MissesAreNotCached(t *testing.T) {
	store := &countingStore{}
	rdb := newFakeRedis()
	cached := NewCachedStore(store, rdb, 0, nil)

	_, err := cached.GetProduct(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cached.GetProduct(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 2, store.calls)
	assert.Empty(t, rdb.data)
}

func TestCachedStore_RedisDownFallsThrough(t *testing.T) {
	store := &countingStore{products: map[string]*models.Product{"p1": {ID: "p1"}}}
	rdb := newFakeRedis()
	rdb.readErr = errors.New("dial tcp: connection refused")
	cached := NewCachedStore(store, rdb, 0, nil)

	p, err := cached.GetProduct(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestCachedStore_CorruptEntryIsIgnored(t *testing.T) {
	store := &countingStore{products: map[string]*models.Product{"p1": {ID: "p1"}}}
	rdb := newFakeRedis()
	rdb.data["catalog:product:p1"] = "{broken"
	cached := NewCachedStore(store, rdb, 0, nil)

	p, err := cached.GetProduct(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 1, store.calls)
}
