package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/metrics"
	"github.com/shoppable-video/backend/internal/models"
)

// DefaultCacheTTL is how long catalog entries stay in Redis.
const DefaultCacheTTL = 60 * time.Second

// Cacher is the subset of the Redis client the cache uses.
type Cacher interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedStore is a read-through Redis cache in front of a Store.
// Misses are not cached. Redis errors fall through to the store.
type CachedStore struct {
	next   Store
	rdb    Cacher
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, rdb Cacher, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// GetVideo returns a video from cache or the store.
func (s *CachedStore) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	if s.get(ctx, "video", id, &v) {
		return &v, nil
	}
	video, err := s.next.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, "video", id, video)
	return video, nil
}

// GetProduct returns a product from cache or the store.
func (s *CachedStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if s.get(ctx, "product", id, &p) {
		return &p, nil
	}
	product, err := s.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, "product", id, product)
	return product, nil
}

func cacheKey(kind, id string) string {
	return "catalog:" + kind + ":" + id
}

func (s *CachedStore) get(ctx context.Context, kind, id string, out interface{}) bool {
	raw, err := s.rdb.Get(ctx, cacheKey(kind, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("catalog cache read failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
			metrics.CatalogCache.WithLabelValues(kind, "error").Inc()
			return false
		}
		metrics.CatalogCache.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("catalog cache entry invalid", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		metrics.CatalogCache.WithLabelValues(kind, "error").Inc()
		return false
	}
	metrics.CatalogCache.WithLabelValues(kind, "hit").Inc()
	return true
}

func (s *CachedStore) set(ctx context.Context, kind, id string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(kind, id), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
	}
}
