package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vasudevan-kross/calling-agent-app/pkg/logger"
	"github.com/vasudevan-kross/calling-agent-app/pkg/redis"
	"go.uber.org/zap"
)

// defaultStatusTTL keeps live provider status reads out of the provider API
// for a short window; call state changes quickly so the window stays small.
const defaultStatusTTL = 15 * time.Second

// ProviderStatusCache is a redis-backed cache for live provider call-status
// payloads, keyed by provider call id. All methods are nil-safe so the
// service runs unchanged without redis configured.
type ProviderStatusCache struct {
	redis *redis.RedisService
	ttl   time.Duration
}

// NewProviderStatusCache creates a status cache over the given redis service.
// A nil service yields a cache that misses on every read.
func NewProviderStatusCache(svc *redis.RedisService) *ProviderStatusCache {
	return &ProviderStatusCache{redis: svc, ttl: defaultStatusTTL}
}

// Get returns the cached status payload for a provider call id, or false on
// a miss
func (c *ProviderStatusCache) Get(ctx context.Context, providerCallID string) (map[string]interface{}, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	key := c.redis.GenerateKey(redis.PROVIDER_STATUS, providerCallID)
	val, err := c.redis.GetValue(ctx, key)
	if err != nil {
		if err != redis.ErrKeyNotExist {
			logger.Base().Warn("status cache read failed", zap.String("provider_call_id", providerCallID), zap.Error(err))
		}
		return nil, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(val), &payload); err != nil {
		return nil, false
	}
	return payload, true
}

// Put stores a status payload for a provider call id. Failures are logged
// and ignored; the cache is an optimization, not a dependency.
func (c *ProviderStatusCache) Put(ctx context.Context, providerCallID string, payload map[string]interface{}) {
	if c == nil || c.redis == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	key := c.redis.GenerateKey(redis.PROVIDER_STATUS, providerCallID)
	if err := c.redis.SetValue(ctx, key, string(data), c.ttl); err != nil {
		logger.Base().Warn("status cache write failed", zap.String("provider_call_id", providerCallID), zap.Error(err))
	}
}
