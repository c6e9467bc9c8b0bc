package results

import (
	"context"
	"encoding/json"
	"time"

	"loan-workers/internal/common/database"
	"loan-workers/internal/common/logger"
)

const cacheKeyPrefix = "loan:result:"

// CachedStore is a read-through Redis cache in front of another store.
// Cache failures degrade to the inner store and are never fatal.
type CachedStore struct {
	inner  Store
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(inner Store, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "results-cache"}),
	}
}

func (c *CachedStore) Save(ctx context.Context, rec *Record) error {
	if err := c.inner.Save(ctx, rec); err != nil {
		return err
	}
	c.put(ctx, rec)
	return nil
}

func (c *CachedStore) Get(ctx context.Context, applicationID string) (*Record, error) {
	if raw, err := c.redis.Get(ctx, cacheKeyPrefix+applicationID); err == nil {
		var rec Record
		if jerr := json.Unmarshal([]byte(raw), &rec); jerr == nil {
			return &rec, nil
		}
		// A corrupt entry falls through to the inner store and is rewritten.
		c.logger.Warn("discarding corrupt cache entry", map[string]interface{}{
			"applicationId": applicationID,
		})
	}

	rec, err := c.inner.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, rec)
	return rec, nil
}

func (c *CachedStore) List(ctx context.Context, limit int) ([]Summary, error) {
	return c.inner.List(ctx, limit)
}

func (c *CachedStore) put(ctx context.Context, rec *Record) {
	body, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKeyPrefix+rec.ApplicationID, body, c.ttl); err != nil {
		c.logger.WithError(err).Warn("cache write failed", map[string]interface{}{
			"applicationId": rec.ApplicationID,
		})
	}
}
