package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/marketboard/marketboard-go/internal/models"
)

// SnapshotEntry wraps the aligned table with cache metadata.
type SnapshotEntry struct {
	Table    *models.AlignedTable `json:"table"`
	CachedAt time.Time            `json:"cached_at"`
}

// SnapshotStats tracks cache performance counters.
type SnapshotStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// SnapshotCache stores the prepared aligned table in Redis so restarts can
// skip re-reading and re-resampling the input files. The entry is written
// once at startup and only read afterwards; serving traffic never mutates
// it.
type SnapshotCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  SnapshotStats
	mu     sync.RWMutex
	prefix string
	logger *logrus.Logger
}

// NewSnapshotCache creates a Redis-backed snapshot cache.
func NewSnapshotCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *SnapshotCache {
	return &SnapshotCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "marketboard:aligned:",
		logger: logger,
	}
}

// Key derives the cache key for a primary/secondary series pair.
func (c *SnapshotCache) Key(primary, secondary string) string {
	return c.prefix + primary + ":" + secondary
}

// Get retrieves a cached aligned table. A miss, a Redis error, or an
// undecodable payload all return ok=false so the caller rebuilds from the
// source files.
func (c *SnapshotCache) Get(ctx context.Context, key string) (*models.AlignedTable, bool) {
	data, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		c.countMiss()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis error getting snapshot")
		c.countMiss()
		return nil, false
	}

	var entry SnapshotEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to decode cached snapshot")
		c.countMiss()
		return nil, false
	}
	if entry.Table == nil {
		c.countMiss()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return entry.Table, true
}

// Set stores the aligned table under the given key with the configured
// TTL. Failures are logged and swallowed: the cache is an optimization,
// never a dependency.
func (c *SnapshotCache) Set(ctx context.Context, key string, table *models.AlignedTable) {
	entry := SnapshotEntry{
		Table:    table,
		CachedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to encode snapshot")
		return
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis error setting snapshot")
		return
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"key":  key,
		"rows": table.Len(),
		"ttl":  c.ttl,
	}).Info("Cached aligned table snapshot")
}

// GetStats returns a copy of the current cache counters.
func (c *SnapshotCache) GetStats() SnapshotStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *SnapshotCache) countMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
