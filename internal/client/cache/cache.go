// Package cache keeps the last successfully fetched copy of remote
// collections so reads can be served while offline.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

// Well-known cache keys
const (
	KeyCommunityPosts = "community_posts"
	keyCalendarTasks  = "calendar_tasks_"
)

// CalendarTasksKey returns the per-user key for calendar tasks
func CalendarTasksKey(userID string) string {
	return keyCalendarTasks + userID
}

// Cache is a read-through snapshot layer. Failures never reach the caller:
// writes are logged and dropped, reads degrade to a miss.
type Cache struct {
	storage storage.CacheStorage
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a cache on top of st
func New(st storage.CacheStorage, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		storage: st,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var jsonNull = []byte("null")

// CacheData stores data under key, replacing any previous snapshot.
// Data that encodes to JSON null is not stored.
func (c *Cache) CacheData(ctx context.Context, key string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("Failed to encode cache data", "key", key, "error", err)
		return
	}
	if bytes.Equal(raw, jsonNull) {
		c.logger.Debug("Nil data not cached", "key", key)
		return
	}

	entry := &models.CacheEntry{Key: key, Data: raw, Timestamp: c.now()}
	if err := c.storage.PutCache(ctx, entry); err != nil {
		c.logger.Warn("Failed to cache data", "key", key, "error", err)
		return
	}

	c.logger.Debug("Data cached", "key", key, "bytes", len(raw))
}

// GetCachedData returns the raw snapshot for key or nil on a miss
func (c *Cache) GetCachedData(ctx context.Context, key string) json.RawMessage {
	entry, err := c.storage.GetCache(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrRecordNotFound) {
			c.logger.Warn("Failed to read cache", "key", key, "error", err)
		}
		return nil
	}
	// null в хранилище считается промахом
	if len(entry.Data) == 0 || bytes.Equal(entry.Data, jsonNull) {
		return nil
	}
	return entry.Data
}

// Load decodes the snapshot for key into dst. It reports whether a usable
// snapshot was found.
func (c *Cache) Load(ctx context.Context, key string, dst any) bool {
	raw := c.GetCachedData(ctx, key)
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("Failed to decode cached data", "key", key, "error", err)
		return false
	}
	return true
}
