package storage

import (
	"context"

	"github.com/iudanet/cropaid/internal/models"
)

// CacheStorage defines a durable key/value map of cached remote collections
type CacheStorage interface {
	// PutCache overwrites the entry for entry.Key
	PutCache(ctx context.Context, entry *models.CacheEntry) error

	// GetCache returns the entry for key
	// Returns ErrRecordNotFound if the key was never cached
	GetCache(ctx context.Context, key string) (*models.CacheEntry, error)
}
