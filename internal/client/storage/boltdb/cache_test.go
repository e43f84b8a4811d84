package boltdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

func TestCache_PutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	_, err := store.GetCache(ctx, "community_posts")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	first := &models.CacheEntry{
		Key:       "community_posts",
		Data:      json.RawMessage(`[{"id":"1"}]`),
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, store.PutCache(ctx, first))

	got, err := store.GetCache(ctx, "community_posts")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got.Data))

	second := &models.CacheEntry{
		Key:       "community_posts",
		Data:      json.RawMessage(`[]`),
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, store.PutCache(ctx, second))

	got, err = store.GetCache(ctx, "community_posts")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got.Data))
}
