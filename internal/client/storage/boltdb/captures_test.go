package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

func newCapture(mediaType models.MediaType) *models.CaptureRecord {
	return &models.CaptureRecord{
		MediaType:   mediaType,
		PayloadKind: models.PayloadInline,
		Payload:     "data:image/jpeg;base64,AAAA",
		Metadata:    map[string]any{"size": float64(3)},
		Timestamp:   time.Now().UTC(),
	}
}

func TestCaptures_AddGetAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	id1, err := store.AddCapture(ctx, newCapture(models.MediaImage))
	require.NoError(t, err)
	id2, err := store.AddCapture(ctx, newCapture(models.MediaVideo))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, err := store.GetCapture(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, models.OriginPrimary, got.Origin)
	assert.Equal(t, models.MediaImage, got.MediaType)
	assert.Equal(t, float64(3), got.Metadata["size"])
	assert.False(t, got.Synced)

	all, err := store.GetAllCaptures(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id1, all[0].ID)
	assert.Equal(t, id2, all[1].ID)
}

func TestCaptures_GetNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetCapture(context.Background(), 7)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestCaptures_UnsyncedIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	var ids []uint64
	for i := 0; i < 3; i++ {
		id, err := store.AddCapture(ctx, newCapture(models.MediaImage))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	at := time.Now().UTC()
	require.NoError(t, store.MarkCaptureSynced(ctx, ids[1], at))

	unsynced, err := store.GetUnsyncedCaptures(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 2)
	assert.Equal(t, ids[0], unsynced[0].ID)
	assert.Equal(t, ids[2], unsynced[1].ID)

	synced, err := store.GetCapture(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, synced.Synced)
	require.NotNil(t, synced.SyncedAt)

	// Повторная отметка не меняет SyncedAt
	require.NoError(t, store.MarkCaptureSynced(ctx, ids[1], at.Add(time.Hour)))
	again, err := store.GetCapture(ctx, ids[1])
	require.NoError(t, err)
	assert.True(t, synced.SyncedAt.Equal(*again.SyncedAt))
}

func TestCaptures_IncrementSyncAttempts(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	id, err := store.AddCapture(ctx, newCapture(models.MediaImage))
	require.NoError(t, err)

	require.NoError(t, store.IncrementSyncAttempts(ctx, id))
	require.NoError(t, store.IncrementSyncAttempts(ctx, id))

	got, err := store.GetCapture(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SyncAttempts)

	unsynced, err := store.GetUnsyncedCaptures(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestCaptures_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	id, err := store.AddCapture(ctx, newCapture(models.MediaImage))
	require.NoError(t, err)
	_, err = store.AddCapture(ctx, newCapture(models.MediaImage))
	require.NoError(t, err)

	require.NoError(t, store.DeleteCapture(ctx, id))
	require.NoError(t, store.DeleteCapture(ctx, id))

	unsynced, err := store.GetUnsyncedCaptures(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)

	require.NoError(t, store.ClearCaptures(ctx))

	all, err := store.GetAllCaptures(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	unsynced, err = store.GetUnsyncedCaptures(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	// ID не переиспользуются после очистки
	next, err := store.AddCapture(ctx, newCapture(models.MediaImage))
	require.NoError(t, err)
	assert.Greater(t, next, id+1)
}
