package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

func TestEnqueue_AssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	types := []models.ActionType{
		models.ActionCreatePost,
		models.ActionCreateTask,
		models.ActionToggleTask,
		models.ActionDeleteTask,
		models.ActionCreateTask,
	}

	var ids []uint64
	for i, actionType := range types {
		entry, err := store.Enqueue(ctx, actionType, map[string]any{"n": float64(i)})
		require.NoError(t, err)
		assert.Equal(t, models.QueueStatusPending, entry.Status)
		assert.Zero(t, entry.Attempts)
		assert.False(t, entry.CreatedAt.IsZero())
		ids = append(ids, entry.ID)
	}

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, len(types))

	for i, entry := range pending {
		assert.Equal(t, ids[i], entry.ID)
		assert.Equal(t, types[i], entry.Type)
		assert.Equal(t, float64(i), entry.Payload["n"])
		if i > 0 {
			assert.Greater(t, entry.ID, pending[i-1].ID)
		}
	}
}

func TestEnqueue_NilPayload(t *testing.T) {
	store := newTestStorage(t)

	entry, err := store.Enqueue(context.Background(), models.ActionToggleTask, nil)
	require.NoError(t, err)
	assert.NotNil(t, entry.Payload)
}

func TestEnqueue_Closed(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Close())

	_, err := store.Enqueue(context.Background(), models.ActionCreatePost, nil)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestRemove_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	a, err := store.Enqueue(ctx, models.ActionCreateTask, nil)
	require.NoError(t, err)
	b, err := store.Enqueue(ctx, models.ActionCreateTask, nil)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, a.ID))
	require.NoError(t, store.Remove(ctx, a.ID))
	require.NoError(t, store.Remove(ctx, 9999))

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}

func TestMarkFailed_KeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	var entries []*models.QueueEntry
	for i := 0; i < 3; i++ {
		e, err := store.Enqueue(ctx, models.ActionCreateTask, nil)
		require.NoError(t, err)
		entries = append(entries, e)
	}

	// Помечаем средний как failed: он переезжает в другой индекс,
	// но ListPending по-прежнему упорядочен по ID
	updated, err := store.MarkFailed(ctx, entries[1].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Attempts)
	assert.Equal(t, models.QueueStatusFailed, updated.Status)

	updated, err = store.MarkFailed(ctx, entries[1].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Attempts)

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i := range entries {
		assert.Equal(t, entries[i].ID, pending[i].ID)
	}
	assert.Equal(t, 2, pending[1].Attempts)
}

func TestMarkFailed_AbandonsAtLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	entry, err := store.Enqueue(ctx, models.ActionCreatePost, nil)
	require.NoError(t, err)

	_, err = store.MarkFailed(ctx, entry.ID, 2)
	require.NoError(t, err)
	updated, err := store.MarkFailed(ctx, entry.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusAbandoned, updated.Status)

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	abandoned, err := store.ListAbandoned(ctx)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, entry.ID, abandoned[0].ID)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkFailed_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.MarkFailed(context.Background(), 42, 0)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestPendingCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	a, err := store.Enqueue(ctx, models.ActionCreateTask, nil)
	require.NoError(t, err)
	_, err = store.Enqueue(ctx, models.ActionCreateTask, nil)
	require.NoError(t, err)
	_, err = store.MarkFailed(ctx, a.ID, 0)
	require.NoError(t, err)

	count, err = store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
