package boltdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/cropaid/internal/models"
)

func TestRecordStore_UpdateMovesIndex(t *testing.T) {
	store := newTestStorage(t)

	id, err := store.queue.Add(&models.QueueEntry{Type: models.ActionCreateTask, Status: models.QueueStatusPending})
	require.NoError(t, err)

	_, err = store.queue.Update(id, func(e *models.QueueEntry) error {
		e.Status = models.QueueStatusFailed
		e.ID = 12345 // попытка изменить ID игнорируется
		return nil
	})
	require.NoError(t, err)

	pending, err := store.queue.CountByIndex(string(models.QueueStatusPending))
	require.NoError(t, err)
	assert.Zero(t, pending)

	failed, err := store.queue.ByIndex(string(models.QueueStatusFailed))
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, id, failed[0].ID)
}

func TestRecordStore_UpdateErrorRollsBack(t *testing.T) {
	store := newTestStorage(t)

	id, err := store.queue.Add(&models.QueueEntry{Status: models.QueueStatusPending})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.queue.Update(id, func(e *models.QueueEntry) error {
		e.Attempts = 10
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.queue.Get(id)
	require.NoError(t, err)
	assert.Zero(t, got.Attempts)
}

func TestRecordStore_DanglingIndexSkipped(t *testing.T) {
	store := newTestStorage(t)

	id, err := store.queue.Add(&models.QueueEntry{Status: models.QueueStatusPending})
	require.NoError(t, err)

	// Удаляем запись в обход индекса
	err = store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketQueue).Delete(itob(id))
	})
	require.NoError(t, err)

	records, err := store.queue.ByIndex(string(models.QueueStatusPending))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordStore_MissingBucket(t *testing.T) {
	store := newTestStorage(t)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketQueueIndex)
	})
	require.NoError(t, err)

	_, err = store.queue.All()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
}
