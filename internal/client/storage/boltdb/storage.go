package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cropaid/internal/models"
)

var (
	// BoltDB bucket names
	bucketAuth         = []byte("auth")
	bucketQueue        = []byte("queue")
	bucketQueueIndex   = []byte("queue_status_idx")
	bucketCaptures     = []byte("captures")
	bucketCaptureIndex = []byte("captures_synced_idx")
	bucketCache        = []byte("cache")
)

// Storage represents BoltDB storage implementation for client.
// It holds the action queue, the primary capture collection,
// the read cache and the current session.
type Storage struct {
	db       *bbolt.DB
	queue    *recordStore[models.QueueEntry, *models.QueueEntry]
	captures *recordStore[models.CaptureRecord, *models.CaptureRecord]
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB; timeout защищает от второго процесса, держащего lock
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}
	storage.queue = newRecordStore[models.QueueEntry, *models.QueueEntry](storage, bucketQueue, bucketQueueIndex)
	storage.captures = newRecordStore[models.CaptureRecord, *models.CaptureRecord](storage, bucketCaptures, bucketCaptureIndex)

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{
			bucketAuth,
			bucketQueue,
			bucketQueueIndex,
			bucketCaptures,
			bucketCaptureIndex,
			bucketCache,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
