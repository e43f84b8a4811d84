package storage

import (
	"context"
	"time"

	"github.com/iudanet/cropaid/internal/models"
)

// CaptureStorage defines a durable collection of capture records.
// Implemented by both the primary (bbolt) and the fallback (append-only) store.
type CaptureStorage interface {
	// AddCapture persists the record and assigns its ID
	AddCapture(ctx context.Context, record *models.CaptureRecord) (uint64, error)

	// GetCapture retrieves a record by ID
	// Returns ErrRecordNotFound if record doesn't exist
	GetCapture(ctx context.Context, id uint64) (*models.CaptureRecord, error)

	// GetAllCaptures returns every record in ascending ID order
	GetAllCaptures(ctx context.Context) ([]*models.CaptureRecord, error)

	// GetUnsyncedCaptures returns records with Synced == false
	GetUnsyncedCaptures(ctx context.Context) ([]*models.CaptureRecord, error)

	// DeleteCapture removes a record. Removing an absent ID is not an error.
	DeleteCapture(ctx context.Context, id uint64) error

	// MarkCaptureSynced sets Synced and SyncedAt. Already synced records are left as is.
	MarkCaptureSynced(ctx context.Context, id uint64, at time.Time) error

	// IncrementSyncAttempts bumps SyncAttempts after a failed upload
	IncrementSyncAttempts(ctx context.Context, id uint64) error

	// ClearCaptures removes every record
	ClearCaptures(ctx context.Context) error
}
