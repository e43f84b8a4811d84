package boltdb

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

// Compile-time check that Storage implements CaptureStorage
var _ storage.CaptureStorage = (*Storage)(nil)

// AddCapture stores the record in one transaction together with its synced index
func (s *Storage) AddCapture(ctx context.Context, record *models.CaptureRecord) (uint64, error) {
	record.Origin = models.OriginPrimary
	id, err := s.captures.Add(record)
	if err != nil {
		return 0, fmt.Errorf("failed to save capture: %w", err)
	}
	return id, nil
}

// GetCapture retrieves a capture by ID
func (s *Storage) GetCapture(ctx context.Context, id uint64) (*models.CaptureRecord, error) {
	return s.captures.Get(id)
}

// GetAllCaptures returns all captures in ascending ID order
func (s *Storage) GetAllCaptures(ctx context.Context) ([]*models.CaptureRecord, error) {
	records, err := s.captures.All()
	if err != nil {
		return nil, fmt.Errorf("failed to get all captures: %w", err)
	}
	return records, nil
}

// GetUnsyncedCaptures uses the synced index to return captures not yet uploaded
func (s *Storage) GetUnsyncedCaptures(ctx context.Context) ([]*models.CaptureRecord, error) {
	records, err := s.captures.ByIndex((&models.CaptureRecord{}).IndexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to get unsynced captures: %w", err)
	}
	return records, nil
}

// DeleteCapture removes a capture; absent IDs are ignored
func (s *Storage) DeleteCapture(ctx context.Context, id uint64) error {
	if err := s.captures.Delete(id); err != nil {
		return fmt.Errorf("failed to delete capture %d: %w", id, err)
	}
	return nil
}

// MarkCaptureSynced flips the synced flag once
func (s *Storage) MarkCaptureSynced(ctx context.Context, id uint64, at time.Time) error {
	_, err := s.captures.Update(id, func(c *models.CaptureRecord) error {
		c.MarkSynced(at)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark capture %d as synced: %w", id, err)
	}
	return nil
}

// IncrementSyncAttempts records a failed upload attempt
func (s *Storage) IncrementSyncAttempts(ctx context.Context, id uint64) error {
	_, err := s.captures.Update(id, func(c *models.CaptureRecord) error {
		c.SyncAttempts++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update capture %d: %w", id, err)
	}
	return nil
}

// ClearCaptures removes all captures
func (s *Storage) ClearCaptures(ctx context.Context) error {
	if err := s.captures.Clear(); err != nil {
		return fmt.Errorf("failed to clear captures: %w", err)
	}
	return nil
}
