package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

// Compile-time check that Storage implements QueueStorage
var _ storage.QueueStorage = (*Storage)(nil)

// Enqueue stores a new pending action. IDs come from the bucket sequence,
// so they are strictly increasing in call order.
func (s *Storage) Enqueue(ctx context.Context, actionType models.ActionType, payload map[string]any) (*models.QueueEntry, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	entry := &models.QueueEntry{
		Type:      actionType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		Status:    models.QueueStatusPending,
	}

	if _, err := s.queue.Add(entry); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", actionType, err)
	}

	return entry, nil
}

// ListPending returns pending and failed entries in ascending ID order
func (s *Storage) ListPending(ctx context.Context) ([]*models.QueueEntry, error) {
	entries, err := s.queue.ByIndex(string(models.QueueStatusPending), string(models.QueueStatusFailed))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	return entries, nil
}

// ListAbandoned returns entries that reached the attempt limit
func (s *Storage) ListAbandoned(ctx context.Context) ([]*models.QueueEntry, error) {
	entries, err := s.queue.ByIndex(string(models.QueueStatusAbandoned))
	if err != nil {
		return nil, fmt.Errorf("failed to list abandoned entries: %w", err)
	}
	return entries, nil
}

// Remove deletes an entry; absent IDs are ignored
func (s *Storage) Remove(ctx context.Context, id uint64) error {
	if err := s.queue.Delete(id); err != nil {
		return fmt.Errorf("failed to remove entry %d: %w", id, err)
	}
	return nil
}

// MarkFailed increments the attempt counter of the entry
func (s *Storage) MarkFailed(ctx context.Context, id uint64, maxAttempts int) (*models.QueueEntry, error) {
	entry, err := s.queue.Update(id, func(e *models.QueueEntry) error {
		e.Attempts++
		e.Status = models.QueueStatusFailed
		if maxAttempts > 0 && e.Attempts >= maxAttempts {
			e.Status = models.QueueStatusAbandoned
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to mark entry %d as failed: %w", id, err)
	}
	return entry, nil
}

// PendingCount returns the number of pending and failed entries
func (s *Storage) PendingCount(ctx context.Context) (int, error) {
	count, err := s.queue.CountByIndex(string(models.QueueStatusPending), string(models.QueueStatusFailed))
	if err != nil {
		return 0, fmt.Errorf("failed to count pending entries: %w", err)
	}
	return count, nil
}
