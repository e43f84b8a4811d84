package storage

import (
	"context"

	"github.com/iudanet/cropaid/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines the durable, ordered queue of pending mutations
type QueueStorage interface {
	// Enqueue persists a new pending entry and returns it with the assigned ID.
	// A storage failure is returned as-is: losing a queued mutation is data loss.
	Enqueue(ctx context.Context, actionType models.ActionType, payload map[string]any) (*models.QueueEntry, error)

	// ListPending returns pending and failed entries in ascending ID order.
	// Every call re-reads the durable state.
	ListPending(ctx context.Context) ([]*models.QueueEntry, error)

	// ListAbandoned returns entries that reached the attempt limit
	ListAbandoned(ctx context.Context) ([]*models.QueueEntry, error)

	// Remove deletes an entry. Removing an absent ID is not an error.
	Remove(ctx context.Context, id uint64) error

	// MarkFailed increments Attempts and leaves the entry in the queue.
	// When maxAttempts > 0 and the limit is reached the entry becomes abandoned.
	// Returns the updated entry.
	MarkFailed(ctx context.Context, id uint64, maxAttempts int) (*models.QueueEntry, error)

	// PendingCount returns the number of entries still waiting for sync
	PendingCount(ctx context.Context) (int, error)
}
