package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iudanet/cropaid/internal/models"
)

//go:generate moq -out mocks_mock.go . Dispatcher Uploader

// ErrUnknownAction is returned by a Dispatcher for an unregistered action type
var ErrUnknownAction = errors.New("unknown action type")

// Dispatcher performs the remote call for a queued action
type Dispatcher interface {
	Dispatch(ctx context.Context, entry *models.QueueEntry) error
}

// Uploader sends a capture to the remote service
type Uploader interface {
	UploadCapture(ctx context.Context, record *models.CaptureRecord) error
}

// ActionFunc performs one remote operation for the given payload
type ActionFunc func(ctx context.Context, payload map[string]any) error

// Registry maps action types to remote operations. The set is open:
// callers add new types with Register.
type Registry struct {
	handlers map[models.ActionType]ActionFunc
	mu       sync.RWMutex
}

// Compile-time check that Registry implements Dispatcher
var _ Dispatcher = (*Registry)(nil)

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.ActionType]ActionFunc)}
}

// Register binds fn to actionType, replacing a previous binding
func (r *Registry) Register(actionType models.ActionType, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[actionType] = fn
}

// Dispatch calls the operation registered for entry.Type
func (r *Registry) Dispatch(ctx context.Context, entry *models.QueueEntry) error {
	r.mu.RLock()
	fn, ok := r.handlers[entry.Type]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, entry.Type)
	}
	return fn(ctx, entry.Payload)
}
