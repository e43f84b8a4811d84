// Package service holds the application operations used by the CLI. Each
// write goes to the server when possible and otherwise lands in the action
// queue with an optimistic result; each read refreshes the cache and falls
// back to it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/iudanet/cropaid/internal/client/cache"
	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/pkg/api"
)

var (
	// ErrOfflineUnavailable is returned for operations that have no offline mode
	ErrOfflineUnavailable = errors.New("operation is not available offline")

	// ErrSignInRequired is returned to guests for operations that cannot be queued
	ErrSignInRequired = errors.New("sign in required")
)

// Remote is the server API used by the services
type Remote interface {
	GetPosts(ctx context.Context) ([]api.Post, error)
	CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error)
	LikePost(ctx context.Context, postID string) (*api.Post, error)
	CommentPost(ctx context.Context, postID string, req api.CommentRequest) (*api.Comment, error)
	GetTasks(ctx context.Context) ([]api.Task, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.Task, error)
	ToggleTask(ctx context.Context, taskID string) (*api.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// Identity describes who is using the client
type Identity struct {
	UserID string
	Guest  bool
}

// Service implements community and calendar operations
type Service struct {
	remote   Remote
	queue    storage.QueueStorage
	cache    *cache.Cache
	online   func() bool
	identity func() Identity
	logger   *slog.Logger
}

// New creates a service. identity is consulted on every call so a login
// or logout takes effect immediately.
func New(remote Remote, queue storage.QueueStorage, c *cache.Cache, online func() bool, identity func() Identity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		remote:   remote,
		queue:    queue,
		cache:    c,
		online:   online,
		identity: identity,
		logger:   logger,
	}
}

// deferWrites reports whether writes must go to the queue
func (s *Service) deferWrites() bool {
	return !s.online() || s.identity().Guest
}

func (s *Service) enqueue(ctx context.Context, actionType models.ActionType, payload any) (*models.QueueEntry, error) {
	data, err := toPayload(payload)
	if err != nil {
		return nil, err
	}

	entry, err := s.queue.Enqueue(ctx, actionType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to queue %s: %w", actionType, err)
	}

	s.logger.Info("Action queued for sync", "entry_id", entry.ID, "type", actionType)
	return entry, nil
}

// tempID is the placeholder id of an entity created offline
func tempID(entry *models.QueueEntry) string {
	return "temp_" + strconv.FormatUint(entry.ID, 10)
}

// toPayload converts a request struct into a queue payload
func toPayload(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return payload, nil
}

// fromPayload decodes a queue payload into dst
func fromPayload(payload map[string]any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

// readThrough fetches a collection, caching it on success. While offline or
// after a failed fetch the cached copy (or an empty list) is returned and
// cached is true.
func readThrough[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) ([]T, error)) (items []T, cached bool) {
	if s.online() {
		fresh, err := fetch(ctx)
		if err == nil {
			if fresh == nil {
				fresh = []T{}
			}
			s.cache.CacheData(ctx, key, fresh)
			return fresh, false
		}
		s.logger.Warn("Fetch failed, using cache", "key", key, "error", err)
	}

	if !s.cache.Load(ctx, key, &items) || items == nil {
		items = []T{}
	}
	return items, true
}
