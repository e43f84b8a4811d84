package storage

import (
	"context"

	"github.com/iudanet/cropaid/internal/models"
)

// CommunityStorage defines interface for community posts persistence
type CommunityStorage interface {
	// CreatePost stores a new post
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPost retrieves a post with its comments and like count
	// Returns ErrPostNotFound if post doesn't exist
	GetPost(ctx context.Context, postID string) (*models.Post, error)

	// ListPosts returns the newest posts first, limit <= 0 means no limit
	ListPosts(ctx context.Context, limit int) ([]*models.Post, error)

	// LikePost records a like of userID; repeated likes are counted once
	// Returns ErrPostNotFound if post doesn't exist
	LikePost(ctx context.Context, postID, userID string) error

	// AddComment stores a comment
	// Returns ErrPostNotFound if post doesn't exist
	AddComment(ctx context.Context, comment *models.Comment) error
}

// CalendarStorage defines interface for calendar tasks persistence
type CalendarStorage interface {
	// CreateTask stores a new task
	CreateTask(ctx context.Context, task *models.Task) error

	// ListTasks returns tasks of the user ordered by due date
	ListTasks(ctx context.Context, userID string) ([]*models.Task, error)

	// ToggleTask flips the completed flag and returns the updated task
	// Returns ErrTaskNotFound if the user has no such task
	ToggleTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// DeleteTask removes a task
	// Returns ErrTaskNotFound if the user has no such task
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// MediaStorage defines interface for uploaded captures
type MediaStorage interface {
	// SaveMedia stores an upload. If the user already uploaded media with the
	// same checksum, the stored ID is returned with ErrDuplicateMedia.
	SaveMedia(ctx context.Context, media *models.Media) (string, error)

	// GetMedia retrieves uploaded media of the user
	GetMedia(ctx context.Context, userID, mediaID string) (*models.Media, error)
}
