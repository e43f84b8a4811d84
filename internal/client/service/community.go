package service

import (
	"context"
	"fmt"

	apiclient "github.com/iudanet/cropaid/internal/client/api"
	"github.com/iudanet/cropaid/internal/client/cache"
	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/pkg/api"
)

// GetPosts returns the community feed. cached is true when the result did
// not come from the server.
func (s *Service) GetPosts(ctx context.Context) (posts []api.Post, cached bool) {
	return readThrough(ctx, s, cache.KeyCommunityPosts, s.remote.GetPosts)
}

// CreatePost publishes a post or queues it
func (s *Service) CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error) {
	if s.deferWrites() {
		return s.queuePost(ctx, req)
	}

	post, err := s.remote.CreatePost(ctx, req)
	if err != nil {
		if apiclient.IsUnreachable(err) {
			s.logger.Warn("Create post failed, queueing", "error", err)
			return s.queuePost(ctx, req)
		}
		return nil, err
	}
	return post, nil
}

func (s *Service) queuePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error) {
	entry, err := s.enqueue(ctx, models.ActionCreatePost, req)
	if err != nil {
		return nil, err
	}
	return &api.Post{
		CreatedAt: entry.CreatedAt,
		Comments:  []api.Comment{},
		ID:        tempID(entry),
		AuthorID:  s.identity().UserID,
		Title:     req.Title,
		Content:   req.Content,
		Crop:      req.Crop,
		ImageURL:  req.ImageURL,
		Offline:   true,
	}, nil
}

// LikePost likes a post. Likes are not queued.
func (s *Service) LikePost(ctx context.Context, postID string) (*api.Post, error) {
	if err := s.requireLive(); err != nil {
		return nil, err
	}
	post, err := s.remote.LikePost(ctx, postID)
	if err != nil {
		return nil, s.liveError(err)
	}
	return post, nil
}

// CommentPost comments on a post. Comments are not queued.
func (s *Service) CommentPost(ctx context.Context, postID, text string) (*api.Comment, error) {
	if err := s.requireLive(); err != nil {
		return nil, err
	}
	comment, err := s.remote.CommentPost(ctx, postID, api.CommentRequest{Text: text})
	if err != nil {
		return nil, s.liveError(err)
	}
	return comment, nil
}

func (s *Service) requireLive() error {
	if !s.online() {
		return ErrOfflineUnavailable
	}
	if s.identity().Guest {
		return ErrSignInRequired
	}
	return nil
}

func (s *Service) liveError(err error) error {
	if apiclient.IsUnreachable(err) {
		return fmt.Errorf("%w: %w", ErrOfflineUnavailable, err)
	}
	return err
}
