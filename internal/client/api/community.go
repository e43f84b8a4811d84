package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/cropaid/pkg/api"
)

// GetPosts возвращает ленту сообщества
func (c *Client) GetPosts(ctx context.Context) ([]api.Post, error) {
	var posts []api.Post
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/community", nil, &posts); err != nil {
		return nil, fmt.Errorf("get posts request failed: %w", err)
	}
	return posts, nil
}

// CreatePost публикует запись в сообществе
func (c *Client) CreatePost(ctx context.Context, req api.CreatePostRequest) (*api.Post, error) {
	var post api.Post
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/community", req, &post); err != nil {
		return nil, fmt.Errorf("create post request failed: %w", err)
	}
	return &post, nil
}

// LikePost ставит отметку "нравится"
func (c *Client) LikePost(ctx context.Context, postID string) (*api.Post, error) {
	var post api.Post
	path := fmt.Sprintf("/api/v1/community/%s/like", url.PathEscape(postID))
	if err := c.doRequest(ctx, http.MethodPut, path, nil, &post); err != nil {
		return nil, fmt.Errorf("like request failed: %w", err)
	}
	return &post, nil
}

// CommentPost добавляет комментарий к публикации
func (c *Client) CommentPost(ctx context.Context, postID string, req api.CommentRequest) (*api.Comment, error) {
	var comment api.Comment
	path := fmt.Sprintf("/api/v1/community/%s/comment", url.PathEscape(postID))
	if err := c.doRequest(ctx, http.MethodPost, path, req, &comment); err != nil {
		return nil, fmt.Errorf("comment request failed: %w", err)
	}
	return &comment, nil
}
