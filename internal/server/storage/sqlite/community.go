package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
)

// Compile-time check that Storage implements the server storage interfaces
var (
	_ storage.UserStorage      = (*Storage)(nil)
	_ storage.SessionStorage   = (*Storage)(nil)
	_ storage.CommunityStorage = (*Storage)(nil)
	_ storage.CalendarStorage  = (*Storage)(nil)
	_ storage.MediaStorage     = (*Storage)(nil)
)

const postColumns = `
	p.id, p.author_id, p.title, p.content, p.crop, p.image_url, p.created_at,
	(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
`

// CreatePost stores a new post
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, author_id, title, content, crop, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.Crop,
		post.ImageURL,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{Comments: []models.Comment{}}
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.Crop,
		&post.ImageURL,
		&post.CreatedAt,
		&post.Likes,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a post with its comments and like count
func (s *Storage) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = ?`

	post, err := scanPost(s.db.QueryRowContext(ctx, query, postID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := s.attachComments(ctx, map[string]*models.Post{post.ID: post}); err != nil {
		return nil, err
	}

	return post, nil
}

// ListPosts returns the newest posts first
func (s *Storage) ListPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p ORDER BY p.created_at DESC, p.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := []*models.Post{}
	byID := make(map[string]*models.Post)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
		byID[post.ID] = post
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if err := s.attachComments(ctx, byID); err != nil {
		return nil, err
	}

	return posts, nil
}

// attachComments загружает комментарии одним запросом и раскладывает по постам
func (s *Storage) attachComments(ctx context.Context, posts map[string]*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(posts))
	args := make([]any, 0, len(posts))
	for id := range posts {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	query := `
		SELECT id, post_id, author_id, text, created_at
		FROM comments
		WHERE post_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		if post, ok := posts[c.PostID]; ok {
			post.Comments = append(post.Comments, c)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}

func (s *Storage) postExists(ctx context.Context, postID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, postID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrPostNotFound
		}
		return fmt.Errorf("failed to check post: %w", err)
	}
	return nil
}

// LikePost records a like; repeated likes by the same user are counted once
func (s *Storage) LikePost(ctx context.Context, postID, userID string) error {
	if err := s.postExists(ctx, postID); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO post_likes (post_id, user_id) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("failed to like post: %w", err)
	}

	return nil
}

// AddComment stores a comment
func (s *Storage) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := s.postExists(ctx, comment.PostID); err != nil {
		return err
	}

	query := `
		INSERT INTO comments (id, post_id, author_id, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Text,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}
