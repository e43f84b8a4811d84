package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/cropaid/pkg/api"
)

func (c *Cli) newPostCommand() *cobra.Command {
	var req api.CreatePostRequest

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a community post (queued when offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCreatePost(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&req.Content, "content", "", "Post text")
	cmd.Flags().StringVar(&req.Crop, "crop", "", "Crop the post is about")
	cmd.Flags().StringVar(&req.ImageURL, "image-url", "", "Image URL")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *Cli) runCreatePost(ctx context.Context, req api.CreatePostRequest) error {
	post, err := c.service.CreatePost(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	if post.Offline {
		c.io.Printf("⏳ Post saved offline as %s, it will be published when online\n", post.ID)
		return nil
	}
	c.io.Printf("✓ Post published: %s\n", post.ID)
	return nil
}

func (c *Cli) newPostsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "List community posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runListPosts(cmd.Context())
		},
	}
}

func (c *Cli) runListPosts(ctx context.Context) error {
	posts, cached := c.service.GetPosts(ctx)

	c.io.Println("=== Community ===")
	if cached {
		c.io.Println("(showing saved copy, server not reachable)")
	}
	c.io.Println()

	if len(posts) == 0 {
		c.io.Println("No posts found.")
		return nil
	}

	for _, p := range posts {
		c.io.Printf("[%s] %s%s\n", p.ID, p.Title, offlineMark(p.Offline))
		if p.Crop != "" {
			c.io.Printf("  Crop:     %s\n", p.Crop)
		}
		if p.Content != "" {
			c.io.Printf("  %s\n", truncate(p.Content, 72))
		}
		c.io.Printf("  Likes: %d  Comments: %d  Posted: %s\n", p.Likes, len(p.Comments), formatTime(p.CreatedAt))
		c.io.Println()
	}
	c.io.Printf("Total: %d post(s)\n", len(posts))
	return nil
}

func (c *Cli) newLikeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a community post (requires a connection)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := c.service.LikePost(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to like post: %w", err)
			}
			c.io.Printf("✓ Liked %s (%d likes)\n", post.ID, post.Likes)
			return nil
		},
	}
}

func (c *Cli) newCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>...",
		Short: "Comment on a community post (requires a connection)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comment, err := c.service.CommentPost(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("failed to comment: %w", err)
			}
			c.io.Printf("✓ Comment added: %s\n", comment.ID)
			return nil
		},
	}
}
