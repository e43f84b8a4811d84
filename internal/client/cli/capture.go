package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iudanet/cropaid/internal/models"
)

func (c *Cli) newCaptureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Store crop photos and videos for later upload",
	}
	cmd.AddCommand(
		c.newCaptureAddCommand(),
		c.newCaptureListCommand(),
		c.newCaptureDeleteCommand(),
		c.newCaptureClearCommand(),
	)
	return cmd
}

func (c *Cli) newCaptureAddCommand() *cobra.Command {
	var mediaType, description, crop string

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Save a photo or video locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAddCapture(cmd.Context(), args[0], models.MediaType(mediaType), description, crop)
		},
	}
	cmd.Flags().StringVar(&mediaType, "type", string(models.MediaImage), "Media type (image, video)")
	cmd.Flags().StringVar(&description, "description", "", "What the capture shows")
	cmd.Flags().StringVar(&crop, "crop", "", "Crop")
	return cmd
}

func (c *Cli) runAddCapture(ctx context.Context, path string, mediaType models.MediaType, description, crop string) error {
	switch mediaType {
	case models.MediaImage, models.MediaVideo:
	default:
		return fmt.Errorf("unknown media type %q", mediaType)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	metadata := map[string]any{"filename": filepath.Base(path)}
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		metadata["mimeType"] = mimeType
	}
	if description != "" {
		metadata["description"] = description
	}
	if crop != "" {
		metadata["crop"] = crop
	}

	ref, err := c.captures.SaveMedia(ctx, f, mediaType, metadata)
	if err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}

	c.io.Printf("✓ Capture saved: %s\n", ref)
	if ref.Origin == models.OriginFallback {
		c.io.Println("⚠️  Main database unavailable, capture was written to the fallback journal")
	}
	return nil
}

func (c *Cli) newCaptureListCommand() *cobra.Command {
	var unsyncedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored captures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runListCaptures(cmd.Context(), unsyncedOnly)
		},
	}
	cmd.Flags().BoolVar(&unsyncedOnly, "unsynced", false, "Show only captures waiting for upload")
	return cmd
}

func (c *Cli) runListCaptures(ctx context.Context, unsyncedOnly bool) error {
	read := c.captures.GetAllCaptures
	if unsyncedOnly {
		read = c.captures.GetUnsyncedCaptures
	}
	records, err := read(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Captures ===")
	c.io.Println()
	if len(records) == 0 {
		c.io.Println("No captures found.")
		return nil
	}

	for _, r := range records {
		state := "pending"
		if r.Synced {
			state = "synced"
		} else if r.SyncAttempts > 0 {
			state = fmt.Sprintf("pending, %d failed attempt(s)", r.SyncAttempts)
		}
		c.io.Printf("%-14s %-6s %s  %8d B  %s", r.Ref(), r.MediaType, formatTime(r.Timestamp), metadataSize(r.Metadata), state)
		if r.Description != "" {
			c.io.Printf("  %s", truncate(r.Description, 40))
		}
		c.io.Println()
	}
	c.io.Println()
	c.io.Printf("Total: %d capture(s)\n", len(records))
	return nil
}

func (c *Cli) newCaptureDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a capture, e.g. primary:3 or fallback:1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := models.ParseCaptureRef(args[0])
			if err != nil {
				return err
			}
			if err := c.captures.DeleteCapture(cmd.Context(), ref); err != nil {
				return err
			}
			c.io.Printf("✓ Capture %s deleted\n", ref)
			return nil
		},
	}
}

func (c *Cli) newCaptureClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all captures from both stores",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				answer, err := c.io.ReadInput("Delete all captures, including unsynced ones? [y/N]: ")
				if err != nil {
					return err
				}
				if answer != "y" && answer != "Y" {
					c.io.Println("Aborted")
					return nil
				}
			}
			if err := c.captures.ClearAll(cmd.Context()); err != nil {
				return err
			}
			c.io.Println("✓ All captures deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
