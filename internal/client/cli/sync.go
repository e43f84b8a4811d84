package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	gosync "sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/cropaid/internal/client/connectivity"
	"github.com/iudanet/cropaid/internal/client/events"
	"github.com/iudanet/cropaid/internal/models"
)

func (c *Cli) newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued actions and unsynced captures to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd.Context())
		},
	}
}

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if !c.monitor.IsOnline() {
		pending, err := c.store.PendingCount(ctx)
		if err != nil {
			return fmt.Errorf("failed to get pending count: %w", err)
		}
		c.io.Printf("Server is not reachable. %d action(s) stay queued.\n", pending)
		return nil
	}

	c.io.Println("Starting synchronization with server...")

	queued, qErr := c.reconciler.DrainActionQueue(ctx)
	captured, cErr := c.reconciler.DrainCaptures(ctx)

	c.io.Println()
	c.io.Printf("Actions sent:      %d of %d\n", queued.Succeeded, queued.Total)
	if queued.Failed > 0 {
		c.io.Printf("Actions failed:    %d (will retry)\n", queued.Failed)
	}
	if queued.Abandoned > 0 {
		c.io.Printf("Actions abandoned: %d\n", queued.Abandoned)
	}
	if queued.Dropped > 0 {
		c.io.Printf("Unknown actions dropped: %d\n", queued.Dropped)
	}
	c.io.Printf("Captures uploaded: %d of %d\n", captured.Succeeded, captured.Total)
	if captured.Failed > 0 {
		c.io.Printf("Captures failed:   %d (will retry)\n", captured.Failed)
	}

	if err := errors.Join(qErr, cErr); err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	if queued.Failed == 0 && captured.Failed == 0 {
		c.io.Println()
		c.io.Println("✓ Synchronization completed successfully!")
	}
	return nil
}

func (c *Cli) newQueueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show actions waiting to be sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQueue(cmd.Context())
		},
	}
}

func (c *Cli) runQueue(ctx context.Context) error {
	pending, err := c.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	abandoned, err := c.store.ListAbandoned(ctx)
	if err != nil {
		return fmt.Errorf("failed to list abandoned actions: %w", err)
	}

	c.io.Println("=== Action queue ===")
	c.io.Println()
	if len(pending) == 0 && len(abandoned) == 0 {
		c.io.Println("Queue is empty.")
		return nil
	}

	for _, e := range append(pending, abandoned...) {
		c.io.Printf("#%-5d %-12s %-9s attempts=%d  %s  %s\n",
			e.ID, e.Type, e.Status, e.Attempts, formatTime(e.CreatedAt), describeEntry(e))
	}
	c.io.Println()
	c.io.Printf("Pending: %d  Abandoned: %d\n", len(pending), len(abandoned))
	return nil
}

// describeEntry возвращает краткое описание действия для вывода
func describeEntry(e *models.QueueEntry) string {
	if title := e.PayloadString("title"); title != "" {
		return truncate(title, 40)
	}
	if id := e.PayloadString("taskId"); id != "" {
		return "task " + id
	}
	return ""
}

func (c *Cli) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay running and sync whenever the server becomes reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.runWatch(ctx)
		},
	}
}

func (c *Cli) runWatch(ctx context.Context) error {
	var mu gosync.Mutex
	printf := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		c.io.Printf(format, a...)
	}

	unsubscribe := []func(){
		c.monitor.Subscribe(func(state connectivity.State) {
			printf("● %s\n", state)
		}),
		c.reconciler.Subscribe(func(e events.Event) {
			printf("✓ Queue synced: %v sent, %v failed\n", e.Data["synced"], e.Data["failed"])
		}),
		c.captures.AddListener(func(e events.Event) {
			switch e.Name {
			case events.SyncStarted:
				printf("Uploading %v capture(s)...\n", e.Data["total"])
			case events.SyncCompleted:
				printf("✓ Captures uploaded: %v, failed: %v\n", e.Data["synced"], e.Data["failed"])
			case events.SyncError:
				printf("⚠️  Capture sync error: %v\n", e.Data["error"])
			}
		}),
		c.reconciler.Attach(ctx, c.monitor),
	}
	defer func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}()

	printf("Watching %s (%s). Press Ctrl+C to stop.\n", c.cfg.Server, c.connectionLabel())

	// Первый проход при запуске, дальше синхронизация по переходу в online
	if err := c.reconciler.Start(ctx); err != nil {
		printf("⚠️  Initial sync failed: %v\n", err)
	}

	if c.offline {
		<-ctx.Done()
	} else {
		c.prober.Run(ctx)
	}

	c.reconciler.Wait()
	printf("Stopped.\n")
	return nil
}
