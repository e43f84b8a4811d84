package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/cropaid/pkg/api"
)

const dueDateLayout = "2006-01-02"

func (c *Cli) newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage calendar tasks",
	}
	cmd.AddCommand(
		c.newTaskAddCommand(),
		c.newTaskListCommand(),
		c.newTaskToggleCommand(),
		c.newTaskDeleteCommand(),
	)
	return cmd
}

func (c *Cli) newTaskAddCommand() *cobra.Command {
	var req api.CreateTaskRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task (queued when offline)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.DueDate != "" {
				if _, err := time.Parse(dueDateLayout, req.DueDate); err != nil {
					return fmt.Errorf("due date must be YYYY-MM-DD: %w", err)
				}
			}
			return c.runAddTask(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&req.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&req.Crop, "crop", "", "Crop")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "Due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *Cli) runAddTask(ctx context.Context, req api.CreateTaskRequest) error {
	task, err := c.service.CreateTask(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	if task.Offline {
		c.io.Printf("⏳ Task saved offline as %s, it will be synced when online\n", task.ID)
		return nil
	}
	c.io.Printf("✓ Task added: %s\n", task.ID)
	return nil
}

func (c *Cli) newTaskListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List calendar tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runListTasks(cmd.Context())
		},
	}
}

func (c *Cli) runListTasks(ctx context.Context) error {
	tasks, cached := c.service.GetTasks(ctx)

	c.io.Println("=== Calendar ===")
	if cached {
		c.io.Println("(showing saved copy, server not reachable)")
	}
	c.io.Println()

	if len(tasks) == 0 {
		c.io.Println("No tasks found.")
		return nil
	}

	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		c.io.Printf("%s %-36s  %-10s  %s%s\n", check, t.ID, due, truncate(t.Title, 40), offlineMark(t.Offline))
	}
	c.io.Println()
	c.io.Printf("Total: %d task(s)\n", len(tasks))
	return nil
}

func (c *Cli) newTaskToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Toggle task completion (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.service.ToggleTask(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to toggle task: %w", err)
			}
			if task.Offline {
				c.io.Printf("⏳ Toggle of %s queued\n", task.ID)
				return nil
			}
			c.io.Printf("✓ Task %s completed: %t\n", task.ID, task.Completed)
			return nil
		},
	}
}

func (c *Cli) newTaskDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queued, err := c.service.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}
			if queued {
				c.io.Printf("⏳ Deletion of %s queued\n", args[0])
				return nil
			}
			c.io.Printf("✓ Task %s deleted\n", args[0])
			return nil
		},
	}
}
