package service

import (
	"context"

	apiclient "github.com/iudanet/cropaid/internal/client/api"
	"github.com/iudanet/cropaid/internal/client/cache"
	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/pkg/api"
)

type taskRef struct {
	TaskID string `json:"taskId"`
}

func (s *Service) tasksKey() string {
	id := s.identity()
	if id.UserID == "" {
		return cache.CalendarTasksKey("guest")
	}
	return cache.CalendarTasksKey(id.UserID)
}

// GetTasks returns the user's calendar tasks. cached is true when the
// result did not come from the server.
func (s *Service) GetTasks(ctx context.Context) (tasks []api.Task, cached bool) {
	return readThrough(ctx, s, s.tasksKey(), s.remote.GetTasks)
}

// CreateTask creates a task or queues it
func (s *Service) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.Task, error) {
	if s.deferWrites() {
		return s.queueTask(ctx, req)
	}

	task, err := s.remote.CreateTask(ctx, req)
	if err != nil {
		if apiclient.IsUnreachable(err) {
			s.logger.Warn("Create task failed, queueing", "error", err)
			return s.queueTask(ctx, req)
		}
		return nil, err
	}
	return task, nil
}

func (s *Service) queueTask(ctx context.Context, req api.CreateTaskRequest) (*api.Task, error) {
	entry, err := s.enqueue(ctx, models.ActionCreateTask, req)
	if err != nil {
		return nil, err
	}
	return &api.Task{
		CreatedAt:   entry.CreatedAt,
		ID:          tempID(entry),
		UserID:      s.identity().UserID,
		Title:       req.Title,
		Description: req.Description,
		Crop:        req.Crop,
		DueDate:     req.DueDate,
		Offline:     true,
	}, nil
}

// ToggleTask flips the completed flag or queues the change
func (s *Service) ToggleTask(ctx context.Context, taskID string) (*api.Task, error) {
	queued := func() (*api.Task, error) {
		if _, err := s.enqueue(ctx, models.ActionToggleTask, taskRef{TaskID: taskID}); err != nil {
			return nil, err
		}
		return &api.Task{ID: taskID, UserID: s.identity().UserID, Offline: true}, nil
	}

	if s.deferWrites() {
		return queued()
	}

	task, err := s.remote.ToggleTask(ctx, taskID)
	if err != nil {
		if apiclient.IsUnreachable(err) {
			s.logger.Warn("Toggle task failed, queueing", "task_id", taskID, "error", err)
			return queued()
		}
		return nil, err
	}
	return task, nil
}

// DeleteTask deletes a task or queues the deletion. It reports whether the
// deletion was queued.
func (s *Service) DeleteTask(ctx context.Context, taskID string) (queued bool, err error) {
	enqueue := func() (bool, error) {
		if _, err := s.enqueue(ctx, models.ActionDeleteTask, taskRef{TaskID: taskID}); err != nil {
			return false, err
		}
		return true, nil
	}

	if s.deferWrites() {
		return enqueue()
	}

	if err := s.remote.DeleteTask(ctx, taskID); err != nil {
		if apiclient.IsUnreachable(err) {
			s.logger.Warn("Delete task failed, queueing", "task_id", taskID, "error", err)
			return enqueue()
		}
		return false, err
	}
	return false, nil
}
