package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/cropaid/pkg/api"
)

// GetTasks возвращает задачи текущего пользователя
func (c *Client) GetTasks(ctx context.Context) ([]api.Task, error) {
	var tasks []api.Task
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/calendar", nil, &tasks); err != nil {
		return nil, fmt.Errorf("get tasks request failed: %w", err)
	}
	return tasks, nil
}

// CreateTask создает задачу
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.Task, error) {
	var task api.Task
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/calendar", req, &task); err != nil {
		return nil, fmt.Errorf("create task request failed: %w", err)
	}
	return &task, nil
}

// ToggleTask переключает признак выполнения задачи
func (c *Client) ToggleTask(ctx context.Context, taskID string) (*api.Task, error) {
	var task api.Task
	path := fmt.Sprintf("/api/v1/calendar/%s/toggle", url.PathEscape(taskID))
	if err := c.doRequest(ctx, http.MethodPut, path, nil, &task); err != nil {
		return nil, fmt.Errorf("toggle task request failed: %w", err)
	}
	return &task, nil
}

// DeleteTask удаляет задачу
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	path := fmt.Sprintf("/api/v1/calendar/%s", url.PathEscape(taskID))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete task request failed: %w", err)
	}
	return nil
}
