package service

import (
	"context"
	"fmt"

	clientsync "github.com/iudanet/cropaid/internal/client/sync"
	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/pkg/api"
)

// RegisterActions binds every queued action type to its remote call
func RegisterActions(reg *clientsync.Registry, remote Remote) {
	reg.Register(models.ActionCreatePost, func(ctx context.Context, payload map[string]any) error {
		var req api.CreatePostRequest
		if err := fromPayload(payload, &req); err != nil {
			return err
		}
		_, err := remote.CreatePost(ctx, req)
		return err
	})

	reg.Register(models.ActionCreateTask, func(ctx context.Context, payload map[string]any) error {
		var req api.CreateTaskRequest
		if err := fromPayload(payload, &req); err != nil {
			return err
		}
		_, err := remote.CreateTask(ctx, req)
		return err
	})

	reg.Register(models.ActionToggleTask, func(ctx context.Context, payload map[string]any) error {
		ref, err := decodeTaskRef(payload)
		if err != nil {
			return err
		}
		_, err = remote.ToggleTask(ctx, ref.TaskID)
		return err
	})

	reg.Register(models.ActionDeleteTask, func(ctx context.Context, payload map[string]any) error {
		ref, err := decodeTaskRef(payload)
		if err != nil {
			return err
		}
		return remote.DeleteTask(ctx, ref.TaskID)
	})
}

func decodeTaskRef(payload map[string]any) (taskRef, error) {
	var ref taskRef
	if err := fromPayload(payload, &ref); err != nil {
		return ref, err
	}
	if ref.TaskID == "" {
		return ref, fmt.Errorf("taskId is missing in payload")
	}
	return ref, nil
}
