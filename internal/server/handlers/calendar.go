package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
	"github.com/iudanet/cropaid/pkg/api"
)

// DueDateLayout формат поля due_date
const DueDateLayout = "2006-01-02"

// CalendarHandler обрабатывает запросы календаря полевых работ.
// Все маршруты требуют авторизации: задачи принадлежат пользователю.
type CalendarHandler struct {
	logger  *slog.Logger
	storage storage.CalendarStorage
	now     func() time.Time
}

// NewCalendarHandler создает handler календаря
func NewCalendarHandler(logger *slog.Logger, storage storage.CalendarStorage) *CalendarHandler {
	return &CalendarHandler{
		logger:  logger,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListTasks обрабатывает GET /api/v1/calendar
func (h *CalendarHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tasks, err := h.storage.ListTasks(ctx, userID)
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	resp := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskToAPI(t))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// CreateTask обрабатывает POST /api/v1/calendar
func (h *CalendarHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateTaskRequest
	if err := decodeJSON(w, r, maxPostBody, &req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		sendError(h.logger, w, "title is required", http.StatusBadRequest)
		return
	}
	if req.DueDate != "" {
		if _, err := time.Parse(DueDateLayout, req.DueDate); err != nil {
			sendError(h.logger, w, "due_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Crop:        req.Crop,
		DueDate:     req.DueDate,
		CreatedAt:   h.now(),
	}

	if err := h.storage.CreateTask(ctx, task); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "task created", slog.String("task_id", task.ID), slog.String("user_id", userID))
	sendJSON(h.logger, w, taskToAPI(task), http.StatusCreated)
}

// ToggleTask обрабатывает PUT /api/v1/calendar/{id}/toggle
func (h *CalendarHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	task, err := h.storage.ToggleTask(ctx, userID, r.PathValue("id"))
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	sendJSON(h.logger, w, taskToAPI(task), http.StatusOK)
}

// DeleteTask обрабатывает DELETE /api/v1/calendar/{id}
func (h *CalendarHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.storage.DeleteTask(ctx, userID, r.PathValue("id")); err != nil {
		h.storageError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CalendarHandler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrTaskNotFound) {
		sendError(h.logger, w, "task not found", http.StatusNotFound)
		return
	}
	h.logger.ErrorContext(r.Context(), "calendar storage error", slog.Any("error", err))
	sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
}

func taskToAPI(t *models.Task) api.Task {
	return api.Task{
		CreatedAt:   t.CreatedAt,
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Crop:        t.Crop,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
}
