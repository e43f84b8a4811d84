package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/pkg/api"
)

func calendarMux(h *CalendarHandler, userID string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/calendar", asUser(userID, h.ListTasks))
	mux.HandleFunc("POST /api/v1/calendar", asUser(userID, h.CreateTask))
	mux.HandleFunc("PUT /api/v1/calendar/{id}/toggle", asUser(userID, h.ToggleTask))
	mux.HandleFunc("DELETE /api/v1/calendar/{id}", asUser(userID, h.DeleteTask))
	return mux
}

func TestCalendarHandler_TaskLifecycle(t *testing.T) {
	handler := NewCalendarHandler(setupTestLogger(), setupTestStore(t))
	mux := calendarMux(handler, "farmer")

	w := doJSON(t, mux, http.MethodPost, "/api/v1/calendar", api.CreateTaskRequest{
		Title:   "Sow paddy",
		Crop:    "rice",
		DueDate: "2026-06-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var task api.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
	assert.Equal(t, "farmer", task.UserID)
	assert.Equal(t, "2026-06-15", task.DueDate)
	assert.False(t, task.Completed)

	w = doJSON(t, mux, http.MethodPut, "/api/v1/calendar/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var toggled api.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&toggled))
	assert.True(t, toggled.Completed)

	w = doJSON(t, mux, http.MethodGet, "/api/v1/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []api.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tasks))
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	w = doJSON(t, mux, http.MethodDelete, "/api/v1/calendar/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, mux, http.MethodDelete, "/api/v1/calendar/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarHandler_TasksAreScopedToUser(t *testing.T) {
	handler := NewCalendarHandler(setupTestLogger(), setupTestStore(t))
	owner := calendarMux(handler, "owner")
	other := calendarMux(handler, "other")

	w := doJSON(t, owner, http.MethodPost, "/api/v1/calendar", api.CreateTaskRequest{Title: "Irrigate"})
	require.Equal(t, http.StatusCreated, w.Code)

	var task api.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&task))

	w = doJSON(t, other, http.MethodGet, "/api/v1/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	assert.Equal(t, http.StatusNotFound, doJSON(t, other, http.MethodPut, "/api/v1/calendar/"+task.ID+"/toggle", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, other, http.MethodDelete, "/api/v1/calendar/"+task.ID, nil).Code)
}

func TestCalendarHandler_CreateValidation(t *testing.T) {
	handler := NewCalendarHandler(setupTestLogger(), setupTestStore(t))
	mux := calendarMux(handler, "farmer")

	tests := []struct {
		name string
		req  api.CreateTaskRequest
	}{
		{name: "empty title", req: api.CreateTaskRequest{Title: " "}},
		{name: "bad due date", req: api.CreateTaskRequest{Title: "Harvest", DueDate: "15/06/2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, mux, http.MethodPost, "/api/v1/calendar", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		w := doJSON(t, calendarMux(handler, ""), http.MethodGet, "/api/v1/calendar", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
