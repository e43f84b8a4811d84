package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/pkg/api"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		db          Pinger
		name        string
		version     string
		wantStatus  int
		wantBody    string
		wantVersion string
	}{
		{name: "no database check", version: "", wantStatus: http.StatusOK, wantBody: "ok", wantVersion: "dev"},
		{
			name:        "database available",
			db:          pingerFunc(func(context.Context) error { return nil }),
			version:     "1.2.0",
			wantStatus:  http.StatusOK,
			wantBody:    "ok",
			wantVersion: "1.2.0",
		},
		{
			name:        "database down",
			db:          pingerFunc(func(context.Context) error { return errors.New("closed") }),
			version:     "1.2.0",
			wantStatus:  http.StatusServiceUnavailable,
			wantBody:    "unavailable",
			wantVersion: "1.2.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(setupTestLogger(), tt.db, tt.version)

			w := httptest.NewRecorder()
			handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp api.HealthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantBody, resp.Status)
			assert.Equal(t, tt.wantVersion, resp.Version)
		})
	}
}
