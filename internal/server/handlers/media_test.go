package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/pkg/api"
)

func dataURL(content []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(content)
}

func uploadMedia(t *testing.T, h *MediaHandler, userID string, req api.MediaUploadRequest, idempotencyKey string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/media", bytes.NewReader(raw))
	if idempotencyKey != "" {
		r.Header.Set(api.IdempotencyHeader, idempotencyKey)
	}
	w := httptest.NewRecorder()
	asUser(userID, h.Upload)(w, r)
	return w
}

func decodeUpload(t *testing.T, w *httptest.ResponseRecorder) api.MediaUploadResponse {
	t.Helper()
	var resp api.MediaUploadResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestMediaHandler_Upload(t *testing.T) {
	handler := NewMediaHandler(setupTestLogger(), setupTestStore(t))
	content := []byte("\xff\xd8\xff leaf photo")

	req := api.MediaUploadRequest{
		CapturedAt:  time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
		Metadata:    map[string]any{"mimeType": "image/jpeg", "size": len(content)},
		MediaType:   "image",
		PayloadKind: "inline",
		Payload:     dataURL(content),
		Description: "leaf",
		Checksum:    checksumOf(content),
	}

	w := uploadMedia(t, handler, "farmer", req, "")
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeUpload(t, w)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Duplicate)

	t.Run("same checksum is a duplicate", func(t *testing.T) {
		w := uploadMedia(t, handler, "farmer", req, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeUpload(t, w)
		assert.True(t, resp.Duplicate)
		assert.Equal(t, first.ID, resp.ID)
	})

	t.Run("other user is not a duplicate", func(t *testing.T) {
		w := uploadMedia(t, handler, "neighbour", req, "")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotEqual(t, first.ID, decodeUpload(t, w).ID)
	})

	t.Run("idempotency header replaces missing checksum", func(t *testing.T) {
		noSum := req
		noSum.Checksum = ""
		w := uploadMedia(t, handler, "farmer", noSum, checksumOf(content))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, first.ID, decodeUpload(t, w).ID)
	})

	t.Run("without any checksum uploads are not deduplicated", func(t *testing.T) {
		noSum := req
		noSum.Checksum = ""
		for range 2 {
			w := uploadMedia(t, handler, "farmer", noSum, "")
			require.Equal(t, http.StatusCreated, w.Code)
		}
	})
}

func TestMediaHandler_UploadReference(t *testing.T) {
	handler := NewMediaHandler(setupTestLogger(), setupTestStore(t))
	payload := "file:///sdcard/DCIM/clip.mp4"

	w := uploadMedia(t, handler, "farmer", api.MediaUploadRequest{
		MediaType:   "video",
		PayloadKind: "reference",
		Payload:     payload,
		Checksum:    checksumOf([]byte(payload)),
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMediaHandler_UploadValidation(t *testing.T) {
	handler := NewMediaHandler(setupTestLogger(), setupTestStore(t))
	content := []byte("pixels")

	tests := []struct {
		name string
		req  api.MediaUploadRequest
	}{
		{name: "unknown media type", req: api.MediaUploadRequest{MediaType: "audio", PayloadKind: "inline", Payload: dataURL(content)}},
		{name: "unknown payload kind", req: api.MediaUploadRequest{MediaType: "image", PayloadKind: "blob", Payload: dataURL(content)}},
		{name: "empty payload", req: api.MediaUploadRequest{MediaType: "image", PayloadKind: "inline"}},
		{name: "not a data url", req: api.MediaUploadRequest{MediaType: "image", PayloadKind: "inline", Payload: "aGVsbG8="}},
		{name: "broken base64", req: api.MediaUploadRequest{MediaType: "image", PayloadKind: "inline", Payload: "data:image/png;base64,###"}},
		{name: "checksum mismatch", req: api.MediaUploadRequest{MediaType: "image", PayloadKind: "inline", Payload: dataURL(content), Checksum: checksumOf([]byte("other"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := uploadMedia(t, handler, "farmer", tt.req, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		w := uploadMedia(t, handler, "", api.MediaUploadRequest{MediaType: "image", PayloadKind: "inline", Payload: dataURL(content)}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDecodeDataURL(t *testing.T) {
	content, err := decodeDataURL("data:text/plain;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)

	_, err = decodeDataURL("data:text/plain,hello")
	assert.ErrorIs(t, err, errInvalidDataURL)
}
