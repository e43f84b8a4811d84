package handlers

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
	"github.com/iudanet/cropaid/pkg/api"
)

// MaxMediaBody ограничение размера запроса загрузки медиа
const MaxMediaBody = 32 << 20

// MediaHandler принимает захваченные изображения и видео
type MediaHandler struct {
	logger  *slog.Logger
	storage storage.MediaStorage
	now     func() time.Time
}

// NewMediaHandler создает handler загрузки медиа
func NewMediaHandler(logger *slog.Logger, storage storage.MediaStorage) *MediaHandler {
	return &MediaHandler{
		logger:  logger,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload обрабатывает POST /api/v1/media
// Повторная загрузка с тем же checksum (тело или Idempotency-Key)
// возвращает ID первой загрузки с duplicate=true.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.MediaUploadRequest
	if err := decodeJSON(w, r, MaxMediaBody, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode media upload", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Checksum == "" {
		req.Checksum = r.Header.Get(api.IdempotencyHeader)
	}

	if err := validateUpload(&req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	metadata := []byte("{}")
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			sendError(h.logger, w, "invalid metadata", http.StatusBadRequest)
			return
		}
		metadata = raw
	}

	capturedAt := req.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = h.now()
	}

	media := &models.Media{
		CapturedAt:  capturedAt.UTC(),
		CreatedAt:   h.now(),
		ID:          uuid.New().String(),
		UserID:      userID,
		MediaType:   req.MediaType,
		PayloadKind: req.PayloadKind,
		Payload:     req.Payload,
		Description: req.Description,
		Checksum:    req.Checksum,
		Metadata:    string(metadata),
	}

	id, err := h.storage.SaveMedia(ctx, media)
	switch {
	case errors.Is(err, storage.ErrDuplicateMedia):
		h.logger.InfoContext(ctx, "duplicate media upload", slog.String("media_id", id), slog.String("user_id", userID))
		sendJSON(h.logger, w, api.MediaUploadResponse{ID: id, Duplicate: true}, http.StatusOK)
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to save media", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
	default:
		h.logger.InfoContext(ctx, "media uploaded",
			slog.String("media_id", id),
			slog.String("media_type", req.MediaType),
			slog.Int("payload_size", len(req.Payload)))
		sendJSON(h.logger, w, api.MediaUploadResponse{ID: id}, http.StatusCreated)
	}
}

var (
	errInvalidMediaType   = errors.New("media_type must be image or video")
	errInvalidPayloadKind = errors.New("payload_kind must be inline or reference")
	errEmptyPayload       = errors.New("payload is required")
	errInvalidDataURL     = errors.New("inline payload must be a base64 data URL")
	errChecksumMismatch   = errors.New("checksum does not match payload")
)

func validateUpload(req *api.MediaUploadRequest) error {
	switch models.MediaType(req.MediaType) {
	case models.MediaImage, models.MediaVideo:
	default:
		return errInvalidMediaType
	}

	if req.Payload == "" {
		return errEmptyPayload
	}

	switch models.PayloadKind(req.PayloadKind) {
	case models.PayloadReference:
		if req.Checksum != "" && req.Checksum != checksumOf([]byte(req.Payload)) {
			return errChecksumMismatch
		}
	case models.PayloadInline:
		content, err := decodeDataURL(req.Payload)
		if err != nil {
			return err
		}
		// Клиент считает checksum по содержимому, а если его нет, по самой строке payload
		if req.Checksum != "" && req.Checksum != checksumOf(content) && req.Checksum != checksumOf([]byte(req.Payload)) {
			return errChecksumMismatch
		}
	default:
		return errInvalidPayloadKind
	}
	return nil
}

// decodeDataURL разбирает "data:<mime>;base64,<data>"
func decodeDataURL(payload string) ([]byte, error) {
	if !strings.HasPrefix(payload, "data:") {
		return nil, errInvalidDataURL
	}
	_, data, ok := strings.Cut(payload, ";base64,")
	if !ok {
		return nil, errInvalidDataURL
	}
	content, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errInvalidDataURL
	}
	return content, nil
}

func checksumOf(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}
