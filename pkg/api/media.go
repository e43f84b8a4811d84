package api

import "time"

// IdempotencyHeader carries the capture checksum so the server can drop a
// repeated upload whose first response was lost.
const IdempotencyHeader = "Idempotency-Key"

// MediaUploadRequest представляет загрузку захваченного изображения или видео
type MediaUploadRequest struct {
	CapturedAt  time.Time      `json:"captured_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	MediaType   string         `json:"media_type"`   // image или video
	PayloadKind string         `json:"payload_kind"` // inline или reference
	Payload     string         `json:"payload"`      // data URL или ссылка
	Description string         `json:"description,omitempty"`
	Checksum    string         `json:"checksum,omitempty"` // blake2b-256 (hex)
}

// MediaUploadResponse представляет ответ на загрузку медиа
type MediaUploadResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"` // Duplicate запись с таким checksum уже была загружена
}
