package api

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"

	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/pkg/api"
)

// UploadCapture отправляет захваченное медиа на сервер. Повторная загрузка
// той же записи распознается сервером по Idempotency-Key.
func (c *Client) UploadCapture(ctx context.Context, record *models.CaptureRecord) error {
	checksum := record.Checksum
	if checksum == "" {
		sum := blake2b.Sum256([]byte(record.Payload))
		checksum = hex.EncodeToString(sum[:])
	}

	req := api.MediaUploadRequest{
		CapturedAt:  record.Timestamp,
		Metadata:    record.Metadata,
		MediaType:   string(record.MediaType),
		PayloadKind: string(record.PayloadKind),
		Payload:     record.Payload,
		Description: record.Description,
		Checksum:    checksum,
	}

	var resp api.MediaUploadResponse
	header := http.Header{api.IdempotencyHeader: []string{checksum}}
	if err := c.do(ctx, http.MethodPost, "/api/v1/media", req, &resp, header); err != nil {
		return fmt.Errorf("upload capture %s failed: %w", record.Ref(), err)
	}
	return nil
}
