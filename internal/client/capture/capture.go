// Package capture manages locally captured media. Records go to the primary
// indexed store; when that write fails the whole record is written to the
// fallback journal instead, so a capture is never silently dropped.
package capture

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/cropaid/internal/client/events"
	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

// Store is the capture service used by camera/recorder callers and by the
// reconciler. It is safe for concurrent use if the underlying stores are.
type Store struct {
	primary  storage.CaptureStorage
	fallback storage.CaptureStorage
	events   *events.Bus
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates a capture store. fallback may be nil, in which case a
// failed primary write is returned to the caller.
func NewStore(primary, fallback storage.CaptureStorage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		primary:  primary,
		fallback: fallback,
		events:   events.NewBus(logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddListener registers a callback for capture and capture-sync events.
// The returned function unregisters it.
func (s *Store) AddListener(fn events.Listener) func() {
	return s.events.Subscribe(fn)
}

// Notify publishes an event to the store's listeners
func (s *Store) Notify(name events.Name, data map[string]any) {
	s.events.Publish(name, data)
}

// SaveCapture persists record and returns its reference. On primary failure
// the record is written to the fallback store in full.
func (s *Store) SaveCapture(ctx context.Context, record *models.CaptureRecord) (models.CaptureRef, error) {
	if record == nil {
		return models.CaptureRef{}, fmt.Errorf("capture record is nil")
	}
	s.normalize(record)

	var primaryErr error
	if s.primary != nil {
		rec := *record
		_, err := s.primary.AddCapture(ctx, &rec)
		if err == nil {
			*record = rec
			return s.saved(record), nil
		}
		primaryErr = err
		s.logger.Warn("Primary capture store failed, using fallback", "error", err)
	} else {
		primaryErr = errors.New("primary capture store not configured")
	}

	if s.fallback == nil {
		return models.CaptureRef{}, fmt.Errorf("failed to save capture: %w", primaryErr)
	}

	rec := *record
	rec.ID = 0
	if _, err := s.fallback.AddCapture(ctx, &rec); err != nil {
		s.logger.Error("Fallback capture store failed", "error", err)
		return models.CaptureRef{}, fmt.Errorf("failed to save capture: %w", errors.Join(primaryErr, err))
	}
	*record = rec

	s.logger.Info("Capture saved to fallback store", "capture", record.Ref().String())
	return s.saved(record), nil
}

func (s *Store) saved(record *models.CaptureRecord) models.CaptureRef {
	ref := record.Ref()
	s.logger.Info("Capture saved", "capture", ref.String(), "media_type", record.MediaType)
	s.events.Publish(events.CaptureSaved, map[string]any{
		"id":         ref.String(),
		"media_type": string(record.MediaType),
		"origin":     string(ref.Origin),
		"timestamp":  record.Timestamp,
	})
	return ref
}

// normalize заполняет значения по умолчанию для новой записи
func (s *Store) normalize(record *models.CaptureRecord) {
	if record.MediaType == "" {
		record.MediaType = models.MediaImage
	}
	if record.Metadata == nil {
		record.Metadata = map[string]any{}
	}
	if record.PayloadKind == "" {
		record.PayloadKind = models.PayloadInline
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = s.now()
	}
	record.Synced = false
	record.SyncedAt = nil
	record.SyncAttempts = 0
}

// SaveMedia reads blob, encodes it as a self-contained data URL and saves
// it. If the content cannot be read, a reference payload is stored instead
// and the record is flagged with metadata "fallback": true.
func (s *Store) SaveMedia(ctx context.Context, blob io.Reader, mediaType models.MediaType, metadata map[string]any) (models.CaptureRef, error) {
	meta := make(map[string]any, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}

	record := &models.CaptureRecord{MediaType: mediaType, Metadata: meta}
	record.Description, _ = meta["description"].(string)

	content, err := io.ReadAll(blob)
	if err != nil {
		s.logger.Error("Failed to encode media, storing reference", "error", err)
		record.PayloadKind = models.PayloadReference
		record.Payload = referenceFor(blob)
		meta["fallback"] = true
		return s.SaveCapture(ctx, record)
	}

	mimeType, _ := meta["mimeType"].(string)
	if mimeType == "" {
		mimeType = http.DetectContentType(content)
	}

	sum := blake2b.Sum256(content)

	record.PayloadKind = models.PayloadInline
	record.Payload = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
	record.Checksum = hex.EncodeToString(sum[:])
	meta["size"] = len(content)
	meta["mimeType"] = mimeType
	meta["savedAt"] = s.now().Format(time.RFC3339)

	return s.SaveCapture(ctx, record)
}

// referenceFor builds a pointer to content that could not be inlined
func referenceFor(blob io.Reader) string {
	if named, ok := blob.(interface{ Name() string }); ok {
		if abs, err := filepath.Abs(named.Name()); err == nil {
			return "file://" + abs
		}
		return "file://" + named.Name()
	}
	return "blob:" + uuid.New().String()
}

func (s *Store) storeFor(origin models.StorageOrigin) (storage.CaptureStorage, error) {
	switch origin {
	case models.OriginPrimary, "":
		if s.primary == nil {
			return nil, fmt.Errorf("primary capture store not configured")
		}
		return s.primary, nil
	case models.OriginFallback:
		if s.fallback == nil {
			return nil, fmt.Errorf("fallback capture store not configured")
		}
		return s.fallback, nil
	default:
		return nil, fmt.Errorf("unknown capture origin %q", origin)
	}
}

// collect reads from both tiers. A failing tier is logged and skipped;
// an error is returned only when every configured tier fails.
func (s *Store) collect(ctx context.Context, read func(storage.CaptureStorage) ([]*models.CaptureRecord, error)) ([]*models.CaptureRecord, error) {
	var (
		records    []*models.CaptureRecord
		errs       []error
		configured int
	)
	tiers := []struct {
		st     storage.CaptureStorage
		origin models.StorageOrigin
	}{
		{s.primary, models.OriginPrimary},
		{s.fallback, models.OriginFallback},
	}
	for _, tier := range tiers {
		if tier.st == nil {
			continue
		}
		configured++
		recs, err := read(tier.st)
		if err != nil {
			// Записи из другого уровня должны остаться доступны
			s.logger.Warn("Capture store tier unavailable", "origin", tier.origin, "error", err)
			errs = append(errs, err)
			continue
		}
		records = append(records, recs...)
	}
	if configured > 0 && len(errs) == configured {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// GetAllCaptures returns captures from both tiers ordered by capture time
func (s *Store) GetAllCaptures(ctx context.Context) ([]*models.CaptureRecord, error) {
	records, err := s.collect(ctx, func(st storage.CaptureStorage) ([]*models.CaptureRecord, error) {
		return st.GetAllCaptures(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get captures: %w", err)
	}
	return records, nil
}

// GetUnsyncedCaptures returns captures with Synced == false from both tiers
func (s *Store) GetUnsyncedCaptures(ctx context.Context) ([]*models.CaptureRecord, error) {
	records, err := s.collect(ctx, func(st storage.CaptureStorage) ([]*models.CaptureRecord, error) {
		return st.GetUnsyncedCaptures(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get unsynced captures: %w", err)
	}
	return records, nil
}

// GetCapture returns a single capture
func (s *Store) GetCapture(ctx context.Context, ref models.CaptureRef) (*models.CaptureRecord, error) {
	st, err := s.storeFor(ref.Origin)
	if err != nil {
		return nil, err
	}
	return st.GetCapture(ctx, ref.ID)
}

// DeleteCapture removes a capture and notifies listeners
func (s *Store) DeleteCapture(ctx context.Context, ref models.CaptureRef) error {
	st, err := s.storeFor(ref.Origin)
	if err != nil {
		return err
	}
	if err := st.DeleteCapture(ctx, ref.ID); err != nil {
		return fmt.Errorf("failed to delete capture %s: %w", ref, err)
	}

	s.events.Publish(events.CaptureDeleted, map[string]any{"id": ref.String()})
	return nil
}

// MarkSynced flags the capture as uploaded; re-marking is a no-op
func (s *Store) MarkSynced(ctx context.Context, ref models.CaptureRef) error {
	st, err := s.storeFor(ref.Origin)
	if err != nil {
		return err
	}
	return st.MarkCaptureSynced(ctx, ref.ID, s.now())
}

// RecordSyncFailure increments the capture's attempt counter
func (s *Store) RecordSyncFailure(ctx context.Context, ref models.CaptureRef) error {
	st, err := s.storeFor(ref.Origin)
	if err != nil {
		return err
	}
	return st.IncrementSyncAttempts(ctx, ref.ID)
}

// PendingSyncCount returns the number of captures waiting for upload
func (s *Store) PendingSyncCount(ctx context.Context) (int, error) {
	unsynced, err := s.GetUnsyncedCaptures(ctx)
	if err != nil {
		return 0, err
	}
	return len(unsynced), nil
}

// ClearAll removes every capture from both tiers
func (s *Store) ClearAll(ctx context.Context) error {
	for _, st := range []storage.CaptureStorage{s.primary, s.fallback} {
		if st == nil {
			continue
		}
		if err := st.ClearCaptures(ctx); err != nil {
			return fmt.Errorf("failed to clear captures: %w", err)
		}
	}
	s.logger.Info("All captures cleared")
	return nil
}
