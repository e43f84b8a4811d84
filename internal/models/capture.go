package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MediaType тип захваченного медиа.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// StorageOrigin указывает, в каком хранилище лежит запись захвата.
type StorageOrigin string

const (
	// OriginPrimary indexed durable store (bbolt)
	OriginPrimary StorageOrigin = "primary"
	// OriginFallback append-only secondary store, used when the primary write failed
	OriginFallback StorageOrigin = "fallback"
)

// PayloadKind describes how the media content is carried by the record.
type PayloadKind string

const (
	// PayloadInline data URL with the full encoded content
	PayloadInline PayloadKind = "inline"
	// PayloadReference pointer to content outside the record (encoding failed)
	PayloadReference PayloadKind = "reference"
)

// CaptureRef identifies a capture across both storage tiers.
type CaptureRef struct {
	Origin StorageOrigin `json:"origin"`
	ID     uint64        `json:"id"`
}

// String formats the reference as "origin:id".
func (r CaptureRef) String() string {
	return string(r.Origin) + ":" + strconv.FormatUint(r.ID, 10)
}

// ParseCaptureRef parses the "origin:id" form produced by CaptureRef.String.
// A bare number is treated as a primary id.
func ParseCaptureRef(s string) (CaptureRef, error) {
	origin, idStr, found := strings.Cut(s, ":")
	if !found {
		idStr = origin
		origin = string(OriginPrimary)
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return CaptureRef{}, fmt.Errorf("invalid capture id %q: %w", s, err)
	}

	switch StorageOrigin(origin) {
	case OriginPrimary, OriginFallback:
	default:
		return CaptureRef{}, fmt.Errorf("unknown capture origin %q", origin)
	}

	return CaptureRef{Origin: StorageOrigin(origin), ID: id}, nil
}

// CaptureRecord представляет захваченное изображение или видео.
// Payload самодостаточен (data URL), чтобы запись не зависела от
// времени жизни исходного файла.
type CaptureRecord struct {
	Timestamp    time.Time      `json:"timestamp"`           // Timestamp время создания записи
	SyncedAt     *time.Time     `json:"synced_at,omitempty"` // SyncedAt устанавливается вместе с Synced
	Metadata     map[string]any `json:"metadata"`            // Metadata размер, mime-type, показания сенсоров и т.п.
	MediaType    MediaType      `json:"media_type"`
	Origin       StorageOrigin  `json:"origin"`
	PayloadKind  PayloadKind    `json:"payload_kind"`
	Payload      string         `json:"payload"`
	Thumbnail    string         `json:"thumbnail,omitempty"`
	Description  string         `json:"description,omitempty"`
	Checksum     string         `json:"checksum,omitempty"` // Checksum blake2b-256 исходного содержимого (hex)
	ID           uint64         `json:"id"`
	SyncAttempts int            `json:"sync_attempts"`
	Synced       bool           `json:"synced"`
}

// Ref returns the cross-tier reference of the record.
func (c *CaptureRecord) Ref() CaptureRef {
	origin := c.Origin
	if origin == "" {
		origin = OriginPrimary
	}
	return CaptureRef{Origin: origin, ID: c.ID}
}

// RecordID returns the store-assigned identifier.
func (c *CaptureRecord) RecordID() uint64 { return c.ID }

// SetRecordID is called by the store when the record is first persisted.
func (c *CaptureRecord) SetRecordID(id uint64) { c.ID = id }

// IndexKey indexes captures by their synced flag.
func (c *CaptureRecord) IndexKey() string {
	if c.Synced {
		return "synced"
	}
	return "unsynced"
}

// MarkSynced sets the synced flag once; repeated calls keep the first SyncedAt.
func (c *CaptureRecord) MarkSynced(at time.Time) bool {
	if c.Synced {
		return false
	}
	c.Synced = true
	c.SyncedAt = &at
	return true
}
