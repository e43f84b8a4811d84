package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
)

// SaveMedia stores an upload. A repeated checksum of the same user returns
// the ID of the first upload together with storage.ErrDuplicateMedia.
func (s *Storage) SaveMedia(ctx context.Context, media *models.Media) (string, error) {
	var checksum sql.NullString
	if media.Checksum != "" {
		checksum = sql.NullString{String: media.Checksum, Valid: true}
	}

	query := `
		INSERT INTO media (id, user_id, media_type, payload_kind, payload, description, checksum, metadata, captured_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		media.ID,
		media.UserID,
		media.MediaType,
		media.PayloadKind,
		media.Payload,
		media.Description,
		checksum,
		media.Metadata,
		media.CapturedAt,
		media.CreatedAt,
	)
	if err == nil {
		return media.ID, nil
	}
	if !isUniqueViolation(err) || !checksum.Valid {
		return "", fmt.Errorf("failed to insert media: %w", err)
	}

	var existing string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM media WHERE user_id = ? AND checksum = ?`,
		media.UserID, media.Checksum,
	).Scan(&existing)
	if err != nil {
		return "", fmt.Errorf("failed to find duplicate media: %w", err)
	}

	return existing, storage.ErrDuplicateMedia
}

// GetMedia retrieves uploaded media of the user
func (s *Storage) GetMedia(ctx context.Context, userID, mediaID string) (*models.Media, error) {
	query := `
		SELECT id, user_id, media_type, payload_kind, payload, description, COALESCE(checksum, ''), metadata, captured_at, created_at
		FROM media
		WHERE id = ? AND user_id = ?
	`

	m := &models.Media{}
	err := s.db.QueryRowContext(ctx, query, mediaID, userID).Scan(
		&m.ID,
		&m.UserID,
		&m.MediaType,
		&m.PayloadKind,
		&m.Payload,
		&m.Description,
		&m.Checksum,
		&m.Metadata,
		&m.CapturedAt,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return m, nil
}
