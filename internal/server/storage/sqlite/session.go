package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
)

// CreateSession stores a session opened by login
func (s *Storage) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, phone_number, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.PhoneNumber,
		session.ExpiresAt.UTC(),
		session.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// RotateSession consumes token and stores next in one transaction. An
// expired session is removed as well, but nothing replaces it.
func (s *Storage) RotateSession(ctx context.Context, token string, next *models.Session, now time.Time) (*models.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT token, user_id, phone_number, expires_at, created_at
		FROM sessions
		WHERE token = ?
	`
	current, err := scanSession(tx.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return nil, fmt.Errorf("failed to consume session: %w", err)
	}

	expired := !now.Before(current.ExpiresAt)
	if !expired {
		next.UserID = current.UserID
		next.PhoneNumber = current.PhoneNumber

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sessions (token, user_id, phone_number, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, next.Token, next.UserID, next.PhoneNumber, next.ExpiresAt.UTC(), next.CreatedAt.UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to store rotated session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rotation: %w", err)
	}

	if expired {
		return current, storage.ErrSessionExpired
	}
	return current, nil
}

// RevokeSessions removes all sessions of a user
func (s *Storage) RevokeSessions(ctx context.Context, userID string) (int, error) {
	return s.deleteSessions(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
}

// PurgeExpiredSessions removes sessions expired at now
func (s *Storage) PurgeExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	// время хранится в UTC, сравнение строковое
	return s.deleteSessions(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
}

func (s *Storage) deleteSessions(ctx context.Context, query string, arg any) (int, error) {
	result, err := s.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	err := row.Scan(
		&session.Token,
		&session.UserID,
		&session.PhoneNumber,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}
