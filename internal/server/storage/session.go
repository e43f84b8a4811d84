package storage

import (
	"context"
	"time"

	"github.com/iudanet/cropaid/internal/models"
)

// SessionStorage persists refresh-token sessions. Each refresh token is
// single-use: a successful rotation consumes it.
type SessionStorage interface {
	// CreateSession stores a session opened by login
	CreateSession(ctx context.Context, session *models.Session) error

	// RotateSession consumes the session identified by token and stores next
	// in its place. next inherits UserID and PhoneNumber of the consumed
	// session. Returns ErrSessionNotFound for an unknown token and
	// ErrSessionExpired when the session expired at now; next is not stored
	// in either case.
	RotateSession(ctx context.Context, token string, next *models.Session, now time.Time) (*models.Session, error)

	// RevokeSessions removes all sessions of a user and returns their number
	RevokeSessions(ctx context.Context, userID string) (int, error)

	// PurgeExpiredSessions removes sessions expired at now
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int, error)
}
