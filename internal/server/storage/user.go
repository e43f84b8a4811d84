package storage

import (
	"context"
	"time"

	"github.com/iudanet/cropaid/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if phone number is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByPhone retrieves user by phone number
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}
