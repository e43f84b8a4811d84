package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this phone number already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrSessionNotFound indicates an unknown or already rotated refresh token
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates that the refresh token is past its expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrPostNotFound indicates that community post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrTaskNotFound indicates that calendar task was not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrMediaNotFound indicates that uploaded media was not found
	ErrMediaNotFound = errors.New("media not found")

	// ErrDuplicateMedia indicates that media with the same checksum was already stored
	ErrDuplicateMedia = errors.New("duplicate media")
)
