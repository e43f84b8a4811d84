// Package auth manages the client session: phone and PIN login, the stored
// access token and the identity seen by the application services.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/cropaid/internal/client/service"
	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/validation"
	"github.com/iudanet/cropaid/pkg/api"
)

// Client is the part of the API client used for authentication
type Client interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Logout(ctx context.Context) error
	SetAccessToken(token string)
}

// Service предоставляет функции авторизации и хранит текущую сессию
type Service struct {
	client  Client
	store   storage.AuthStorage
	logger  *slog.Logger
	now     func() time.Time
	current *storage.AuthData
	mu      sync.RWMutex
	guest   bool
}

// NewService creates the session service. With guest set the stored session
// is ignored and every write is deferred to the queue.
func NewService(client Client, store storage.AuthStorage, guest bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
		guest:  guest,
	}
}

// Login validates the credentials, authenticates against the server and
// stores the session. The server creates the account on first login.
func (s *Service) Login(ctx context.Context, phone, pin string) (*storage.AuthData, error) {
	phone = validation.NormalizePhone(phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, fmt.Errorf("invalid phone number: %w", err)
	}
	if err := validation.ValidatePin(pin); err != nil {
		return nil, fmt.Errorf("invalid pin: %w", err)
	}

	resp, err := s.client.Login(ctx, api.LoginRequest{PhoneNumber: phone, Pin: pin})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	data := &storage.AuthData{
		UserID:       resp.UserID,
		PhoneNumber:  phone,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.now().Unix() + resp.ExpiresIn,
	}
	if err := s.store.SaveAuth(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	s.setCurrent(data)
	s.logger.Info("Logged in", "user_id", data.UserID)
	return data, nil
}

// Restore loads the stored session and attaches its token to the API client
func (s *Service) Restore(ctx context.Context) error {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load auth data: %w", err)
	}

	s.setCurrent(data)
	return nil
}

// RefreshIfExpired exchanges the refresh token for a new access token when
// the current one has expired. On failure the old session is kept and
// requests will fail with 401 until the next login.
func (s *Service) RefreshIfExpired(ctx context.Context) error {
	current := s.Current()
	if current == nil || current.RefreshToken == "" || !s.Expired() {
		return nil
	}

	refreshed, err := s.refresh(ctx, current)
	if err != nil {
		s.logger.Warn("Failed to refresh session", "error", err)
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	s.setCurrent(refreshed)
	return nil
}

func (s *Service) refresh(ctx context.Context, data *storage.AuthData) (*storage.AuthData, error) {
	resp, err := s.client.Refresh(ctx, data.RefreshToken)
	if err != nil {
		return nil, err
	}

	updated := *data
	updated.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		updated.RefreshToken = resp.RefreshToken
	}
	updated.ExpiresAt = s.now().Unix() + resp.ExpiresIn

	if err := s.store.SaveAuth(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save refreshed session: %w", err)
	}
	return &updated, nil
}

// Logout revokes the session on the server (best effort) and always
// removes the local copy.
func (s *Service) Logout(ctx context.Context) error {
	if s.Current() != nil {
		if err := s.client.Logout(ctx); err != nil {
			// Сервер может быть недоступен, локальную сессию удаляем в любом случае
			s.logger.Warn("Failed to logout on server", "error", err)
		}
	}

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}

	s.setCurrent(nil)
	return nil
}

func (s *Service) setCurrent(data *storage.AuthData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = data
	if data == nil {
		s.client.SetAccessToken("")
		return
	}
	s.client.SetAccessToken(data.AccessToken)
}

// Current returns the active session or nil
func (s *Service) Current() *storage.AuthData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Identity reports who is using the client. Without a session, or in guest
// mode, the user is a guest.
func (s *Service) Identity() service.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.guest || s.current == nil {
		return service.Identity{Guest: true}
	}
	return service.Identity{UserID: s.current.UserID}
}

// Expired reports whether the active access token is past its expiry
func (s *Service) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.ExpiresAt > 0 && s.now().Unix() >= s.current.ExpiresAt
}
