package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/cropaid/internal/crypto"
	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage"
	"github.com/iudanet/cropaid/internal/validation"
	"github.com/iudanet/cropaid/pkg/api"
)

const maxAuthBody = 4 << 10

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	sessions    storage.SessionStorage
	jwtConfig   JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, sessions storage.SessionStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		sessions:    sessions,
		jwtConfig:   jwtConfig,
	}
}

// Login обрабатывает POST /api/v1/auth/login
// Вход по номеру телефона и PIN-коду. Неизвестный номер регистрируется
// с переданным PIN-кодом.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, maxAuthBody, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	phone := validation.NormalizePhone(req.PhoneNumber)
	if err := validation.ValidatePhone(phone); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePin(req.Pin); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByPhone(ctx, phone)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		user, err = h.register(ctx, phone, req.Pin)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	default:
		if err := crypto.VerifyPin(req.Pin, user.PinHash, user.PinSalt); err != nil {
			h.logger.WarnContext(ctx, "login failed: invalid pin", slog.String("user_id", user.ID))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}

	resp, err := h.openSession(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Обновляем last_login
	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// register создает пользователя при первом входе
func (h *AuthHandler) register(ctx context.Context, phone, pin string) (*models.User, error) {
	hash, salt, err := crypto.HashPin(pin)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          uuid.New().String(),
		PhoneNumber: phone,
		PinHash:     hash,
		PinSalt:     salt,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, err
		}
		// Параллельный вход с тем же номером успел создать пользователя
		existing, gerr := h.userStorage.GetUserByPhone(ctx, phone)
		if gerr != nil {
			return nil, gerr
		}
		if err := crypto.VerifyPin(pin, existing.PinHash, existing.PinSalt); err != nil {
			return nil, err
		}
		return existing, nil
	}

	h.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return user, nil
}

// newSession генерирует refresh token для сеанса без владельца
func (h *AuthHandler) newSession() (*models.Session, error) {
	token, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// openSession сохраняет новый сеанс пользователя и выдает пару токенов
func (h *AuthHandler) openSession(ctx context.Context, user *models.User) (*api.TokenResponse, error) {
	session, err := h.newSession()
	if err != nil {
		return nil, err
	}
	session.UserID = user.ID
	session.PhoneNumber = user.PhoneNumber

	if err := h.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return h.tokenResponse(session)
}

// tokenResponse выдает access token для идентичности сеанса
func (h *AuthHandler) tokenResponse(session *models.Session) (*api.TokenResponse, error) {
	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, session.UserID, session.PhoneNumber)
	if err != nil {
		return nil, err
	}

	return &api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: session.Token,
		UserID:       session.UserID,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Refresh token из заголовка Authorization одноразовый: сеанс заменяется
// новым, access token выдается по номеру телефона из сеанса.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, ok := bearerToken(r)
	if !ok {
		sendError(h.logger, w, "refresh token is required", http.StatusUnauthorized)
		return
	}

	next, err := h.newSession()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = h.sessions.RotateSession(ctx, refreshToken, next, time.Now().UTC())
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		h.logger.WarnContext(ctx, "refresh token not found")
		sendError(h.logger, w, "invalid refresh token", http.StatusUnauthorized)
		return
	case errors.Is(err, storage.ErrSessionExpired):
		h.logger.WarnContext(ctx, "refresh token expired")
		sendError(h.logger, w, "refresh token expired", http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to rotate session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp, err := h.tokenResponse(next)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue access token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "session rotated", slog.String("user_id", next.UserID))
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Завершает все сеансы пользователя. Вызывается за AuthMiddleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	revoked, err := h.sessions.RevokeSessions(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke sessions", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out successfully",
		slog.String("user_id", userID),
		slog.Int("sessions_revoked", revoked))

	w.WriteHeader(http.StatusNoContent)
}
