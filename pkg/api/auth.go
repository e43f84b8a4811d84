package api

// LoginRequest представляет запрос на аутентификацию по телефону и PIN-коду.
// Если пользователя с таким номером нет, он создается.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"` // номер телефона в формате E.164
	Pin         string `json:"pin"`          // PIN-код из 4-8 цифр
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // refresh token
	UserID       string `json:"user_id"`       // UUID пользователя
	ExpiresIn    int64  `json:"expires_in"`    // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
