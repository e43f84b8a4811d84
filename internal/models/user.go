package models

import "time"

// User представляет пользователя на сервере.
// Вход выполняется по номеру телефона и PIN-коду.
type User struct {
	CreatedAt   time.Time  `json:"created_at"`           // время создания
	LastLogin   *time.Time `json:"last_login,omitempty"` // время последнего входа
	ID          string     `json:"id"`                   // UUID пользователя
	PhoneNumber string     `json:"phone_number"`         // уникальный номер телефона
	PinHash     string     `json:"pin_hash"`             // argon2id хеш PIN-кода
	PinSalt     string     `json:"pin_salt"`             // base64 encoded salt
}

// Session is a refresh-token session of a phone identity. The access
// token of a rotated session is issued from these fields without a user lookup.
type Session struct {
	ExpiresAt   time.Time `json:"expires_at"`   // конец срока действия refresh token
	CreatedAt   time.Time `json:"created_at"`   // время выдачи
	Token       string    `json:"token"`        // случайное значение refresh token
	UserID      string    `json:"user_id"`      // владелец сеанса
	PhoneNumber string    `json:"phone_number"` // нормализованный номер на момент входа
}
