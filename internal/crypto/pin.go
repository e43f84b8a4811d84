// Package crypto hashes login PINs for storage on the server.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// Argon2KeyLen - длина выходного ключа в байтах
	Argon2KeyLen = 32
	// SaltSize - размер соли в байтах
	SaltSize = 32
)

// ErrPinMismatch is returned by VerifyPin for a wrong PIN
var ErrPinMismatch = errors.New("pin does not match")

// GenerateSalt генерирует криптографически случайную соль
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// HashPin derives an Argon2id hash of pin with a fresh salt. Both values
// are returned base64-encoded.
func HashPin(pin string) (hash, salt string, err error) {
	if pin == "" {
		return "", "", fmt.Errorf("pin cannot be empty")
	}

	saltBytes, err := GenerateSalt()
	if err != nil {
		return "", "", err
	}

	key := argon2.IDKey([]byte(pin), saltBytes, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(saltBytes), nil
}

// VerifyPin checks pin against a stored hash and salt
func VerifyPin(pin, hash, salt string) error {
	if hash == "" || salt == "" {
		return fmt.Errorf("stored pin hash is empty")
	}

	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return fmt.Errorf("failed to decode salt: %w", err)
	}
	expected, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return fmt.Errorf("failed to decode pin hash: %w", err)
	}

	key := argon2.IDKey([]byte(pin), saltBytes, Argon2Time, Argon2Memory, Argon2Threads, uint32(len(expected)))
	if subtle.ConstantTimeCompare(key, expected) != 1 {
		return ErrPinMismatch
	}
	return nil
}
