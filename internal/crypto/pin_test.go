package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	first, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, first, SaltSize)

	second, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "соли должны различаться")
}

func TestHashPin(t *testing.T) {
	hash, salt, err := HashPin("1234")
	require.NoError(t, err)

	rawHash, err := base64.StdEncoding.DecodeString(hash)
	require.NoError(t, err)
	assert.Len(t, rawHash, Argon2KeyLen)

	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	require.NoError(t, err)
	assert.Len(t, rawSalt, SaltSize)

	// Тот же PIN с новой солью дает другой хеш
	hash2, salt2, err := HashPin("1234")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	assert.NotEqual(t, salt, salt2)
}

func TestHashPin_Empty(t *testing.T) {
	_, _, err := HashPin("")
	assert.Error(t, err)
}

func TestVerifyPin(t *testing.T) {
	hash, salt, err := HashPin("482910")
	require.NoError(t, err)

	tests := []struct {
		name    string
		pin     string
		hash    string
		salt    string
		wantErr error
		anyErr  bool
	}{
		{name: "correct pin", pin: "482910", hash: hash, salt: salt},
		{name: "wrong pin", pin: "482911", hash: hash, salt: salt, wantErr: ErrPinMismatch},
		{name: "empty hash", pin: "482910", hash: "", salt: salt, anyErr: true},
		{name: "bad salt encoding", pin: "482910", hash: hash, salt: "%%%", anyErr: true},
		{name: "bad hash encoding", pin: "482910", hash: "%%%", salt: salt, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPin(tt.pin, tt.hash, tt.salt)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
