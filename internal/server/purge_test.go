package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/internal/models"
	"github.com/iudanet/cropaid/internal/server/storage/sqlite"
)

func TestPurgeInterval(t *testing.T) {
	tests := []struct {
		name       string
		refreshTTL time.Duration
		want       time.Duration
	}{
		{name: "default month", refreshTTL: 30 * 24 * time.Hour, want: time.Hour},
		{name: "one day", refreshTTL: 24 * time.Hour, want: time.Hour},
		{name: "six hours", refreshTTL: 6 * time.Hour, want: 15 * time.Minute},
		{name: "short ttl", refreshTTL: 10 * time.Minute, want: time.Minute},
		{name: "zero", refreshTTL: 0, want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, purgeInterval(tt.refreshTTL))
		})
	}
}

func TestServer_PurgeSessions(t *testing.T) {
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Now().UTC()
	user := &models.User{ID: "farmer", PhoneNumber: "+919876543210", PinHash: "h", PinSalt: "s", CreatedAt: now}
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.CreateSession(ctx, &models.Session{
		Token: "stale", UserID: user.ID, PhoneNumber: user.PhoneNumber, ExpiresAt: now.Add(-time.Minute), CreatedAt: now,
	}))
	require.NoError(t, store.CreateSession(ctx, &models.Session{
		Token: "live", UserID: user.ID, PhoneNumber: user.PhoneNumber, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))

	s := New(Options{RefreshTTL: time.Hour}, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go s.purgeSessions(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		var n int
		err := store.DB().QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)
}
