package service

import (
	"cardiostent/internal/config"
	"cardiostent/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, clock Clock, secrets ...string) *AuthService {
	t.Helper()
	svc, err := NewAuthService(config.AuthConfig{
		Username:  "admin",
		Secrets:   secrets,
		JWTSecret: "test-signing-key",
		TokenTTL:  time.Hour,
	}, clock)
	require.NoError(t, err)
	return svc
}

func TestCheckBasic(t *testing.T) {
	svc := newTestAuth(t, nil, "VIP2026", "6362")

	assert.NoError(t, svc.CheckBasic("admin", "VIP2026"))
	assert.NoError(t, svc.CheckBasic("admin", "6362"))
	assert.ErrorIs(t, svc.CheckBasic("admin", "wrong"), model.ErrUnauthorized)
	assert.ErrorIs(t, svc.CheckBasic("root", "VIP2026"), model.ErrUnauthorized)
	assert.ErrorIs(t, svc.CheckBasic("", ""), model.ErrUnauthorized)
}

func TestCheckBasicBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("VIP2026"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := newTestAuth(t, nil, string(hash))

	assert.NoError(t, svc.CheckBasic("admin", "VIP2026"))
	assert.Error(t, svc.CheckBasic("admin", string(hash)))
}

func TestCheckBasicWithoutSecrets(t *testing.T) {
	svc := newTestAuth(t, nil)

	assert.False(t, svc.HasSecrets())
	assert.Error(t, svc.CheckBasic("admin", ""))
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc := newTestAuth(t, fixedClock{now}, "VIP2026")

	tok, err := svc.IssueToken("admin")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), tok.ExpiresAt)

	claims, err := svc.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestTokenExpired(t *testing.T) {
	issued := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	tok, err := newTestAuth(t, fixedClock{issued}, "x").IssueToken("admin")
	require.NoError(t, err)

	later := newTestAuth(t, fixedClock{issued.Add(2 * time.Hour)}, "x")
	_, err = later.ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	other, err := NewAuthService(config.AuthConfig{Username: "admin", Secrets: []string{"x"}}, nil)
	require.NoError(t, err)
	tok, err := other.IssueToken("admin")
	require.NoError(t, err)

	_, err = newTestAuth(t, nil, "x").ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newTestAuth(t, nil, "x").ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
