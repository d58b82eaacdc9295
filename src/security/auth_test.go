package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndValidateToken(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)

	tok, err := s.GenerateToken(42, "admin")
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)

	other, err := s.GenerateToken(42, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

func TestValidateTokenRejectsForeignAndExpired(t *testing.T) {
	s := NewAuthService(testSecret, time.Minute)
	tok, err := s.GenerateToken(1, "user")
	require.NoError(t, err)

	_, err = NewAuthService("ffffffffffffffffffffffffffffffff", time.Minute).ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenAndHash(t *testing.T) {
	s := NewAuthService(testSecret, 0)

	a, err := s.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := s.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	hash, err := s.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")))
}
