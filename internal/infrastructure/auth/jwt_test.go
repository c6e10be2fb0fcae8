package auth

import (
	"testing"
	"time"

	"github.com/fixmarket/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-that-is-long-enough",
		TokenExpiration: expiration,
		Issuer:          "fixmarket-backend",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newJWTService(time.Hour)

	token, err := svc.Generate("u1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.Value)

	claims, err := svc.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ParticipantID)
	assert.Equal(t, "alice", claims.Handle)
	assert.Equal(t, "u1", claims.Subject)
}

func TestJWTService_Validate(t *testing.T) {
	svc := newJWTService(time.Hour)

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := newJWTService(-time.Minute)
		token, err := expired.Generate("u1", "alice")
		require.NoError(t, err)

		_, err = svc.Validate(token.Value)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:          "a-completely-different-secret-key",
			TokenExpiration: time.Hour,
			Issuer:          "fixmarket-backend",
		})
		token, err := other.Generate("u1", "alice")
		require.NoError(t, err)

		_, err = svc.Validate(token.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
