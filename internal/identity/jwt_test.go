package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func TestVerifyToken(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	t.Run("valid user token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user_2mK4x",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		identity, err := verifier.VerifyToken(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, "user_2mK4x", identity.UserID)
		assert.False(t, identity.Admin)
	})

	t.Run("admin role claim", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user_admin",
			"role": "admin",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		identity, err := verifier.VerifyToken(context.Background(), token)

		require.NoError(t, err)
		assert.True(t, identity.Admin)
	})

	t.Run("non-admin role claim", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user_2mK4x",
			"role": "member",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		identity, err := verifier.VerifyToken(context.Background(), token)

		require.NoError(t, err)
		assert.False(t, identity.Admin)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user_2mK4x",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.VerifyToken(context.Background(), token)

		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user_2mK4x",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := verifier.VerifyToken(context.Background(), token)

		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.VerifyToken(context.Background(), token)

		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user_2mK4x",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.VerifyToken(context.Background(), token)

		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.VerifyToken(context.Background(), "not.a.jwt")

		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
