package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signHS256(t *testing.T, secret string, claims CustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(subject string, ttl time.Duration) CustomClaims {
	return CustomClaims{
		Role:  "authenticated",
		Email: "sam@campus.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestSecretValidator(t *testing.T) {
	v := NewSecretValidator(testSecret)
	subject := "9b2f1c2e-6a51-4f0e-9d55-6f6f1c1f7a10"

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.Validate(signHS256(t, testSecret, claimsFor(subject, time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, subject, claims.Subject)
		assert.Equal(t, "sam@campus.edu", claims.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := v.Validate(signHS256(t, testSecret, claimsFor(subject, -time.Minute)))
		require.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Validate(signHS256(t, "another-secret", claimsFor(subject, time.Hour)))
		require.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := claimsFor(subject, time.Hour)
		claims.ExpiresAt = nil
		_, err := v.Validate(signHS256(t, testSecret, claims))
		require.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := v.Validate(signHS256(t, testSecret, claimsFor("", time.Hour)))
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Validate("not.a.token")
		require.Error(t, err)
	})
}

func TestValidatorWithoutSecretRejectsHMAC(t *testing.T) {
	v := &TokenValidator{}
	_, err := v.Validate(signHS256(t, testSecret, claimsFor("abc", time.Hour)))
	require.Error(t, err)
}
