package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ActorContextKey is the gin context key holding the request's models.Actor.
const ActorContextKey = "actor"

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator verifies bearer tokens issued by the identity provider.
// Asymmetric tokens are checked against the provider's JWKS; HS256 tokens
// against the shared JWT secret.
type TokenValidator struct {
	jwks   *keyfunc.JWKS
	secret []byte
}

// NewTokenValidator fetches the JWKS once and keeps it refreshed in the
// background. A JWKS failure is tolerated when a secret is configured.
func NewTokenValidator(ctx context.Context, jwksURL, secret string, logger *slog.Logger) (*TokenValidator, error) {
	v := &TokenValidator{secret: []byte(secret)}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("JWKS refresh failed", "error", err)
			},
		})
		if err != nil {
			if secret == "" {
				return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
			}
			logger.Warn("JWKS unavailable, falling back to shared secret", "url", jwksURL, "error", err)
		} else {
			v.jwks = jwks
		}
	}

	if v.jwks == nil && len(v.secret) == 0 {
		return nil, errors.New("either a JWKS URL or a JWT secret is required")
	}
	return v, nil
}

// NewSecretValidator validates HS256 tokens only.
func NewSecretValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

func (v *TokenValidator) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if len(v.secret) == 0 {
			return nil, errors.New("HMAC tokens are not accepted")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return v.jwks.Keyfunc(token)
}

func (v *TokenValidator) Validate(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyFunc,
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
