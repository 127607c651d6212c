package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

// AuthProvider is the external identity collaborator: it owns credentials and
// issues the bearer tokens the API validates.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)
}

func (su *SupabaseRepo) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "already registered") || strings.Contains(errMsg, "already exists") {
			return uuid.Nil, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		if strings.Contains(errMsg, "password") {
			return uuid.Nil, fmt.Errorf("%w: password rejected by identity provider", ErrValidation)
		}
		return uuid.Nil, fmt.Errorf("failed to sign up user: %w", err)
	}
	id := signupUserID(res)
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("identity provider returned no user id")
	}
	return id, nil
}

// signupUserID reads the new user's id from either signup response shape:
// the bare user while confirmation is pending, or a full session when the
// project autoconfirms.
func signupUserID(res *types.SignupResponse) uuid.UUID {
	if res.User.ID != uuid.Nil {
		return res.User.ID
	}
	return res.Session.User.ID
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	res, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	return sessionFromToken(res), nil
}

func (su *SupabaseRepo) Refresh(ctx context.Context, refreshToken string) (*AuthSession, error) {
	res, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: token refresh failed", ErrUnauthorized)
	}
	return sessionFromToken(res), nil
}

func sessionFromToken(res *types.TokenResponse) *AuthSession {
	return &AuthSession{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		UserID:       res.User.ID,
		Email:        res.User.Email,
	}
}
