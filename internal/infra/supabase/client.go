package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

// authAPI is the slice of the GoTrue client the authenticator uses.
type authAPI interface {
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
	Recover(req types.RecoverRequest) error
}

// profile is what gets kept on the session for Supabase logins.
type profile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Authenticator implements domain.Authenticator against Supabase Auth.
// Usernames are the account e-mail addresses.
type Authenticator struct {
	auth   authAPI
	config domain.Config
	logger domain.Logger
}

// NewAuthenticator creates an authenticator; call Initialize before use.
func NewAuthenticator(config domain.Config, logger domain.Logger) *Authenticator {
	return &Authenticator{
		config: config,
		logger: logger,
	}
}

// Initialize establishes the Supabase client
func (s *Authenticator) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.auth = client.Auth
	s.logger.Info("Supabase auth initialized successfully", "url", supabaseURL)
	return nil
}

// Authenticate signs in with e-mail and password.
// The GoTrue client does not take a context; a cancelled ctx is only
// honoured before the call starts.
func (s *Authenticator) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	if s.auth == nil {
		return nil, apperrors.NewInternalError("supabase auth not initialized", nil)
	}
	email := strings.TrimSpace(username)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationRejectedError("email and password are required")
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCancelledError("login request cancelled", err)
	}

	resp, err := s.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		s.logger.Warn("Supabase sign-in rejected", "email", email, "error", err)
		if isCredentialError(err) {
			return nil, apperrors.NewUnauthorizedError(domain.ErrInvalidCredential.Error())
		}
		return nil, apperrors.NewNetworkError("an unexpected error occurred", err)
	}
	if resp == nil || resp.AccessToken == "" {
		return nil, apperrors.NewNetworkError("an unexpected error occurred", fmt.Errorf("empty token response"))
	}

	name := resp.User.Email
	if name == "" {
		name = email
	}
	raw, err := json.Marshal(profile{
		ID:           resp.User.ID.String(),
		Email:        resp.User.Email,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("encode profile", err)
	}
	return &domain.Identity{Username: name, Token: resp.AccessToken, Profile: raw}, nil
}

// ResetPassword sends the Supabase recovery e-mail.
func (s *Authenticator) ResetPassword(ctx context.Context, email string) error {
	if s.auth == nil {
		return apperrors.NewInternalError("supabase auth not initialized", nil)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.NewValidationRejectedError("email is required")
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewCancelledError("request cancelled", err)
	}
	if err := s.auth.Recover(types.RecoverRequest{Email: email}); err != nil {
		s.logger.Error("Supabase recover failed", err, "email", email)
		return apperrors.NewNetworkError("an error occurred", err)
	}
	return nil
}

// GoTrue reports failures as "response status code 400: {...}". A bare 400
// can also mean a malformed or rate-limited request, so only the credential
// codes count.
func isCredentialError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "invalid login credentials")
}
