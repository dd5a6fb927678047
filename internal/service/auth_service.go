package service

import (
	"context"
	"net/mail"
	"strings"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

// SessionWriter is the part of the session store the auth service drives.
type SessionWriter interface {
	Login(identity domain.Identity) (*domain.Session, error)
	Logout()
}

// AuthService runs login, logout and password reset against the configured
// authenticator and records the result in the session store.
type AuthService struct {
	authenticator domain.Authenticator
	sessions      SessionWriter
	logger        domain.Logger
}

func NewAuthService(
	authenticator domain.Authenticator,
	sessions SessionWriter,
	logger domain.Logger,
) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		sessions:      sessions,
		logger:        logger,
	}
}

// Login authenticates and establishes the session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationRejectedError("username and password are required")
	}

	identity, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Warn("Login failed", "user", username, "error", err)
		return nil, err
	}

	sess, err := s.sessions.Login(*identity)
	if err != nil {
		s.logger.Error("Failed to store session", err, "user", username)
		return nil, apperrors.NewInternalError("could not start session", err)
	}
	return sess, nil
}

// Logout ends the session. Safe without one.
func (s *AuthService) Logout() {
	s.sessions.Logout()
}

// ResetPassword asks for reset instructions to be sent to email.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationRejectedError("please enter a valid email address")
	}
	if err := s.authenticator.ResetPassword(ctx, email); err != nil {
		s.logger.Warn("Password reset failed", "email", email, "error", err)
		return err
	}
	s.logger.Info("Password reset requested", "email", email)
	return nil
}
