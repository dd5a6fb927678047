package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate posts credentials to /login. The whole 200 payload is kept as
// the session profile; a token is picked from the common field names.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	resp, err := c.postJSON(ctx, pathLogin, loginRequest{Username: username, Password: password}, false)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeCancelled) {
			return nil, apperrors.NewCancelledError("login request cancelled", err)
		}
		return nil, err
	}

	switch {
	case resp.ok():
		var payload struct {
			Token       string `json:"token"`
			AccessToken string `json:"access_token"`
			Username    string `json:"username"`
		}
		if err := json.Unmarshal(resp.body, &payload); err != nil {
			return nil, apperrors.NewNetworkError("an unexpected error occurred", err)
		}
		token := payload.Token
		if token == "" {
			token = payload.AccessToken
		}
		name := payload.Username
		if name == "" {
			name = username
		}
		return &domain.Identity{Username: name, Token: token, Profile: json.RawMessage(resp.body)}, nil
	case resp.status == http.StatusUnauthorized:
		return nil, apperrors.NewUnauthorizedError(domain.ErrInvalidCredential.Error())
	case resp.status == http.StatusBadRequest:
		msg := errorMessage(resp.body)
		if msg == "" {
			msg = "bad request"
		}
		return nil, apperrors.NewValidationRejectedError(msg)
	default:
		return nil, apperrors.NewNetworkError("an unexpected error occurred", statusError(pathLogin, resp))
	}
}

// ResetPassword asks the service to mail reset instructions to email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, pathReset, map[string]string{"email": strings.TrimSpace(email)}, false)
	if err != nil {
		return err
	}
	if resp.ok() {
		return nil
	}
	msg := errorMessage(resp.body)
	if msg == "" {
		msg = "an error occurred"
	}
	if resp.status == http.StatusBadRequest || resp.status == http.StatusNotFound {
		return apperrors.NewValidationRejectedError(msg)
	}
	return apperrors.NewNetworkError(msg, statusError(pathReset, resp))
}
