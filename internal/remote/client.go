// Package remote talks to the proposal service over HTTP.
//
// Every transport or server failure leaves this package as a
// pkg/errors.AppError so callers never see raw net/http errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

const (
	userAgent = "proposal-client/1.0"

	pathValidate  = "/api/validate-excel"
	pathCreate    = "/api/create-proposal"
	pathUpload    = "/api/upload"
	pathLogin     = "/login"
	pathReset     = "/api/reset-password"
	pathProposals = "/api/proposals"

	msgUploadFailed   = "upload failed"
	msgNetworkFailure = "network error, please check your connection"
	msgSessionExpired = "session expired, please log in again"
)

// TokenSource returns the bearer token for authenticated calls, or "".
type TokenSource func() string

// Client is the HTTP adapter for the remote proposal service.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(token string)
	logger         domain.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler is invoked with the rejected bearer token whenever
// an authenticated call gets a 401, before the error is returned.
func WithUnauthorizedHandler(fn func(token string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, logger domain.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     func() string { return "" },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do sends req. Authenticated requests get the bearer token and trigger the
// unauthorized handler on 401.
func (c *Client) do(req *http.Request, authenticated bool) (*response, error) {
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	var token string
	if authenticated {
		if token = c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(req.Context(), err, req.URL.Path, requestID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(req.Context(), err, req.URL.Path, requestID)
	}

	c.logger.Debug("Remote call finished", "path", req.URL.Path, "status", resp.StatusCode, "request_id", requestID)

	if authenticated && resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("Remote service rejected credentials", "path", req.URL.Path, "request_id", requestID)
		if c.onUnauthorized != nil {
			c.onUnauthorized(token)
		}
		return nil, apperrors.NewUnauthorizedError(msgSessionExpired)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (c *Client) transportError(ctx context.Context, err error, path, requestID string) error {
	if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
		c.logger.Debug("Remote call cancelled", "path", path, "request_id", requestID)
		return apperrors.NewCancelledError("request cancelled", err)
	}
	c.logger.Error("Remote call failed", err, "path", path, "request_id", requestID)
	return apperrors.NewNetworkError(msgNetworkFailure, err)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, authenticated bool) (*response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInternalError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, authenticated)
}

// serverError accepts {"error": "text"}, {"error": {"message": "text"}}
// and {"error": {"details": "text"}}.
type serverError struct {
	Message string
}

func (e *serverError) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}
	var obj struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Message = obj.Message
	if e.Message == "" {
		e.Message = obj.Details
	}
	return nil
}

func (e *serverError) text() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Message)
}

// errorMessage digs a human-readable message out of an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   *serverError `json:"error"`
		Message string       `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := payload.Error.text(); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Message)
}

func statusError(path string, resp *response) error {
	return fmt.Errorf("%s: unexpected status %d", path, resp.status)
}
