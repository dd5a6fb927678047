package supabase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"proposal-client/internal/testutil"
	apperrors "proposal-client/pkg/errors"
)

type fakeAuth struct {
	password   string
	userID     uuid.UUID
	recovered  []string
	recoverErr error
}

func (f *fakeAuth) SignInWithEmailPassword(email, password string) (*types.TokenResponse, error) {
	if password != f.password {
		return nil, errors.New(`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`)
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "access-" + email
	resp.RefreshToken = "refresh"
	resp.User.ID = f.userID
	resp.User.Email = email
	return resp, nil
}

func (f *fakeAuth) Recover(req types.RecoverRequest) error {
	if f.recoverErr != nil {
		return f.recoverErr
	}
	f.recovered = append(f.recovered, req.Email)
	return nil
}

func newTestAuthenticator(fake *fakeAuth) *Authenticator {
	a := NewAuthenticator(nil, testutil.NewNopLogger())
	a.auth = fake
	return a
}

func TestAuthenticate(t *testing.T) {
	fake := &fakeAuth{password: "secret", userID: uuid.New()}
	a := newTestAuthenticator(fake)

	id, err := a.Authenticate(context.Background(), " ana@example.com ", "secret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id.Username != "ana@example.com" {
		t.Fatalf("expected username ana@example.com, got %q", id.Username)
	}
	if id.Token != "access-ana@example.com" {
		t.Fatalf("unexpected token %q", id.Token)
	}
	if len(id.Profile) == 0 {
		t.Fatal("expected profile to be set")
	}

	_, err = a.Authenticate(context.Background(), "ana@example.com", "wrong")
	if !apperrors.IsType(err, apperrors.ErrorTypeUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}

	_, err = a.Authenticate(context.Background(), "", "")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidationRejected) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthenticate_CancelledBeforeCall(t *testing.T) {
	a := newTestAuthenticator(&fakeAuth{password: "secret"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Authenticate(ctx, "ana@example.com", "secret")
	if !apperrors.IsType(err, apperrors.ErrorTypeCancelled) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

func TestAuthenticate_NotInitialized(t *testing.T) {
	a := NewAuthenticator(nil, testutil.NewNopLogger())
	if _, err := a.Authenticate(context.Background(), "a@b.c", "x"); err == nil {
		t.Fatal("expected error when not initialized")
	}
}

func TestResetPassword(t *testing.T) {
	fake := &fakeAuth{}
	a := newTestAuthenticator(fake)

	if err := a.ResetPassword(context.Background(), "ana@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(fake.recovered) != 1 || fake.recovered[0] != "ana@example.com" {
		t.Fatalf("expected recover for ana@example.com, got %v", fake.recovered)
	}

	fake.recoverErr = errors.New("smtp down")
	err := a.ResetPassword(context.Background(), "ana@example.com")
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestIsCredentialError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid grant", errors.New(`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`), true},
		{"description only", errors.New(`response status code 400: {"msg":"Invalid login credentials"}`), true},
		{"malformed request", errors.New(`response status code 400: {"error":"validation_failed","msg":"missing email"}`), false},
		{"rate limited", errors.New(`response status code 400: {"error":"over_request_rate_limit"}`), false},
		{"unreachable", errors.New("dial tcp: connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCredentialError(tt.err); got != tt.want {
				t.Fatalf("isCredentialError(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAuthenticate_MalformedRequestIsNotACredentialFailure(t *testing.T) {
	a := NewAuthenticator(nil, testutil.NewNopLogger())
	a.auth = rejectingAuth{err: errors.New(`response status code 400: {"error":"validation_failed"}`)}

	_, err := a.Authenticate(context.Background(), "ana@example.com", "secret")
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

type rejectingAuth struct {
	err error
}

func (r rejectingAuth) SignInWithEmailPassword(email, password string) (*types.TokenResponse, error) {
	return nil, r.err
}

func (r rejectingAuth) Recover(req types.RecoverRequest) error { return r.err }
