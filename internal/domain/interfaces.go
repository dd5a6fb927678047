package domain

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// Config defines the interface for configuration management
type Config interface {
	GetAgentPort() string
	GetAPIBaseURL() string
	GetAuthProvider() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSessionDir() string
	GetDownloadDir() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
	GetAllowedOrigins() []string
}

// ProgressFunc receives bytes sent and bytes total for the active request body.
type ProgressFunc func(sent, total int64)

// ProposalAPI is the remote proposal service as seen by the workflow controller.
type ProposalAPI interface {
	ValidateExcel(ctx context.Context, file *SelectedFile, progress ProgressFunc) (*ValidationResult, error)
	CreateProposal(ctx context.Context, file *SelectedFile, progress ProgressFunc) (*SubmissionOutcome, error)
	UploadFile(ctx context.Context, file *SelectedFile, progress ProgressFunc) (json.RawMessage, error)
}

// ProposalCatalog lists and fetches generated proposals.
type ProposalCatalog interface {
	ListProposals(ctx context.Context, page, perPage int) (*ProposalPage, error)
	Fetch(ctx context.Context, fileURL string, dst io.Writer) (string, error)
}

// Authenticator is the external auth collaborator behind the login view.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
	ResetPassword(ctx context.Context, email string) error
}

// Downloader fetches a generated document on the user's behalf and returns
// where it ended up.
type Downloader interface {
	Download(ctx context.Context, fileURL string) (string, error)
}

// Notifier is the toast sink. Rendering is someone else's problem.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
	Warning(msg string)
}

// Navigator performs a view transition.
type Navigator interface {
	Navigate(target Navigation)
}

// SessionReader is the read-only view of the session store.
type SessionReader interface {
	Current() (*Session, bool)
}
