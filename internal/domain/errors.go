package domain

import "errors"

// Domain errors
var (
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	ErrNoFileSelected    = errors.New("no file selected")
	ErrNoSession         = errors.New("no active session")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrFileTooLarge      = errors.New("file too large")
)

// TransitionError reports an operation invoked from the wrong state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return e.Op + " not allowed in state " + string(e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
