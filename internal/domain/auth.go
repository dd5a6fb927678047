package domain

import (
	"encoding/json"
	"time"
)

// Identity is the opaque credential returned by the auth collaborator.
type Identity struct {
	Username string          `json:"username"`
	Token    string          `json:"token,omitempty"`
	Profile  json.RawMessage `json:"profile,omitempty"`
}

// Session represents an authenticated user on this client.
type Session struct {
	Identity      Identity  `json:"identity"`
	EstablishedAt time.Time `json:"established_at"`
}

// SessionEventType distinguishes session transitions.
type SessionEventType string

const (
	SessionEstablished SessionEventType = "established"
	SessionCleared     SessionEventType = "cleared"
)

// SessionEvent is published by the session store on every transition.
type SessionEvent struct {
	Type    SessionEventType
	Session *Session
	// Reason is set for cleared sessions, e.g. "logout" or "unauthorized".
	Reason string
}
