// Package session owns the authenticated identity of the local user.
//
// The store is the only writer; the route guard and the navigation
// coordinator read it through domain.SessionReader or subscribe to events.
package session

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"proposal-client/internal/domain"
)

// StorageKey is the fixed identifier the session is persisted under.
const StorageKey = "kp.session"

// Listener receives session transitions.
type Listener func(domain.SessionEvent)

// Store holds the current session.
type Store struct {
	mu        sync.RWMutex
	current   *domain.Session
	storage   Storage
	logger    domain.Logger
	now       func() time.Time
	listeners []Listener
}

// NewStore creates a store and restores any persisted session.
func NewStore(storage Storage, logger domain.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	data, err := s.storage.Load(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Could not read persisted session", "error", err)
		}
		return
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil || strings.TrimSpace(sess.Identity.Username) == "" {
		s.logger.Warn("Discarding unreadable persisted session")
		_ = s.storage.Delete(StorageKey)
		return
	}
	s.current = &sess
	s.logger.Debug("Session restored", "user", sess.Identity.Username)
}

// Subscribe registers fn for every later transition.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Current returns the active session, if any.
func (s *Store) Current() (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	cp := *s.current
	return &cp, true
}

// Token returns the bearer token of the active session, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Identity.Token
}

// Login stores a new session for identity, replacing any previous one.
func (s *Store) Login(identity domain.Identity) (*domain.Session, error) {
	if strings.TrimSpace(identity.Username) == "" {
		return nil, errors.New("identity username is required")
	}
	sess := &domain.Session{Identity: identity, EstablishedAt: s.now().UTC()}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.storage.Save(StorageKey, data); err != nil {
		// The in-memory session still works; it just won't survive a restart.
		s.logger.Error("Failed to persist session", err)
	}
	s.current = sess
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("Session established", "user", identity.Username)
	cp := *sess
	publish(listeners, domain.SessionEvent{Type: domain.SessionEstablished, Session: &cp})
	return &cp, nil
}

// Logout clears the session. It is safe to call with no session.
func (s *Store) Logout() {
	s.clear("logout", nil)
}

// Expire clears the session after the server rejected token. A rejection of
// a token the store no longer holds is ignored.
func (s *Store) Expire(token string) {
	s.clear("unauthorized", func(cur *domain.Session) bool {
		return cur.Identity.Token == token
	})
}

func (s *Store) clear(reason string, match func(*domain.Session) bool) {
	s.mu.Lock()
	if s.current != nil && match != nil && !match(s.current) {
		s.mu.Unlock()
		s.logger.Debug("Ignoring rejection of a replaced session token")
		return
	}
	had := s.current != nil
	s.current = nil
	if err := s.storage.Delete(StorageKey); err != nil {
		s.logger.Error("Failed to delete persisted session", err)
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if !had {
		return
	}
	s.logger.Info("Session cleared", "reason", reason)
	publish(listeners, domain.SessionEvent{Type: domain.SessionCleared, Reason: reason})
}

func publish(listeners []Listener, ev domain.SessionEvent) {
	for _, fn := range listeners {
		fn(ev)
	}
}
