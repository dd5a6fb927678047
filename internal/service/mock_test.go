package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"proposal-client/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) add(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.add("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err == nil {
		m.add("ERROR: " + msg)
		return
	}
	m.add("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.add("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.add("WARN: " + msg)
}

func (m *MockLogger) With(args ...interface{}) domain.Logger {
	return m
}

type MockAuthenticator struct {
	users      map[string]string
	resetErr   error
	resets     []string
	authCalled int
}

func NewMockAuthenticator() *MockAuthenticator {
	return &MockAuthenticator{users: map[string]string{"manager": "secret"}}
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	m.authCalled++
	if pw, ok := m.users[username]; !ok || pw != password {
		return nil, domain.ErrInvalidCredential
	}
	return &domain.Identity{Username: username, Token: "token-" + username}, nil
}

func (m *MockAuthenticator) ResetPassword(ctx context.Context, email string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets = append(m.resets, email)
	return nil
}

type MockSessions struct {
	current *domain.Session
	fail    bool
}

func (m *MockSessions) Login(identity domain.Identity) (*domain.Session, error) {
	if m.fail {
		return nil, errors.New("disk full")
	}
	m.current = &domain.Session{Identity: identity}
	return m.current, nil
}

func (m *MockSessions) Logout() {
	m.current = nil
}

type MockCatalog struct {
	files   map[string]string
	page    *domain.ProposalPage
	fetched []string
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{files: map[string]string{}}
}

func (m *MockCatalog) ListProposals(ctx context.Context, page, perPage int) (*domain.ProposalPage, error) {
	if m.page == nil {
		return nil, errors.New("service unavailable")
	}
	return m.page, nil
}

func (m *MockCatalog) Fetch(ctx context.Context, fileURL string, dst io.Writer) (string, error) {
	m.fetched = append(m.fetched, fileURL)
	body, ok := m.files[fileURL]
	if !ok {
		return "", errors.New("not found")
	}
	if _, err := io.WriteString(dst, body); err != nil {
		return "", err
	}
	return "proposal_1.docx", nil
}
