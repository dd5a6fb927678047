// mocks.go - shared fakes for package tests
package testutil

import (
	"context"
	"sync"

	"proposal-client/internal/domain"
)

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() domain.Logger { return NopLogger{} }

func (NopLogger) Info(msg string, fields ...interface{})             {}
func (NopLogger) Error(msg string, err error, fields ...interface{}) {}
func (NopLogger) Debug(msg string, fields ...interface{})            {}
func (NopLogger) Warn(msg string, fields ...interface{})             {}
func (l NopLogger) With(fields ...interface{}) domain.Logger         { return l }

// Notification is one recorded toast.
type Notification struct {
	Level   string
	Message string
}

// RecordingNotifier keeps every notification in order.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *RecordingNotifier) add(level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{Level: level, Message: msg})
}

func (n *RecordingNotifier) Success(msg string) { n.add("success", msg) }
func (n *RecordingNotifier) Error(msg string)   { n.add("error", msg) }
func (n *RecordingNotifier) Info(msg string)    { n.add("info", msg) }
func (n *RecordingNotifier) Warning(msg string) { n.add("warning", msg) }

// All returns a copy of the recorded notifications.
func (n *RecordingNotifier) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}

// RecordingNavigator keeps every navigation in order.
type RecordingNavigator struct {
	mu    sync.Mutex
	items []domain.Navigation
}

func (n *RecordingNavigator) Navigate(target domain.Navigation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, target)
}

func (n *RecordingNavigator) All() []domain.Navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Navigation(nil), n.items...)
}

// RecordingDownloader records requested URLs.
type RecordingDownloader struct {
	mu   sync.Mutex
	urls []string
	Err  error
}

func (d *RecordingDownloader) Download(ctx context.Context, fileURL string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, fileURL)
	if d.Err != nil {
		return "", d.Err
	}
	return "/tmp/" + fileURL, nil
}

func (d *RecordingDownloader) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}
