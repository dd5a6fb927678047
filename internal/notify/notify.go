// Package notify provides the toast sinks used by the workflow.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notification is a single toast.
type Notification struct {
	ID      uint64    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Buffer keeps the most recent notifications for a UI to poll.
type Buffer struct {
	mu     sync.Mutex
	items  []Notification
	limit  int
	nextID uint64
	now    func() time.Time
}

// NewBuffer returns a buffer holding at most limit entries.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 50
	}
	return &Buffer{limit: limit, now: time.Now}
}

func (b *Buffer) push(level Level, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.items = append(b.items, Notification{ID: b.nextID, Level: level, Message: msg, At: b.now()})
	if over := len(b.items) - b.limit; over > 0 {
		b.items = append([]Notification(nil), b.items[over:]...)
	}
}

func (b *Buffer) Success(msg string) { b.push(LevelSuccess, msg) }
func (b *Buffer) Error(msg string)   { b.push(LevelError, msg) }
func (b *Buffer) Info(msg string)    { b.push(LevelInfo, msg) }
func (b *Buffer) Warning(msg string) { b.push(LevelWarning, msg) }

// Since returns notifications with an ID greater than after.
func (b *Buffer) Since(after uint64) []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, 0, len(b.items))
	for _, n := range b.items {
		if n.ID > after {
			out = append(out, n)
		}
	}
	return out
}

// Drain returns and forgets every buffered notification.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// Console prints notifications to a terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

var (
	colorSuccess = color.New(color.FgGreen, color.Bold)
	colorError   = color.New(color.FgRed, color.Bold)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
)

// NewConsole writes to out. Colors follow color.NoColor.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) print(col *color.Color, tag, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", col.Sprint(tag), msg)
}

func (c *Console) Success(msg string) { c.print(colorSuccess, "✔", msg) }
func (c *Console) Error(msg string)   { c.print(colorError, "✖", msg) }
func (c *Console) Info(msg string)    { c.print(colorInfo, "•", msg) }
func (c *Console) Warning(msg string) { c.print(colorWarning, "!", msg) }
