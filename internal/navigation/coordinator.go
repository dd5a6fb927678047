// Package navigation turns workflow and session transitions into view
// redirects.
package navigation

import (
	"sync"

	"proposal-client/internal/domain"
	"proposal-client/internal/guard"
)

// Coordinator issues at most one redirect per state entry.
type Coordinator struct {
	navigator domain.Navigator
	logger    domain.Logger

	mu      sync.Mutex
	lastSeq uint64
	resume  string
}

func NewCoordinator(navigator domain.Navigator, logger domain.Logger) *Coordinator {
	return &Coordinator{
		navigator: navigator,
		logger:    logger.With("component", "navigation"),
	}
}

// OnSnapshot reacts to controller snapshots. Snapshots that repeat an
// already seen entry (progress ticks, re-renders) are ignored.
func (c *Coordinator) OnSnapshot(s domain.Snapshot) {
	c.mu.Lock()
	if s.Seq <= c.lastSeq {
		c.mu.Unlock()
		return
	}
	c.lastSeq = s.Seq
	c.mu.Unlock()

	switch s.State {
	case domain.StateValidated:
		c.navigate(domain.Navigation{To: domain.ViewPreview, Reason: "validated"})
	case domain.StateCompleted:
		c.navigate(domain.Navigation{To: domain.ViewProposals, Reason: "completed"})
	case domain.StateValidationFailed, domain.StateFatal:
		// stay put, the error is on the snapshot
	}
}

// OnSessionEvent sends the user to login when the session goes away and to
// the remembered protected path (or the dashboard) when one is established.
func (c *Coordinator) OnSessionEvent(e domain.SessionEvent) {
	switch e.Type {
	case domain.SessionCleared:
		c.navigate(domain.Navigation{To: domain.ViewLogin, Reason: e.Reason})
	case domain.SessionEstablished:
		c.mu.Lock()
		from := c.resume
		c.resume = ""
		c.mu.Unlock()
		c.navigate(domain.Navigation{To: domain.View(guard.ResumeTarget(from)), From: from, Reason: "login"})
	}
}

// SetResume remembers the protected path a guard redirect interrupted.
func (c *Coordinator) SetResume(from string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resume = from
}

// Resume returns the remembered path without consuming it.
func (c *Coordinator) Resume() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume
}

func (c *Coordinator) navigate(n domain.Navigation) {
	c.logger.Debug("Navigating", "to", n.To, "reason", n.Reason)
	c.navigator.Navigate(n)
}
