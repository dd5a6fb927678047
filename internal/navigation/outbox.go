package navigation

import (
	"sync"

	"proposal-client/internal/domain"
)

// Outbox is a Navigator that queues redirects for a polling UI.
type Outbox struct {
	mu      sync.Mutex
	pending []domain.Navigation
	last    *domain.Navigation
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Navigate(target domain.Navigation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, target)
	cp := target
	o.last = &cp
}

// Drain returns queued redirects oldest first and empties the queue.
func (o *Outbox) Drain() []domain.Navigation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	return out
}

// Last returns the most recent redirect, drained or not.
func (o *Outbox) Last() (domain.Navigation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return domain.Navigation{}, false
	}
	return *o.last, true
}
