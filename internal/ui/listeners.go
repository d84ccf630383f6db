package ui

import "sync"

// Listeners hands out the right to receive every key and mouse event before
// normal focus routing. At most one subscription is active: a new Acquire
// revokes the previous one, and a Select whose claim was revoked reports
// itself closed.
type Listeners struct {
	mu     sync.Mutex
	active *Subscription
	issued int
}

// Subscription is an active claim on global events. Release is idempotent.
type Subscription struct {
	owner    string
	registry *Listeners
	released bool
}

// NewListeners returns an empty registry.
func NewListeners() *Listeners {
	return &Listeners{}
}

// Acquire claims global events for owner.
func (l *Listeners) Acquire(owner string) *Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active != nil {
		l.active.released = true
	}
	sub := &Subscription{owner: owner, registry: l}
	l.active = sub
	l.issued++
	return sub
}

// Owner returns the id holding the active subscription, or "".
func (l *Listeners) Owner() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return ""
	}
	return l.active.owner
}

// Count returns the number of live subscriptions (0 or 1).
func (l *Listeners) Count() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return 0
	}
	return 1
}

// Issued returns how many subscriptions have ever been handed out.
func (l *Listeners) Issued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.issued
}

// Release gives the claim back. Releasing a replaced or already released
// subscription does nothing.
func (s *Subscription) Release() {
	if s == nil || s.registry == nil {
		return
	}
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	if s.registry.active == s {
		s.registry.active = nil
	}
}

// Active reports whether the subscription still holds the claim.
func (s *Subscription) Active() bool {
	if s == nil || s.registry == nil {
		return false
	}
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	return !s.released && s.registry.active == s
}
