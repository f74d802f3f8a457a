package reactive

import "sync"

// Scope owns subscriptions and cancels all of them when closed.
type Scope struct {
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// NewScope creates an open scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add binds sub to the scope. If the scope is already closed, sub is
// cancelled immediately.
func (s *Scope) Add(sub *Subscription) *Subscription {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return sub
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// Close cancels every subscription bound to the scope.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// Observe subscribes fn to f for the lifetime of scope.
func Observe[T any](scope *Scope, f *Field[T], fn func(T)) *Subscription {
	return scope.Add(f.Subscribe(fn))
}
