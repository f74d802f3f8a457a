// Package reactive provides observable single-value fields and a graph that
// recomputes a derived field whenever one of its sources changes.
package reactive

import (
	"sync"
	"sync/atomic"
)

// Field holds a single optional value and notifies observers when it changes.
//
// Observers run synchronously on the goroutine that calls Set, in
// registration order, after the new value is stored.
type Field[T any] struct {
	mu        sync.Mutex
	value     T
	present   bool
	equal     func(a, b T) bool
	observers []*observer[T]
}

type observer[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// NewField creates an empty field compared with ==.
func NewField[T comparable]() *Field[T] {
	return NewFieldFunc(func(a, b T) bool { return a == b })
}

// NewFieldFunc creates an empty field that uses equal to detect changes.
func NewFieldFunc[T any](equal func(a, b T) bool) *Field[T] {
	return &Field[T]{equal: equal}
}

// Get returns the current value and whether one has been set.
func (f *Field[T]) Get() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.present
}

// Value returns the current value, or the zero value if unset.
func (f *Field[T]) Value() T {
	v, _ := f.Get()
	return v
}

// Set stores v. If the field was empty or v differs from the previous value,
// every observer is invoked with v.
func (f *Field[T]) Set(v T) {
	f.mu.Lock()
	changed := !f.present || !f.equal(f.value, v)
	f.value = v
	f.present = true
	var observers []*observer[T]
	if changed {
		observers = make([]*observer[T], len(f.observers))
		copy(observers, f.observers)
	}
	f.mu.Unlock()

	for _, o := range observers {
		if o.active.Load() {
			o.fn(v)
		}
	}
}

// Subscribe registers fn. It is not called with the current value, only on
// subsequent changes.
func (f *Field[T]) Subscribe(fn func(T)) *Subscription {
	o := &observer[T]{fn: fn}
	o.active.Store(true)

	f.mu.Lock()
	f.observers = append(f.observers, o)
	f.mu.Unlock()

	return newSubscription(func() {
		o.active.Store(false)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, cur := range f.observers {
			if cur == o {
				f.observers = append(f.observers[:i:i], f.observers[i+1:]...)
				break
			}
		}
	})
}

// Observers returns the number of registered observers.
func (f *Field[T]) Observers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.observers)
}

// Subscription is a registered observer. Cancel detaches it.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Cancel detaches the observer. Extra calls are no-ops.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}
