// Package resource provides a memoized, read-once wrapper around a single
// asynchronous value production.
//
// A Resource is created for one producer, settles exactly once, and from
// then on returns the same value or error on every read. The producer is
// never re-run; to retry, construct a new Resource. Consumers either poll
// with TryRead or block with Await.
package resource

import (
	"context"
	"sync"
)

// Status describes the settlement state of a Resource.
type Status int

const (
	// StatusPending means the production has not settled yet.
	StatusPending Status = iota
	// StatusOK means the production settled with a value.
	StatusOK
	// StatusErr means the production settled with an error.
	StatusErr
)

// Resource wraps one asynchronous production of a value of type T.
// A settled Resource is immutable.
type Resource[T any] struct {
	done chan struct{}

	mu     sync.Mutex
	status Status
	value  T
	err    error
}

// New starts producer in its own goroutine and returns a Resource that
// settles with its result. The producer runs exactly once.
func New[T any](producer func() (T, error)) *Resource[T] {
	r := &Resource[T]{done: make(chan struct{})}
	go func() {
		v, err := producer()
		r.settle(v, err)
	}()
	return r
}

// Resolved returns an already-settled Resource holding value.
func Resolved[T any](value T) *Resource[T] {
	r := &Resource[T]{done: make(chan struct{})}
	r.settle(value, nil)
	return r
}

// Failed returns an already-settled Resource holding err.
func Failed[T any](err error) *Resource[T] {
	r := &Resource[T]{done: make(chan struct{})}
	var zero T
	r.settle(zero, err)
	return r
}

// FromSubscription adapts a push-based subscription into a Resource by
// taking only the first emission and then unsubscribing. Later emissions
// are ignored by this Resource; callers that need live updates must
// subscribe again separately.
//
// subscribe is called once and must return an unsubscribe function. The
// emit callback may fire synchronously from within subscribe.
func FromSubscription[T any](subscribe func(emit func(T, error)) (unsubscribe func())) *Resource[T] {
	r := &Resource[T]{done: make(chan struct{})}

	var (
		mu      sync.Mutex
		stop    func()
		settled bool
	)

	unsubscribe := subscribe(func(v T, err error) {
		mu.Lock()
		if settled {
			mu.Unlock()
			return
		}
		settled = true
		s := stop
		mu.Unlock()

		r.settle(v, err)
		if s != nil {
			s()
		}
	})

	mu.Lock()
	stop = unsubscribe
	done := settled
	mu.Unlock()

	// The first emission arrived before subscribe returned; the stored
	// stop func was still nil at that point, so unsubscribe here.
	if done && unsubscribe != nil {
		unsubscribe()
	}

	return r
}

func (r *Resource[T]) settle(v T, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != StatusPending {
		return
	}
	if err != nil {
		r.status = StatusErr
		r.err = err
	} else {
		r.status = StatusOK
		r.value = v
	}
	close(r.done)
}

// Status returns the current settlement state.
func (r *Resource[T]) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Done is closed once the Resource has settled.
func (r *Resource[T]) Done() <-chan struct{} { return r.done }

// TryRead reports whether the Resource has settled and, if so, returns
// the memoized value or production error. While pending it returns the
// zero value, false and nil.
func (r *Resource[T]) TryRead() (value T, settled bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusPending {
		var zero T
		return zero, false, nil
	}
	return r.value, true, r.err
}

// Await blocks until the Resource settles or ctx is done, then returns
// the memoized result. Await never re-runs the producer; every call after
// settlement returns the same value or error.
func (r *Resource[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.err
}
