// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package state defines the shared stop-signal state.
package state

import (
	"sync"
	"sync/atomic"

	"vawter.tech/stoptoken/internal/safe"
)

// A State records whether a stop has been requested and the set of
// callbacks to invoke when that happens. A State is shared by every
// outstanding source handle, token handle, and registration that
// refers to it.
//
// The requested flag is monotonic; it transitions from false to true
// exactly once and is never reset.
type State struct {
	requested atomic.Bool
	stopping  chan struct{} // Closed by the winning RequestStop call.

	mu struct {
		sync.Mutex
		cbs    []*Registration // Insertion order preserved.
		nextID uint64
		firing *Registration // Set while a callback runs outside the mutex.
	}
}

// A Registration binds a single callback to a State. Its fields are
// owned by the State that created it.
type Registration struct {
	id   uint64
	fn   func()
	done chan struct{} // Closed once fn has returned or will never run.
}

// New returns an empty State with no stop requested.
func New() *State {
	return &State{stopping: make(chan struct{})}
}

// Requested is a lock-free read of the stop flag.
func (s *State) Requested() bool {
	return s.requested.Load()
}

// Stopping returns a channel that is closed once a stop has been
// requested.
func (s *State) Stopping() <-chan struct{} {
	return s.stopping
}

// RequestStop performs the false-to-true transition of the stop flag.
// It returns true for exactly one caller, no matter how many calls
// race; all others return false without side effects.
//
// The winning call invokes every currently registered callback, in
// registration order, and returns only after the last one has
// completed. Callbacks run with the state mutex released, so they may
// safely call back into the State. A RequestStop issued from within a
// running callback observes the flag as already set and returns false.
func (s *State) RequestStop() bool {
	s.mu.Lock()
	if s.requested.Load() {
		s.mu.Unlock()
		return false
	}
	s.requested.Store(true)
	close(s.stopping)

	// Drain the callback list in order. The mutex is released around
	// each invocation; mu.firing lets Unregister distinguish a callback
	// that is mid-flight from one that will never run.
	for len(s.mu.cbs) > 0 {
		r := s.mu.cbs[0]
		s.mu.cbs = s.mu.cbs[1:]
		s.mu.firing = r
		s.mu.Unlock()

		safe.MustCall(r.fn)

		s.mu.Lock()
		s.mu.firing = nil
		close(r.done)
	}
	s.mu.cbs = nil
	s.mu.Unlock()
	return true
}

// Register adds a callback to the State. If a stop has already been
// requested, the callback is invoked synchronously before Register
// returns and the returned Registration is already complete. The check
// and the insertion are atomic with respect to RequestStop: no
// registration can observe the flag as false after the transition.
func (s *State) Register(fn func()) *Registration {
	r := &Registration{fn: fn, done: make(chan struct{})}
	s.mu.Lock()
	if s.requested.Load() {
		s.mu.Unlock()
		safe.MustCall(fn)
		close(r.done)
		return r
	}
	r.id = s.mu.nextID
	s.mu.nextID++
	s.mu.cbs = append(s.mu.cbs, r)
	s.mu.Unlock()
	return r
}

// Unregister removes a callback that has not yet fired. If the
// callback is being invoked by a concurrent RequestStop, Unregister
// blocks until that invocation has returned, guaranteeing that the
// callback body is not running once this method returns. Calling
// Unregister multiple times, or after the callback has fired, is a
// no-op.
//
// Unregister must not be called from within the callback's own body;
// doing so would wait on an invocation that cannot complete.
func (s *State) Unregister(r *Registration) {
	if r == nil {
		return
	}
	s.mu.Lock()
	for i, cb := range s.mu.cbs {
		if cb == r {
			s.mu.cbs = append(s.mu.cbs[:i], s.mu.cbs[i+1:]...)
			s.mu.Unlock()
			return
		}
	}
	firing := s.mu.firing == r
	s.mu.Unlock()

	if firing {
		<-r.done
	}
}
