// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStopOnce(t *testing.T) {
	a := assert.New(t)

	s := New()
	a.False(s.Requested())

	a.True(s.RequestStop())
	a.False(s.RequestStop())
	a.True(s.Requested())

	select {
	case <-s.Stopping():
	// OK
	default:
		a.Fail("stopping channel should be closed")
	}
}

func TestRequestStopSingleWinner(t *testing.T) {
	r := require.New(t)

	const callers = 32
	s := New()

	var wins atomic.Int32
	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for range callers {
		go func() {
			defer done.Done()
			start.Wait()
			if s.RequestStop() {
				wins.Add(1)
			}
		}()
	}
	start.Done()
	done.Wait()

	r.Equal(int32(1), wins.Load())
	r.True(s.Requested())
}

func TestRegisterBeforeStop(t *testing.T) {
	a := assert.New(t)

	s := New()
	var order []int
	for i := range 3 {
		s.Register(func() { order = append(order, i) })
	}

	a.True(s.RequestStop())
	// Callbacks fire in registration order, inside RequestStop.
	a.Equal([]int{0, 1, 2}, order)
}

func TestRegisterAfterStop(t *testing.T) {
	a := assert.New(t)

	s := New()
	a.True(s.RequestStop())

	// The callback fires synchronously, before Register returns.
	fired := false
	s.Register(func() { fired = true })
	a.True(fired)
}

func TestUnregisterBeforeStop(t *testing.T) {
	a := assert.New(t)

	s := New()
	fired := false
	r := s.Register(func() { fired = true })
	s.Unregister(r)

	a.True(s.RequestStop())
	a.False(fired)
}

func TestUnregisterAfterStop(t *testing.T) {
	a := assert.New(t)

	s := New()
	var count atomic.Int32
	r := s.Register(func() { count.Add(1) })

	a.True(s.RequestStop())
	s.Unregister(r) // No-op; already fired.
	a.Equal(int32(1), count.Load())
}

func TestUnregisterIdempotent(t *testing.T) {
	s := New()
	r := s.Register(func() {})
	s.Unregister(r)
	s.Unregister(r)
	s.Unregister(nil)
	s.RequestStop()
}

func TestUnregisterBlocksDuringInvocation(t *testing.T) {
	r := require.New(t)

	s := New()
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	reg := s.Register(func() {
		close(entered)
		<-release
		finished.Store(true)
	})

	go s.RequestStop()

	select {
	case <-entered:
	// OK
	case <-time.After(time.Second):
		r.Fail("callback did not start")
	}

	unregistered := make(chan struct{})
	go func() {
		defer close(unregistered)
		s.Unregister(reg)
	}()

	// Unregister must not return while the callback body is running.
	select {
	case <-unregistered:
		r.Fail("Unregister returned during invocation")
	case <-time.After(10 * time.Millisecond):
		// OK
	}

	close(release)
	select {
	case <-unregistered:
		r.True(finished.Load())
	case <-time.After(time.Second):
		r.Fail("Unregister did not return after invocation")
	}
}

func TestRequestStopWaitsForCallbacks(t *testing.T) {
	r := require.New(t)

	s := New()
	var completed atomic.Int32
	for range 5 {
		s.Register(func() {
			time.Sleep(time.Millisecond)
			completed.Add(1)
		})
	}

	r.True(s.RequestStop())
	// All callbacks have run by the time RequestStop returns.
	r.Equal(int32(5), completed.Load())
}

func TestReentrantRequestStop(t *testing.T) {
	a := assert.New(t)

	s := New()
	var nested bool
	s.Register(func() {
		// The transition has already happened; this must be a no-op
		// rather than a deadlock.
		nested = s.RequestStop()
	})

	a.True(s.RequestStop())
	a.False(nested)
}

func TestReentrantRegister(t *testing.T) {
	a := assert.New(t)

	s := New()
	var late bool
	s.Register(func() {
		// Registered mid-stop, so it fires immediately.
		s.Register(func() { late = true })
	})

	a.True(s.RequestStop())
	a.True(late)
}

func TestConcurrentRegistrationChurn(t *testing.T) {
	r := require.New(t)

	s := New()
	var fired atomic.Int32

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				reg := s.Register(func() { fired.Add(1) })
				s.Unregister(reg)
			}
		}()
	}

	time.Sleep(time.Millisecond)
	s.RequestStop()
	wg.Wait()

	// Every callback fired at most once; a churn loop whose Unregister
	// completed before the transition contributes zero. The exact count
	// is timing-dependent, but it can never exceed the registrations.
	r.LessOrEqual(fired.Load(), int32(800))
	r.True(s.Requested())
}
