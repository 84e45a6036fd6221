// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"vawter.tech/stoptoken/internal/safe"
)

// ErrInvalidState is returned when joining or detaching a [Handle]
// that has already been joined or detached. This indicates a
// programming error in the caller, not a runtime condition to retry.
var ErrInvalidState = errors.New("handle is not joinable")

// Func is the canonical worker signature accepted by [Launch]. The
// worker receives the observer side of a freshly created stop state.
// See [Fn] to convert other function signatures to a Func.
type Func func(t Token) error

// A RecoveredError will be returned by a worker that panics.
type RecoveredError = safe.RecoveredError

// A Handle exclusively owns one worker goroutine and the requesting
// side of that worker's stop state. A Handle is not copyable in any
// meaningful sense; exactly one goroutine should manage its lifecycle,
// though [Handle.RequestStop] may be called from anywhere.
//
// Every Handle must eventually be joined or detached. The idiomatic
// construction is
//
//	h, err := stoptoken.Launch(worker)
//	if err != nil { ... }
//	defer h.Close()
//
// which guarantees the worker is signaled and joined on every exit
// path of the enclosing function.
type Handle struct {
	name string
	src  *Source
	done chan struct{} // Closed after err is set and the worker has returned.
	err  error

	mu struct {
		sync.Mutex
		joined   bool
		detached bool
	}
}

// Launch starts fn on a new goroutine, passing it the observer handle
// of a freshly allocated stop state, and returns a Handle owning the
// goroutine and the requester side.
//
// Launch fails with [ErrResourceExhausted] when an installed [Limiter]
// has no free slot; no goroutine is started and no state is retained
// in that case.
func Launch(fn Func, opts ...Option) (*Handle, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	release, err := cfg.acquire()
	if err != nil {
		return nil, err
	}

	src, tok := New()
	h := &Handle{
		name: cfg.name,
		src:  src,
		done: make(chan struct{}),
	}
	go func() {
		err := safe.CallE(func() error { return fn(tok) })
		if err != nil {
			err = fmt.Errorf("%s: %w", h.name, err)
		}
		h.err = err
		for _, exit := range cfg.onExit {
			exit(err)
		}
		release()
		close(h.done)
	}()
	return h, nil
}

// RequestStop forwards to the worker's stop state. It is idempotent,
// may be called from any goroutine, and is safe to call after the
// worker has exited or the handle has been joined or detached.
func (h *Handle) RequestStop() bool {
	return h.src.RequestStop()
}

// Token returns the observer handle for the worker's stop state. This
// is the same Token the worker received.
func (h *Handle) Token() Token {
	return h.src.Token()
}

// Joinable reports whether the Handle still owns its worker, i.e. it
// has been neither joined nor detached.
func (h *Handle) Joinable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.mu.joined && !h.mu.detached
}

// Join blocks until the worker has returned and reports the worker's
// error, if any. A worker panic is captured and returned as a
// [RecoveredError].
//
// Join consumes the handle: calling it on a handle that was already
// joined or detached returns [ErrInvalidState] immediately.
func (h *Handle) Join() error {
	h.mu.Lock()
	if h.mu.joined || h.mu.detached {
		h.mu.Unlock()
		return ErrInvalidState
	}
	h.mu.joined = true
	h.mu.Unlock()

	<-h.done
	return h.err
}

// Detach relinquishes join responsibility. The worker continues to run
// independently and its resources are reclaimed by the runtime when it
// returns; any error it reports is discarded. Detaching a handle that
// was already joined or detached returns [ErrInvalidState].
func (h *Handle) Detach() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mu.joined || h.mu.detached {
		return ErrInvalidState
	}
	h.mu.detached = true
	return nil
}

// Close requests a stop and joins the worker, returning the worker's
// error. When the handle has already been joined or detached, Close is
// a no-op returning nil, which makes it suitable for use with defer on
// every exit path.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.mu.joined || h.mu.detached {
		h.mu.Unlock()
		return nil
	}
	h.mu.joined = true
	h.mu.Unlock()

	h.src.RequestStop()
	<-h.done
	return h.err
}

// String is for debugging use only.
func (h *Handle) String() string {
	var running string
	select {
	case <-h.done:
		running = "exited"
	default:
		running = "running"
	}
	return fmt.Sprintf("%s: (%s) (joinable=%t) (stop=%t)",
		h.name, running, h.Joinable(), h.src.StopRequested())
}

// JoinAll joins every handle concurrently and returns the joined
// errors, if any. Handles that are no longer joinable contribute
// [ErrInvalidState].
func JoinAll(handles ...*Handle) error {
	errs := make([]error, len(handles))
	g := &errgroup.Group{}
	for i, h := range handles {
		g.Go(func() error {
			errs[i] = h.Join()
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
