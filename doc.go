// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package stoptoken provides a cooperative stop-signal protocol and a
// self-joining worker handle.
//
// A stop state is a process-local, shared record of whether a stop has
// been requested. [New] splits it into two capabilities: a [Source]
// that can request the stop and a [Token] that can only observe it.
// The request is a linearizable, one-way transition; once made it can
// never be unmade, and exactly one of any number of racing
// [Source.RequestStop] calls reports that it performed the transition.
//
//	src, tok := stoptoken.New()
//	go func() { for !tok.StopRequested() { work() } }()
//	src.RequestStop()
//
// # Observing a stop
//
// A worker may poll [Token.StopRequested], select on [Token.Done], or
// register a callback:
//
//	cb := stoptoken.OnStop(tok, func() { conn.Close() })
//	defer cb.Unregister()
//
// Callbacks follow a strict three-case protocol. A callback registered
// after the stop was requested runs synchronously inside [OnStop]. A
// callback still registered when the stop arrives runs synchronously
// inside the winning [Source.RequestStop] call, in registration order.
// A callback unregistered before any stop never runs at all. In every
// case the callback runs at most once, and [Callback.Unregister] does
// not return while the callback body is executing, so state captured
// by the closure may be released safely once it returns.
//
// Callbacks must not panic. A stop callback executes in the middle of
// someone else's RequestStop call, where there is no channel to report
// a failure upward, so a panicking callback terminates the process.
//
// # Worker handles
//
// [Launch] couples a fresh stop state with a worker goroutine and
// returns a [Handle] that owns both:
//
//	h, err := stoptoken.Launch(func(tok stoptoken.Token) error {
//	    for !tok.StopRequested() {
//	        if err := step(); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
//	if err != nil { ... }
//	defer h.Close()
//
// [Handle.Close] requests a stop and joins, and is a no-op on a handle
// that was already joined or detached; deferring it guarantees the
// worker is signaled and reaped on every exit path of the enclosing
// function. [Handle.Join] waits without signaling, [Handle.Detach]
// releases the worker to run independently, and [JoinAll] joins a
// group of handles concurrently. A worker panic is captured into a
// [RecoveredError] and returned from Join like any other error.
//
// Cancellation is cooperative, never preemptive: requesting a stop
// does not interrupt the worker, and RequestStop waits only for
// registered callbacks, not for the worker itself. Joining is a
// separate, explicit operation.
//
// # Launch options
//
// [WithName] labels a worker for error messages and debugging output.
// [WithOnExit] observes worker completion. [WithLimiter] bounds the
// number of live workers; when the [Limiter] is out of slots, [Launch]
// fails with [ErrResourceExhausted] rather than blocking.
//
// # Integration with other libraries
//
// [Token.Context] adapts a Token into a [context.Context] whose Done
// channel tracks the stop signal, for calling APIs that are not
// token-aware. [WithToken] and [FromContext] pass a Token through
// existing context plumbing. [StopOnReceive] and [StopOnSignal] wire a
// Source to arbitrary channels and OS signals.
//
// # Subpackages
//
// The [poll] sub-package provides rate-limited polling loops for
// workers built around [Token.StopRequested]. The [linger] sub-package
// helps tests find workers whose handles were never joined.
package stoptoken
