// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import (
	"vawter.tech/stoptoken/internal/state"
)

// A Callback is a scoped subscription created by [OnStop]. Exactly one
// of the following happens to the enclosed function:
//
//   - It runs synchronously inside [OnStop] when the stop had already
//     been requested at registration time.
//   - It runs synchronously inside the winning [Source.RequestStop]
//     call, in registration order with its peers.
//   - It never runs, because [Callback.Unregister] removed it before a
//     stop was requested.
//
// No other ordering is observable; the function is invoked at most
// once, ever.
type Callback struct {
	st  *state.State
	reg *state.Registration
}

// OnStop registers fn against the Token's stop state. If a stop has
// already been requested, fn is invoked before OnStop returns. For the
// zero Token, OnStop returns an inert Callback and fn will never run.
//
// The function must not panic: a panic inside a stop callback has no
// caller to propagate to and terminates the process. It also must not
// call Unregister on its own Callback.
func OnStop(t Token, fn func()) *Callback {
	if t.st == nil {
		return &Callback{}
	}
	return &Callback{st: t.st, reg: t.st.Register(fn)}
}

// Unregister removes the callback if it has not fired. If the callback
// is concurrently being invoked by [Source.RequestStop], Unregister
// blocks until that invocation has completed, so that once this method
// returns the callback body is guaranteed not to be running and any
// state it captures may be released. Unregister is idempotent.
func (c *Callback) Unregister() {
	if c.st == nil {
		return
	}
	c.st.Unregister(c.reg)
}
