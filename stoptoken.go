// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import (
	"errors"

	"vawter.tech/stoptoken/internal/state"
)

// ErrStopRequested is reported by [Token.Context] once a stop has been
// requested on the associated state.
var ErrStopRequested = errors.New("stop requested")

// A Source is the requesting side of a stop state. It is a lightweight
// capability: any holder may request a stop, and every Source, [Token],
// and [Callback] derived from the same [New] call shares one state.
//
// All methods on a Source are safe for concurrent use.
type Source struct {
	st *state.State
}

// A Token is the observing side of a stop state. Workers poll
// [Token.StopRequested], select on [Token.Done], or register a
// [Callback] to react to a stop request. A Token carries no right to
// request a stop itself.
//
// The zero Token is valid: it can never signal a stop, and
// [Token.StopPossible] reports false for it.
type Token struct {
	st *state.State
}

// New allocates a fresh stop state and returns its two capability
// handles. Each state is independent; there is no process-wide
// instance.
func New() (*Source, Token) {
	st := state.New()
	return &Source{st: st}, Token{st: st}
}

// RequestStop transitions the shared state into the stopped condition.
// It returns true if this call performed the transition, or false if
// some other call already had. Exactly one concurrent caller observes
// true.
//
// The winning call synchronously invokes every callback registered via
// [OnStop], in registration order, and does not return until the last
// one has completed. RequestStop does not wait for any worker
// observing the state to exit; cancellation is cooperative.
func (s *Source) RequestStop() bool {
	return s.st.RequestStop()
}

// StopRequested reports whether a stop has been requested. It never
// blocks.
func (s *Source) StopRequested() bool {
	return s.st.Requested()
}

// Token returns an observer handle for the Source's state.
func (s *Source) Token() Token {
	return Token{st: s.st}
}

// StopRequested reports whether a stop has been requested. It never
// blocks and always reports false for the zero Token.
func (t Token) StopRequested() bool {
	return t.st != nil && t.st.Requested()
}

// StopPossible reports whether a stop could ever be observed through
// this Token. It is false only for the zero Token.
func (t Token) StopPossible() bool {
	return t.st != nil
}

// Done returns a channel that is closed once a stop has been
// requested. For the zero Token, Done returns nil, which blocks
// forever in a select.
func (t Token) Done() <-chan struct{} {
	if t.st == nil {
		return nil
	}
	return t.st.Stopping()
}
