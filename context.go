// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import (
	"context"
	"errors"
	"time"
)

var errCanceledStopped = errors.Join(context.Canceled, ErrStopRequested)

// Key is a [context.Context.Value] key for a [Token] used by
// [FromContext].
type Key struct{}

// Context adapts the Token into a [context.Context]. This can be used
// whenever it is necessary to call other APIs that should be made
// aware of the stop condition (e.g. database drivers or gRPC clients).
//
// The returned context has the following behaviors:
//   - The [context.Context.Done] method returns [Token.Done].
//   - The [context.Context.Err] method returns an error that is both
//     [context.Canceled] and [ErrStopRequested] once a stop has been
//     requested.
//   - The [context.Context.Value] method responds to [Key] with the
//     Token.
func (t Token) Context() context.Context {
	return tokenCtx{t}
}

// WithToken attaches the Token to the context so that stop-aware code
// further down a call chain can recover it with [FromContext].
func WithToken(ctx context.Context, t Token) context.Context {
	return context.WithValue(ctx, Key{}, t)
}

// FromContext returns the enclosed Token, or false if the context is
// not associated with a stop state. This function will unwrap a
// context returned from [Token.Context] or [WithToken].
func FromContext(ctx context.Context) (Token, bool) {
	if found, ok := ctx.Value(Key{}).(Token); ok {
		return found, true
	}
	return Token{}, false
}

// tokenCtx just swizzles the method set.
type tokenCtx struct {
	t Token
}

var _ context.Context = tokenCtx{}

func (c tokenCtx) Deadline() (deadline time.Time, ok bool) {
	return time.Time{}, false
}

func (c tokenCtx) Done() <-chan struct{} {
	return c.t.Done()
}

func (c tokenCtx) Err() error {
	if c.t.StopRequested() {
		return errCanceledStopped
	}
	return nil
}

func (c tokenCtx) Value(key any) any {
	if _, ok := key.(Key); ok {
		return c.t
	}
	return nil
}
