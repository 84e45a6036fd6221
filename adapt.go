// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import "context"

// Adaptable is the set of function signatures accepted by [Fn].
type Adaptable interface {
	func() | func() error |
		func(context.Context) | func(context.Context) error |
		func(Token) | Func
}

// Fn adapts various function signatures to be compatible with
// [Launch]. Context-accepting functions receive [Token.Context].
func Fn[A Adaptable](fn A) Func {
	// This would be more optimal if:
	// https://github.com/golang/go/issues/59591
	a := any(fn)
	switch t := a.(type) {
	case func():
		return func(Token) error {
			t()
			return nil
		}
	case func() error:
		return func(Token) error {
			return t()
		}
	case func(context.Context):
		return func(tok Token) error {
			t(tok.Context())
			return nil
		}
	case func(context.Context) error:
		return func(tok Token) error {
			return t(tok.Context())
		}
	case func(Token):
		return func(tok Token) error {
			t(tok)
			return nil
		}
	}
	return a.(Func)
}
