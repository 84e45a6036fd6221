// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import "errors"

// ErrResourceExhausted is returned by [Launch] when an installed
// [Limiter] has no free slot for another worker.
var ErrResourceExhausted = errors.New("resource exhausted")

// An Option configures a call to [Launch].
type Option func(*config)

type config struct {
	limiter *Limiter
	name    string
	onExit  []func(error)
}

func newConfig() *config {
	return &config{name: "worker"}
}

// acquire reserves a slot from the configured limiter, if any. The
// returned function releases the slot and is always safe to call.
func (c *config) acquire() (release func(), _ error) {
	if c.limiter == nil {
		return func() {}, nil
	}
	select {
	case c.limiter.ch <- struct{}{}:
		return func() { <-c.limiter.ch }, nil
	default:
		return nil, ErrResourceExhausted
	}
}

// WithName assigns a name to the worker. The name appears in
// [Handle.String] output and as the prefix on errors returned from
// [Handle.Join]. The default name is "worker".
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLimiter makes the launch subject to the Limiter's slot count.
func WithLimiter(l *Limiter) Option {
	return func(c *config) { c.limiter = l }
}

// WithOnExit registers a function to run on the worker's goroutine
// after the worker has returned, receiving the worker's error. Exit
// functions run in registration order, before [Handle.Join] unblocks.
func WithOnExit(fn func(error)) Option {
	return func(c *config) { c.onExit = append(c.onExit, fn) }
}

// A Limiter bounds the number of concurrently running workers that
// were launched with it. When all slots are taken, [Launch] fails with
// [ErrResourceExhausted] instead of blocking. A slot is returned when
// its worker exits.
type Limiter struct {
	ch chan struct{}
}

// NewLimiter returns a Limiter with the given number of slots.
func NewLimiter(slots int) *Limiter {
	if slots <= 0 {
		panic(errors.New("slots must be greater than zero"))
	}
	return &Limiter{ch: make(chan struct{}, slots)}
}

// Len returns the number of slots currently in use.
func (l *Limiter) Len() int {
	return len(l.ch)
}
