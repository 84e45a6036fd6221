// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package poll provides rate-limited polling loops for workers that
// observe a [stoptoken.Token].
package poll

import (
	"errors"
	"time"

	"golang.org/x/time/rate"
	"vawter.tech/stoptoken"
)

// Loop invokes fn at most once per interval until a stop is requested
// or fn returns an error. A stop request ends the loop cleanly: Loop
// returns nil, whether the request arrives between invocations or
// while waiting out the interval.
//
// The pacing is enforced with a [rate.Limiter], so a slow fn does not
// cause a burst of catch-up invocations.
func Loop(tok stoptoken.Token, interval time.Duration, fn func() error) error {
	if interval <= 0 {
		panic(errors.New("interval must be greater than zero"))
	}
	l := rate.NewLimiter(rate.Every(interval), 1)
	ctx := tok.Context()
	for {
		if err := l.Wait(ctx); err != nil {
			// The only way the context cancels is the stop signal.
			if tok.StopRequested() {
				return nil
			}
			return err
		}
		if tok.StopRequested() {
			return nil
		}
		if err := fn(); err != nil {
			return err
		}
	}
}

// Wait blocks until a stop is requested or the duration elapses. It
// returns true when the stop arrived within the window. A zero Token
// can never signal, so Wait simply sleeps out the duration and returns
// false.
func Wait(tok stoptoken.Token, d time.Duration) bool {
	if tok.StopRequested() {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-tok.Done():
		return true
	case <-timer.C:
		return false
	}
}
