// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package poll

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vawter.tech/stoptoken"
)

func TestLoopStops(t *testing.T) {
	r := require.New(t)

	src, tok := stoptoken.New()
	var polls atomic.Int64

	done := make(chan error, 1)
	go func() {
		done <- Loop(tok, time.Millisecond, func() error {
			polls.Add(1)
			return nil
		})
	}()

	// Let a few laps happen, then signal.
	for polls.Load() < 3 {
		time.Sleep(time.Millisecond)
	}
	r.True(src.RequestStop())

	select {
	case err := <-done:
		r.NoError(err)
	case <-time.After(time.Second):
		r.Fail("loop did not observe the stop")
	}
}

func TestLoopError(t *testing.T) {
	r := require.New(t)

	_, tok := stoptoken.New()
	boom := errors.New("BOOM")
	calls := 0
	err := Loop(tok, time.Millisecond, func() error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	r.ErrorIs(err, boom)
	r.Equal(2, calls)
}

func TestLoopAlreadyStopped(t *testing.T) {
	r := require.New(t)

	src, tok := stoptoken.New()
	r.True(src.RequestStop())

	r.NoError(Loop(tok, time.Millisecond, func() error {
		r.Fail("must not be invoked after the stop")
		return nil
	}))
}

func TestWait(t *testing.T) {
	a := assert.New(t)

	src, tok := stoptoken.New()

	// Timeout path.
	a.False(Wait(tok, time.Millisecond))

	// Signal path.
	go src.RequestStop()
	a.True(Wait(tok, time.Second))

	// Already-stopped path.
	a.True(Wait(tok, 0))
}

func TestWaitZeroToken(t *testing.T) {
	a := assert.New(t)
	a.False(Wait(stoptoken.Token{}, time.Millisecond))
}
