// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package stoptoken

import (
	"os"
	"os/signal"
)

// StopOnReceive will request a stop on the Source when a value is
// received from the channel or if the channel is closed. If a stop has
// already been requested, the watching goroutine exits without further
// effect.
func StopOnReceive[T any](src *Source, ch <-chan T) {
	go func() {
		select {
		case <-ch:
			src.RequestStop()
		case <-src.Token().Done():
		}
	}()
}

// StopOnSignal requests a stop when any of the given OS signals is
// delivered. It is a convenience wrapper combining [os/signal.Notify]
// with [StopOnReceive].
func StopOnSignal(src *Source, sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	StopOnReceive(src, ch)
}
