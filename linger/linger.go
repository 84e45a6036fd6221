// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

// Package linger contains a utility for reporting on where lingering
// workers were originally launched.
package linger

import (
	"runtime"
	"sync"
	"sync/atomic"

	"vawter.tech/stoptoken"
)

// This value is sensitive to the code structure.
const callersOffset = 2

// NewRecorder constructs a [Recorder] that samples the call stack at
// the requested depth. A depth of 1 will record the location at which
// [Recorder.Launch] was executed.
func NewRecorder(depth int) *Recorder {
	return &Recorder{depth: depth}
}

// A Recorder tracks the call stack of every [Recorder.Launch] whose
// worker has not yet exited. It is primarily useful for testing
// scenarios, to ensure that no workers remain after the handles under
// test have been closed.
type Recorder struct {
	counter atomic.Uintptr
	data    sync.Map
	depth   int
}

// Callers returns a snapshot of the caller stacks associated with any
// tracked workers that are currently running.
func (r *Recorder) Callers() [][]uintptr {
	var ret [][]uintptr
	r.data.Range(func(_, value any) bool {
		ret = append(ret, value.([]uintptr))
		return true
	})
	return ret
}

// Launch samples the caller's stack and delegates to
// [stoptoken.Launch], arranging for the sample to be discarded when
// the worker exits.
func (r *Recorder) Launch(fn stoptoken.Func, opts ...stoptoken.Option) (*stoptoken.Handle, error) {
	pc := make([]uintptr, r.depth)
	pc = pc[:runtime.Callers(callersOffset, pc)]

	id := r.counter.Add(1)
	r.data.Store(id, pc)

	opts = append(opts, stoptoken.WithOnExit(func(error) {
		r.data.Delete(id)
	}))
	h, err := stoptoken.Launch(fn, opts...)
	if err != nil {
		r.data.Delete(id)
		return nil, err
	}
	return h, nil
}
