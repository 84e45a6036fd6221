// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package linger_test

import (
	"fmt"

	"vawter.tech/stoptoken"
	"vawter.tech/stoptoken/linger"
)

func ExampleRecorder() {
	// Construct the recorder and launch workers through it. A depth of
	// 1 records the location of the Launch call itself.
	rec := linger.NewRecorder(1)

	h, err := rec.Launch(func(tok stoptoken.Token) error {
		<-tok.Done()
		return nil
	})
	if err != nil {
		panic(err)
	}

	// One worker is still running.
	fmt.Println(len(rec.Callers()))

	// After the handle has been closed, nothing lingers. In a test,
	// linger.CheckClean(t, rec) would report any stragglers.
	_ = h.Close()
	fmt.Println(len(rec.Callers()))

	// Output:
	// 1
	// 0
}
