// Copyright 2024 The Termcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build windows

package termcore

import (
	"time"

	"golang.org/x/term"
)

// resizePollInterval is how often watchResize polls the console size on
// Windows, which has no SIGWINCH equivalent reachable through x/term.
const resizePollInterval = 200 * time.Millisecond

func winsize(fd int) (cols, rows int, ok bool) {
	c, r, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, false
	}
	return c, r, true
}

// watchResize polls the console buffer size instead of waiting on a
// signal; resizePollInterval is short enough that a drag-resize still
// feels immediate to a user.
func watchResize(fd int, onResize func(cols, rows int)) func() {
	done := make(chan struct{})
	go func() {
		lastCols, lastRows, _ := winsize(fd)
		ticker := time.NewTicker(resizePollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cols, rows, ok := winsize(fd)
				if ok && (cols != lastCols || rows != lastRows) {
					lastCols, lastRows = cols, rows
					onResize(cols, rows)
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
