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

//go:build unix

package termcore

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// winsize queries the kernel directly for the current character-cell
// size of fd, bypassing whatever COLUMNS/LINES an application may have
// stale in its environment.
func winsize(fd int) (cols, rows int, ok bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}

// watchResize arms a SIGWINCH handler that re-queries winsize and invokes
// onResize with the new dimensions. The returned stop func tears down the
// signal handler; it does not itself fire a final callback.
func watchResize(fd int, onResize func(cols, rows int)) func() {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGWINCH)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				if cols, rows, ok := winsize(fd); ok {
					onResize(cols, rows)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
