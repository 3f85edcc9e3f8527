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
)

func isUnixPlatform() bool { return true }

// armSuspendSignal intercepts SIGTSTP instead of letting its default
// disposition stop the process immediately, so the caller gets a chance
// to tear down raw mode/alt screen first.
func armSuspendSignal() (chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTSTP)
	return ch, func() { signal.Stop(ch) }
}

// rearmSuspendSignal re-installs the SIGTSTP interception that
// stopSelf's signal.Reset tore down, so a later suspend is caught again.
func rearmSuspendSignal(ch chan os.Signal) {
	signal.Notify(ch, syscall.SIGTSTP)
}

// stopSelf restores SIGTSTP's default disposition and raises it against
// the current process, which actually stops the process (all its
// threads) until a SIGCONT is delivered — by a shell's `fg`, or any other
// source of job control. It returns once continued.
func stopSelf() {
	signal.Reset(syscall.SIGTSTP)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}
