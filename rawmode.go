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

package termcore

import "golang.org/x/term"

// rawModeState remembers the terminal's original mode so it can be put
// back exactly as found. golang.org/x/term abstracts the termios/console
// mode differences between Unix and Windows, so the ANSI and
// termios-raw backends share this instead of each poking ioctls
// themselves.
type rawModeState struct {
	fd    int
	saved *term.State
}

// enterRawMode disables echo, canonical processing, and signal
// generation on fd, returning a handle that restores the prior mode.
func enterRawMode(fd int) (*rawModeState, error) {
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, newError(NotATerminal, "enterRawMode", err)
	}
	return &rawModeState{fd: fd, saved: saved}, nil
}

// restore is a no-op on a nil receiver or an unset state, so a backend
// can register it unconditionally as a cleanup action.
func (r *rawModeState) restore() error {
	if r == nil || r.saved == nil {
		return nil
	}
	return term.Restore(r.fd, r.saved)
}
