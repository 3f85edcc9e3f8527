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

import "os"

func isUnixPlatform() bool { return false }

// armSuspendSignal is a no-op on Windows: there is no SIGTSTP-style job
// control stop signal to intercept.
func armSuspendSignal() (chan os.Signal, func()) {
	return nil, func() {}
}

func rearmSuspendSignal(ch chan os.Signal) {}

// stopSelf is a no-op on Windows; Terminal.Suspend still tears down the
// display's special modes, it just never actually stops the process.
func stopSelf() {}
