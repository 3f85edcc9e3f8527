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

import (
	"os"
)

// PlatformFactory selects and constructs the (Display, Input) pair for
// the running process: it runs Probe, honors a Config backend override
// or the NO_COLOR signal, and falls back through the ANSI -> termios-raw
// -> curses-fallback chain via Recovery if construction of a preferred
// tier fails outright. A tier whose Init fails with CapabilityMissing is
// renegotiated in place first: Open retries the same tier with
// Recovery.Downgrade's reduced capabilities before it ever escalates to
// the next tier, per §4.9's renegotiate-before-escalate order.
type PlatformFactory struct {
	Stdin    *os.File
	Stdout   *os.File
	Config   Config
	Probe    *Probe
	Recovery *Recovery
	Cleanup  *Cleanup
}

// NewPlatformFactory wires a factory reading/writing the process's real
// stdin/stdout, with a freshly loaded Config and default Probe/Recovery.
func NewPlatformFactory() *PlatformFactory {
	return &PlatformFactory{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Config:   LoadConfigFromEnv(),
		Probe:    NewProbe(),
		Recovery: NewRecovery(),
		Cleanup:  NewCleanup(),
	}
}

// Open picks a backend, builds its Display and Input, and initializes
// the Display with the detected (and possibly hinted/downgraded)
// capabilities. If Init fails and Recovery.Classify calls the failure
// CapabilityMissing, Open downgrades caps and rebuilds the same tier in
// place; once a downgrade no longer changes caps (or the failure isn't a
// capability mismatch), it escalates through the chain per Recovery.Next
// until curses-fallback itself fails, at which point it returns the last
// error.
func (f *PlatformFactory) Open() (Display, Input, Capabilities, error) {
	if f.Config.ProbeTimeout > 0 {
		f.Probe.QueryTimeout = f.Config.ProbeTimeout
	}
	caps := f.Probe.Detect()
	if f.Config.NoColor {
		caps.ColorDepth = DepthMono
	}

	kind := f.Probe.Score(caps, isUnixPlatform())
	if hint, ok := f.Config.BackendOverride(); ok {
		kind = hint
	}

	for {
		disp, in, err := f.build(kind, caps)
		if err == nil {
			if initErr := disp.Init(caps); initErr != nil {
				_ = in.Shutdown()
				if f.Recovery.Classify(initErr) == CapabilityMissing {
					if downgraded := f.Recovery.Downgrade(caps); downgraded != caps {
						caps = downgraded
						continue
					}
				}
				next, ok := f.Recovery.Next(kind)
				if !ok {
					return nil, nil, caps, initErr
				}
				kind = next
				continue
			}
			return disp, in, caps, nil
		}
		next, ok := f.Recovery.Next(kind)
		if !ok {
			return nil, nil, caps, err
		}
		kind = next
	}
}

func (f *PlatformFactory) build(kind backendKind, caps Capabilities) (Display, Input, error) {
	fd := int(f.Stdin.Fd())
	switch kind {
	case backendAnsi:
		disp := NewAnsiDisplay(f.Stdout, fd, f.Cleanup)
		in, err := NewAnsiInput(f.Stdin, fd, caps, f.Config)
		if err != nil {
			return nil, nil, err
		}
		return disp, in, nil
	case backendTermiosRaw:
		disp := NewTermiosDisplay(f.Stdout, fd, f.Cleanup)
		in, err := NewTermiosInput(f.Stdin, fd, caps, f.Config)
		if err != nil {
			return nil, nil, err
		}
		return disp, in, nil
	default:
		disp := NewCursesDisplay(f.Stdout, fd, f.Cleanup)
		in, err := NewCursesInput(f.Stdin, fd, f.Config)
		if err != nil {
			return nil, nil, err
		}
		return disp, in, nil
	}
}
