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

import "time"

// Terminal is the embedding surface (§6): construct one with Open, mutate
// its Buffer, call Flush to reconcile onto the real terminal, PollEvent
// for input, and Close to restore everything Open changed. It is not
// safe for concurrent use by more than one goroutine calling its output
// methods, matching the single-owner-thread model of §5; PollEvent may
// be called from a second goroutine since InputBackend is independently
// synchronized.
type Terminal struct {
	Buffer      *Buffer
	caps        Capabilities
	display     Display
	input       Input
	cleanup     *Cleanup
	recovery    *Recovery
	factory     *PlatformFactory
	stopSuspend func()
}

// suspendable is satisfied by a Display that can tear down its special
// modes (raw mode, alternate screen, mouse/paste reporting) and
// re-establish them later, used by Suspend/Resume around a SIGTSTP-style
// stop. A Display that doesn't implement it (none currently) just
// doesn't participate: Suspend/Resume still stop/continue the process.
type suspendable interface {
	suspend() error
	resume(caps Capabilities) error
}

// eventInjector is satisfied by an Input that can deliver a
// synthetically-generated Event (one that didn't arrive over the wire)
// through the same Poll channel as everything else.
type eventInjector interface {
	inject(Event)
}

// Open constructs a platform-appropriate backend pair, sizes a Buffer to
// the detected terminal dimensions, and arms signal-driven cleanup.
func Open(cfg Config) (*Terminal, error) {
	f := NewPlatformFactory()
	f.Config = cfg
	disp, in, caps, err := f.Open()
	if err != nil {
		return nil, err
	}
	f.Cleanup.WatchSignals()

	cols, rows, ok := winsize(int(f.Stdin.Fd()))
	if !ok || cols <= 0 || rows <= 0 {
		cols, rows = fallbackCols, fallbackRows
	}
	buf := NewBuffer(cols, rows)
	buf.Limiter().SetFPS(cfg.FPS)

	t := &Terminal{
		Buffer:   buf,
		caps:     caps,
		display:  disp,
		input:    in,
		cleanup:  f.Cleanup,
		recovery: f.Recovery,
		factory:  f,
	}
	t.armSuspend()
	return t, nil
}

// armSuspend watches for SIGTSTP (e.g. Ctrl-Z at a real terminal) and
// handles it the same way Suspend/Resume do explicitly: tear down the
// terminal's special modes before the process actually stops, so a
// shell's job control sees a clean cooked-mode terminal while the
// process is stopped, then restore them and force a repaint on SIGCONT.
// No-op on platforms without SIGTSTP-based job control.
func (t *Terminal) armSuspend() {
	ch, stop := armSuspendSignal()
	if ch == nil {
		return
	}
	t.stopSuspend = stop
	go func() {
		for range ch {
			t.injectSignal(SignalSuspend)
			if s, ok := t.display.(suspendable); ok {
				s.suspend()
			}
			stopSelf()
			t.resumeModes()
			t.injectSignal(SignalContinue)
			rearmSuspendSignal(ch)
		}
	}()
}

// Suspend tears down the terminal's special modes and stops the process
// via SIGTSTP, exactly as armSuspend's transparent handling does, for a
// caller that wants to trigger a suspend itself (e.g. bound to a key)
// rather than waiting for the OS to deliver one. It blocks until the
// process is continued; call Resume afterward to re-establish the
// terminal's modes and force a repaint.
func (t *Terminal) Suspend() error {
	if s, ok := t.display.(suspendable); ok {
		if err := s.suspend(); err != nil {
			return err
		}
	}
	stopSelf()
	return nil
}

// Resume re-enters the modes Suspend tore down and invalidates the
// Buffer so the next Flush redraws everything (the terminal's real
// contents can't be trusted after a stop/continue cycle: a shell or
// another foreground program may have written to it in the meantime).
func (t *Terminal) Resume() error {
	return t.resumeModes()
}

func (t *Terminal) resumeModes() error {
	if s, ok := t.display.(suspendable); ok {
		if err := s.resume(t.caps); err != nil {
			return err
		}
	}
	t.Buffer.Invalidate()
	return nil
}

// injectSignal delivers a SignalEvent through the input backend's normal
// Poll channel, for a caller that wants to react to a suspend/continue
// cycle explicitly instead of (or in addition to) the transparent
// mode teardown/restore armSuspend and Suspend/Resume already do.
func (t *Terminal) injectSignal(kind SignalKind) {
	if inj, ok := t.input.(eventInjector); ok {
		inj.inject(newSignalEvent(SignalEvent{Kind: kind}))
	}
}

// Capabilities returns what the platform factory detected (after any
// NO_COLOR/backend-hint override was applied).
func (t *Terminal) Capabilities() Capabilities { return t.caps }

// Flush paces itself against the Buffer's FpsLimiter and reconciles the
// pending frame onto the real terminal. A transient I/O failure is
// retried per ErrorRecovery's backoff policy; a fatal one is returned
// as-is for the caller to decide whether to Close and fall back.
func (t *Terminal) Flush() error {
	t.Buffer.Limiter().Wait()
	return t.recovery.Retry(func() error { return t.display.Flush(t.Buffer) })
}

// SetCursor positions and optionally hides/shows the hardware cursor.
func (t *Terminal) SetCursor(x, y int, visible bool, shape CursorShape) {
	t.display.SetCursor(x, y, visible, shape)
}

// Beep rings the terminal bell.
func (t *Terminal) Beep() error { return t.display.Beep() }

// RegisterRuneFallback registers an ASCII-safe substitute for r, used
// whenever the active backend's charset can't encode it directly. Only
// takes effect on a non-UTF-8 locale; a UTF-8 terminal has no encode
// step that could fail in the first place.
func (t *Terminal) RegisterRuneFallback(r rune, subst string) {
	t.display.RegisterRuneFallback(r, subst)
}

// UnregisterRuneFallback removes a mapping added by RegisterRuneFallback.
func (t *Terminal) UnregisterRuneFallback(r rune) {
	t.display.UnregisterRuneFallback(r)
}

// CanDisplay reports whether r will render as itself (or, if
// checkFallbacks, via some registered or built-in substitute) on the
// active backend.
func (t *Terminal) CanDisplay(r rune, checkFallbacks bool) bool {
	return t.display.CanDisplay(r, checkFallbacks)
}

// PollEvent waits up to deadline for the next input event. A zero
// deadline means "return immediately if nothing is queued".
func (t *Terminal) PollEvent(deadline time.Time) (Event, bool) {
	return t.input.Poll(deadline)
}

// HasPendingEvent reports whether PollEvent would return immediately.
func (t *Terminal) HasPendingEvent() bool { return t.input.Peek() }

// Resize adjusts the Buffer to a new size, invalidating it so the next
// Flush is a full repaint (the terminal's actual contents after a resize
// can no longer be trusted to match the old front grid). A zero or
// out-of-bounds (cols,rows) is clamped by Buffer.Resize rather than
// rejected; the returned error reports that clamp (ResizeOutOfRange) but
// the Buffer is always left at a valid, usable size.
func (t *Terminal) Resize(cols, rows int) error {
	err := t.Buffer.Resize(cols, rows)
	t.Buffer.Invalidate()
	return err
}

// Close runs the cleanup stack (leaving alt screen, restoring termios,
// disabling mouse/paste, showing the cursor) and shuts down the input
// backend. Calling Close twice, or Close after a signal already ran the
// cleanup stack, is safe.
func (t *Terminal) Close() error {
	if t.stopSuspend != nil {
		t.stopSuspend()
	}
	err := t.display.Shutdown()
	if ierr := t.input.Shutdown(); err == nil {
		err = ierr
	}
	t.cleanup.StopWatching()
	return err
}
