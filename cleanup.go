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
	"os/signal"
	"sync"
	"syscall"
)

// Cleanup manages a stack of "undo" actions registered during backend
// init (restore termios, leave the alternate screen, show the cursor,
// reset SGR, disable mouse, disable bracketed paste). It runs the stack
// LIFO on whichever of normal shutdown, a fatal signal, or an uncaught
// panic happens first. Running is idempotent and reentrancy-safe: a
// signal arriving mid-run, or a second call after the stack already
// drained, is a no-op.
//
// The undo stack is append-only during init and drained at most once,
// guarded by a sync.Once rather than a plain bool so a signal handler
// racing the normal shutdown path can never observe a half-drained stack.
type Cleanup struct {
	mu      sync.Mutex
	actions []func()
	once    sync.Once
	sigCh   chan os.Signal
	done    chan struct{}
}

// NewCleanup returns a Cleanup with no actions registered yet.
func NewCleanup() *Cleanup {
	return &Cleanup{done: make(chan struct{})}
}

// Register pushes an undo action onto the stack. Actions must be
// registered in the same order their corresponding setup happened, since
// Run executes them LIFO (innermost setup undone first).
func (c *Cleanup) Register(undo func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, undo)
}

// WatchSignals arms handlers for SIGINT, SIGTERM, SIGHUP, and SIGQUIT
// that run Run and then re-raise the signal's default disposition so the
// process still exits the way the caller's environment expects (a
// process manager watching for a specific exit signal still sees it).
func (c *Cleanup) WatchSignals() {
	c.sigCh = make(chan os.Signal, 4)
	signal.Notify(c.sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go func() {
		select {
		case sig, ok := <-c.sigCh:
			if !ok {
				return
			}
			c.Run()
			signal.Stop(c.sigCh)
			proc, err := os.FindProcess(os.Getpid())
			if err == nil {
				_ = proc.Signal(sig)
			}
		case <-c.done:
		}
	}()
}

// Run executes the undo stack LIFO. Safe to call from a signal handler
// goroutine, from a recovered panic, or from ordinary shutdown code; only
// the first caller does any work.
func (c *Cleanup) Run() {
	c.once.Do(func() {
		c.mu.Lock()
		actions := c.actions
		c.mu.Unlock()
		for i := len(actions) - 1; i >= 0; i-- {
			func() {
				defer func() { recover() }() // an undo action must never abort the rest
				actions[i]()
			}()
		}
		select {
		case <-c.done: // StopWatching already closed it
		default:
			close(c.done)
		}
	})
}

// RecoverAndRun is meant to be deferred by whatever goroutine owns the
// terminal: `defer cleanup.RecoverAndRun()`. It runs the undo stack and,
// if called as part of unwinding a panic, re-panics afterward so the
// caller's own crash reporting still fires — the terminal is restored
// first, the crash is still visible second.
func (c *Cleanup) RecoverAndRun() {
	r := recover()
	c.Run()
	if r != nil {
		panic(r)
	}
}

// StopWatching tears down the signal handler goroutine without running
// the undo stack, for callers that have already run it manually.
func (c *Cleanup) StopWatching() {
	if c.sigCh != nil {
		signal.Stop(c.sigCh)
	}
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}
