//go:build unix

package termcore

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
)

// S6 — with the input backend running against a live pty, two SIGWINCH
// signals within 5ms (simulating a 100x30 resize reported twice in quick
// succession) yield exactly one coalesced Resize{100,30} event.
func TestAnsiInputScenarioS6CoalescesRapidResize(t *testing.T) {
	_, slave, done := openTestPty(t)
	defer done()

	if err := pty.Setsize(slave, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Skipf("pty.Setsize unsupported in this environment: %v", err)
	}

	in, err := NewAnsiInput(slave, int(slave.Fd()), Capabilities{}, Config{})
	if err != nil {
		t.Fatalf("NewAnsiInput: %v", err)
	}
	defer in.Shutdown()

	if err := syscall.Kill(os.Getpid(), syscall.SIGWINCH); err != nil {
		t.Skipf("cannot self-signal SIGWINCH in this environment: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGWINCH); err != nil {
		t.Fatalf("second SIGWINCH: %v", err)
	}

	ev, ok := in.Poll(time.Now().Add(200 * time.Millisecond))
	if !ok {
		t.Fatal("expected a coalesced Resize event, got none")
	}
	if ev.Kind != EventResize {
		t.Fatalf("expected EventResize, got %v", ev.Kind)
	}
	if ev.Resize.Cols != 100 || ev.Resize.Rows != 30 {
		t.Errorf("expected Resize{100,30}, got %+v", ev.Resize)
	}

	if _, ok := in.Poll(time.Now().Add(50 * time.Millisecond)); ok {
		t.Error("expected the two rapid SIGWINCH signals to coalesce into exactly one event")
	}
}
