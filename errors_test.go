package termcore

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := newError(FatalIo, "Flush", errors.New("boom"))
	want := "termcore: Flush: fatal I/O error: boom"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}

	e2 := newError(NotATerminal, "Init", nil)
	want2 := "termcore: Init: not a terminal"
	if e2.Error() != want2 {
		t.Errorf("got %q, want %q", e2.Error(), want2)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	e := newError(FatalIo, "Flush", inner)
	if !errors.Is(e, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(newError(TransientIo, "op", nil)) {
		t.Error("expected TransientIo to report transient")
	}
	if IsTransient(newError(FatalIo, "op", nil)) {
		t.Error("FatalIo must not report transient")
	}
	wrapped := fmt.Errorf("context: %w", newError(TransientIo, "op", nil))
	if !IsTransient(wrapped) {
		t.Error("expected IsTransient to see through fmt.Errorf wrapping")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("a non-termcore error must not report transient")
	}
}

func TestErrorKindString(t *testing.T) {
	kinds := []ErrorKind{NotATerminal, CapabilityMissing, TransientIo, FatalIo, ParseOverflow, ResizeOutOfRange}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "" || s == "unknown error" {
			t.Errorf("ErrorKind %d: unexpected String() %q", k, s)
		}
		if seen[s] {
			t.Errorf("duplicate String() %q for kind %d", s, k)
		}
		seen[s] = true
	}
}
