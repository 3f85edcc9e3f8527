package termcore

import "testing"

func fakeEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestProbeDetectColorTermTrueColor(t *testing.T) {
	p := NewProbe()
	p.Env = fakeEnv(map[string]string{"COLORTERM": "truecolor", "TERM": "xterm"})
	p.Stdin, p.Stdout = nil, nil
	caps := p.Detect()
	if caps.ColorDepth != DepthTrueColor {
		t.Errorf("got %v, want DepthTrueColor", caps.ColorDepth)
	}
}

func TestProbeDetect256ColorSuffix(t *testing.T) {
	p := NewProbe()
	p.Env = fakeEnv(map[string]string{"TERM": "screen-256color"})
	caps := p.Detect()
	if caps.ColorDepth != Depth256 {
		t.Errorf("got %v, want Depth256", caps.ColorDepth)
	}
}

func TestProbeDetectNoColorForcesMonoEvenWithColorterm(t *testing.T) {
	p := NewProbe()
	p.Env = fakeEnv(map[string]string{"COLORTERM": "truecolor", "NO_COLOR": "1"})
	caps := p.Detect()
	if caps.ColorDepth != DepthMono {
		t.Errorf("NO_COLOR must force mono, got %v", caps.ColorDepth)
	}
}

func TestProbeDetectUTF8Locale(t *testing.T) {
	p := NewProbe()
	p.Env = fakeEnv(map[string]string{"LANG": "en_US.UTF-8"})
	if !p.Detect().UTF8 {
		t.Error("expected UTF8 true for en_US.UTF-8")
	}

	p2 := NewProbe()
	p2.Env = fakeEnv(map[string]string{"LANG": "en_US.ISO-8859-1"})
	if p2.Detect().UTF8 {
		t.Error("expected UTF8 false for a non-UTF-8 locale")
	}
}

func TestProbeDetectCharsetFromLocale(t *testing.T) {
	p := NewProbe()
	p.Env = fakeEnv(map[string]string{"LC_CTYPE": "en_US.ISO-8859-1"})
	if got := p.detectCharset(); got != "ISO-8859-1" {
		t.Errorf("got %q, want %q", got, "ISO-8859-1")
	}
}

func TestProbeDumbTerminalGetsNoFrills(t *testing.T) {
	p := NewProbe()
	p.Env = fakeEnv(map[string]string{"TERM": "dumb"})
	caps := p.Detect()
	if caps.AltScreen || caps.BracketedPaste || caps.CursorShapes {
		t.Errorf("a dumb terminal should claim no frills, got %+v", caps)
	}
}

func TestProbeScorePrefersAnsiOnModernTTY(t *testing.T) {
	p := NewProbe()
	caps := Capabilities{ColorDepth: DepthTrueColor, Mouse: MouseSGR, BracketedPaste: true, TerminalID: "xterm-256color"}
	if got := p.Score(caps, true); got != backendAnsi {
		t.Errorf("got %v, want backendAnsi", got)
	}
}

func TestProbeScoreFallsBackToCursesOnNonUnix(t *testing.T) {
	p := NewProbe()
	caps := Capabilities{ColorDepth: DepthTrueColor, TerminalID: "xterm"}
	if got := p.Score(caps, false); got != backendCurses {
		t.Errorf("got %v, want backendCurses on non-unix", got)
	}
}

func TestProbeScoreDumbTerminalGetsCurses(t *testing.T) {
	p := NewProbe()
	caps := Capabilities{TerminalID: "dumb"}
	if got := p.Score(caps, true); got != backendCurses {
		t.Errorf("got %v, want backendCurses for a dumb terminal", got)
	}
}
