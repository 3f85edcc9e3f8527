package termcore

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
)

// readAvailable drains whatever bytes r has produced within timeout,
// stopping once no new bytes have arrived for a short quiet period. It
// never blocks past timeout even if nothing at all was written, since a
// real pty never reaches EOF on its own.
func readAvailable(t *testing.T, r io.Reader, timeout time.Duration) []byte {
	t.Helper()
	type chunk struct {
		b   []byte
		err error
	}
	out := make(chan chunk, 64)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				out <- chunk{b: cp}
			}
			if err != nil {
				return
			}
		}
	}()

	var collected bytes.Buffer
	quiet := time.NewTimer(timeout)
	defer quiet.Stop()
	for {
		select {
		case c := <-out:
			collected.Write(c.b)
			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}
			quiet.Reset(40 * time.Millisecond)
		case <-quiet.C:
			return collected.Bytes()
		}
	}
}

func openTestPty(t *testing.T) (master, slave *os.File, done func()) {
	t.Helper()
	m, s, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available in this environment: %v", err)
	}
	return m, s, func() {
		s.Close()
		m.Close()
	}
}

// S1 — init on an 80x24 TTY, put_text("Hello", rgb orange), flush.
// Expected output begins with an SGR reset, includes the rgb24 SGR
// sequence, the absolute cursor move to (1,1), then "Hello".
func TestAnsiDisplayScenarioS1HelloWorld(t *testing.T) {
	master, slave, done := openTestPty(t)
	defer done()

	cleanup := NewCleanup()
	disp := NewAnsiDisplay(slave, int(slave.Fd()), cleanup)
	caps := Capabilities{ColorDepth: DepthTrueColor, UTF8: true}
	if err := disp.Init(caps); err != nil {
		t.Fatalf("Init: %v", err)
	}
	readAvailable(t, master, 60*time.Millisecond) // drain Init's mode-setting bytes

	buf := NewBuffer(80, 24)
	buf.Limiter().SetFPS(0)
	attr := NewAttr(NewRGBColor(255, 128, 0), ColorDefaultValue, 0)
	buf.PutText(0, 0, "Hello", attr)

	if err := disp.Flush(buf); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := readAvailable(t, master, 100*time.Millisecond)

	if !bytes.HasPrefix(out, []byte("\x1b[0m")) {
		t.Fatalf("expected output to begin with an SGR reset, got %q", out)
	}
	if !bytes.Contains(out, []byte("\x1b[38;2;255;128;0m")) {
		t.Errorf("expected the rgb24 SGR sequence, got %q", out)
	}
	if !bytes.Contains(out, []byte("\x1b[1;1H")) {
		t.Errorf("expected an absolute cursor move to (1,1), got %q", out)
	}
	if !bytes.Contains(out, []byte("Hello")) {
		t.Errorf("expected the literal text Hello, got %q", out)
	}
}

// S2 — after S1, put_char(4,0,'!', same attr); flush moves the cursor to
// (5,1) 1-indexed and writes '!' alone.
func TestAnsiDisplayScenarioS2SingleCellUpdate(t *testing.T) {
	master, slave, done := openTestPty(t)
	defer done()

	cleanup := NewCleanup()
	disp := NewAnsiDisplay(slave, int(slave.Fd()), cleanup)
	caps := Capabilities{ColorDepth: DepthTrueColor, UTF8: true}
	disp.Init(caps)
	readAvailable(t, master, 60*time.Millisecond)

	buf := NewBuffer(80, 24)
	buf.Limiter().SetFPS(0)
	attr := NewAttr(NewRGBColor(255, 128, 0), ColorDefaultValue, 0)
	buf.PutText(0, 0, "Hello", attr)
	disp.Flush(buf)
	readAvailable(t, master, 60*time.Millisecond)

	buf.PutChar(4, 0, "!", attr)
	if err := disp.Flush(buf); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := readAvailable(t, master, 100*time.Millisecond)

	if !bytes.Contains(out, []byte("\x1b[1;5H")) {
		t.Errorf("expected the cursor positioned at column 5 row 1, got %q", out)
	}
	if !bytes.Contains(out, []byte("!")) {
		t.Errorf("expected '!' written, got %q", out)
	}
}

// Property 2: two consecutive flush() calls with no intervening mutation
// write zero bytes on the second call.
func TestAnsiDisplayFlushIdempotence(t *testing.T) {
	master, slave, done := openTestPty(t)
	defer done()

	cleanup := NewCleanup()
	disp := NewAnsiDisplay(slave, int(slave.Fd()), cleanup)
	disp.Init(Capabilities{ColorDepth: Depth256, UTF8: true})
	readAvailable(t, master, 60*time.Millisecond)

	buf := NewBuffer(20, 5)
	buf.Limiter().SetFPS(0)
	buf.PutText(0, 0, "idempotent", AttrDefault)
	disp.Flush(buf)
	readAvailable(t, master, 60*time.Millisecond)

	if err := disp.Flush(buf); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	out := readAvailable(t, master, 60*time.Millisecond)
	if len(out) != 0 {
		t.Errorf("expected zero bytes on the second flush with no mutation, got %q", out)
	}
}

// S3 — a wide character write, then an overwrite of its trailing half,
// reconciled onto the real terminal: the leading half must not survive
// as a dangling half-write, and the Flush output reflects the blanked
// leading cell plus the new narrow character.
func TestAnsiDisplayScenarioS3WideCharacterOverwrite(t *testing.T) {
	master, slave, done := openTestPty(t)
	defer done()

	cleanup := NewCleanup()
	disp := NewAnsiDisplay(slave, int(slave.Fd()), cleanup)
	disp.Init(Capabilities{ColorDepth: Depth256, UTF8: true})
	readAvailable(t, master, 60*time.Millisecond)

	buf := NewBuffer(10, 1)
	buf.Limiter().SetFPS(0)
	buf.PutText(0, 0, "漢", AttrDefault)
	disp.Flush(buf)
	readAvailable(t, master, 60*time.Millisecond)

	buf.PutChar(1, 0, "x", AttrDefault)
	if err := disp.Flush(buf); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := readAvailable(t, master, 100*time.Millisecond)

	if !bytes.Contains(out, []byte("x")) {
		t.Errorf("expected 'x' written at column 1, got %q", out)
	}
	back, _ := buf.Row(0)
	if back[0].Text() != " " || back[0].Width != 1 {
		t.Errorf("expected the leading half blanked in the buffer, got %+v", back[0])
	}
}
