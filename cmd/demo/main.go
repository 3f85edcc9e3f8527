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

// Command demo is a minimal exercise of the termcore library: it opens a
// terminal, draws one of a couple of scenes directly onto its Buffer,
// and waits up to five seconds for a keypress before restoring the
// terminal and exiting.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanterholt/termcore"
)

func main() {
	cfgPath := flag.String("config", "", "path to a demo.toml scene/fps config")
	flag.Parse()

	cfg := loadDemoConfig(*cfgPath)

	cfg2 := termcore.DefaultConfig()
	cfg2.FPS = cfg.FPS

	term, err := termcore.Open(cfg2)
	if err != nil {
		fmt.Fprintln(os.Stderr, "demo: open:", err)
		os.Exit(1)
	}
	defer term.Close()

	drawScene(term, cfg.Scene)
	if err := term.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, "demo: flush:", err)
		os.Exit(1)
	}

	waitForKey(term)
}

// drawScene paints one named scene into term.Buffer. Unknown scene names
// fall back to "hello".
func drawScene(term *termcore.Terminal, scene string) {
	buf := term.Buffer
	cols, rows := buf.Size()
	buf.FillRect(0, 0, cols, rows, " ", termcore.AttrDefault)

	switch scene {
	case "rainbow":
		drawRainbow(buf, cols, rows)
	default:
		drawHello(buf, term.Capabilities())
	}

	footer := termcore.NewAttr(termcore.ColorDefaultValue, termcore.ColorDefaultValue, termcore.StyleItalic)
	buf.PutText(0, rows-1, "press any key to exit", footer)
}

func drawHello(buf *termcore.Buffer, caps termcore.Capabilities) {
	orange := termcore.NewAttr(termcore.NewRGBColor(255, 128, 0), termcore.ColorDefaultValue, termcore.StyleBold)
	buf.PutText(2, 1, "Hello, termcore!", orange)

	plain := termcore.NewAttr(termcore.ColorDefaultValue, termcore.ColorDefaultValue, 0)
	buf.PutText(2, 3, fmt.Sprintf("color depth: %v", caps.ColorDepth), plain)
	buf.PutText(2, 4, fmt.Sprintf("utf8: %v", caps.UTF8), plain)
}

func drawRainbow(buf *termcore.Buffer, cols, rows int) {
	for y := 0; y < rows-1; y++ {
		r := uint8((y * 255) / maxInt(rows-1, 1))
		attr := termcore.NewAttr(termcore.NewRGBColor(255-r, r, 128), termcore.ColorDefaultValue, 0)
		buf.FillRect(0, y, cols, 1, "#", attr)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// waitForKey blocks until a key event arrives or five seconds pass with
// nothing pressed, resizing and flushing the terminal on a resize event.
func waitForKey(term *termcore.Terminal) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ev, ok := term.PollEvent(time.Now().Add(100 * time.Millisecond))
		if !ok {
			continue
		}
		switch ev.Kind {
		case termcore.EventKey:
			return
		case termcore.EventResize:
			if err := term.Resize(ev.Resize.Cols, ev.Resize.Rows); err != nil {
				fmt.Fprintln(os.Stderr, "demo: resize:", err)
			}
			term.Flush()
		}
	}
}
