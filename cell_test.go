package termcore

import "testing"

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"blank", blankCell, " "},
		{"trailing", trailingCell(AttrDefault), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellSetText(t *testing.T) {
	var c Cell
	c.setText("漢", 2, AttrDefault)
	if c.Text() != "漢" || c.Width != 2 {
		t.Errorf("setText: got text=%q width=%d", c.Text(), c.Width)
	}
	if !c.dirty {
		t.Error("setText should mark the cell dirty")
	}
}

func TestCellSetTextTruncatesOverlongCluster(t *testing.T) {
	var c Cell
	long := ""
	for i := 0; i < 40; i++ {
		long += "a"
	}
	c.setText(long, 1, AttrDefault)
	if len(c.Text()) > maxClusterBytes {
		t.Errorf("Text() length %d exceeds maxClusterBytes %d", len(c.Text()), maxClusterBytes)
	}
}

func TestCellIsTrailing(t *testing.T) {
	lead := Cell{}
	lead.setText("漢", 2, AttrDefault)
	trail := trailingCell(AttrDefault)

	if lead.IsTrailing() {
		t.Error("leading half must not report IsTrailing")
	}
	if !trail.IsTrailing() {
		t.Error("trailing marker must report IsTrailing")
	}
}

func TestCellEqual(t *testing.T) {
	a := Cell{}
	a.setText("x", 1, AttrDefault)
	b := Cell{}
	b.setText("x", 1, AttrDefault)
	b.dirty = false
	a.dirty = true

	if !a.Equal(b) {
		t.Error("Equal should ignore the dirty flag")
	}

	c := Cell{}
	c.setText("y", 1, AttrDefault)
	if a.Equal(c) {
		t.Error("cells with different text must not be Equal")
	}
}
