package termcore

import "testing"

func TestDamageRegionExpand(t *testing.T) {
	tests := []struct {
		name          string
		start, end    int // seed region, empty if start==end==0 and empty flag set
		seedEmpty     bool
		x, n          int
		wantStart     int
		wantEnd       int
		wantEmptyPost bool
	}{
		{"from empty", 0, 0, true, 5, 3, 5, 8, false},
		{"grows left", 5, 10, false, 2, 1, 2, 10, false},
		{"grows right", 5, 10, false, 12, 1, 5, 13, false},
		{"within existing", 5, 10, false, 6, 2, 5, 10, false},
		{"zero length noop", 5, 10, false, 2, 0, 5, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DamageRegion{Start: tt.start, End: tt.end, empty: tt.seedEmpty}
			d.Expand(tt.x, tt.n)
			if d.Start != tt.wantStart || d.End != tt.wantEnd {
				t.Errorf("Expand(%d,%d) = [%d,%d), want [%d,%d)", tt.x, tt.n, d.Start, d.End, tt.wantStart, tt.wantEnd)
			}
			if d.IsEmpty() != tt.wantEmptyPost {
				t.Errorf("IsEmpty() = %v, want %v", d.IsEmpty(), tt.wantEmptyPost)
			}
		})
	}
}

func TestDamageRegionReset(t *testing.T) {
	d := DamageRegion{Start: 2, End: 9}
	d.Reset()
	if !d.IsEmpty() {
		t.Error("Reset should make the region empty")
	}
}

func TestDamageRegionClamp(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		width      int
		wantEmpty  bool
		wantStart  int
		wantEnd    int
	}{
		{"within bound", 2, 8, 10, false, 2, 8},
		{"clamped end", 2, 15, 10, false, 2, 10},
		{"fully outside", 12, 20, 10, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DamageRegion{Start: tt.start, End: tt.end}
			d.Clamp(tt.width)
			if d.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", d.IsEmpty(), tt.wantEmpty)
			}
			if !tt.wantEmpty && (d.Start != tt.wantStart || d.End != tt.wantEnd) {
				t.Errorf("Clamp(%d) = [%d,%d), want [%d,%d)", tt.width, d.Start, d.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDamageRegionInvariant(t *testing.T) {
	d := emptyDamageRegion()
	d.Expand(3, 4)
	d.Expand(0, 2)
	d.Expand(10, 1)
	if !(0 <= d.Start && d.Start <= d.End) {
		t.Fatalf("invariant broken: start=%d end=%d", d.Start, d.End)
	}
}
