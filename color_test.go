package termcore

import "testing"

func TestDowngradeTrueColorPassesThrough(t *testing.T) {
	c := NewRGBColor(10, 20, 30)
	if got := Downgrade(c, DepthTrueColor); got != c {
		t.Errorf("got %+v, want unchanged %+v", got, c)
	}
}

func TestDowngradeDefaultColorNeverChanges(t *testing.T) {
	for _, depth := range []ColorDepth{DepthMono, Depth16, Depth256, DepthTrueColor} {
		if got := Downgrade(ColorDefaultValue, depth); got.Kind != ColorDefault {
			t.Errorf("depth %v: default color should stay default, got %+v", depth, got)
		}
	}
}

func TestDowngradeRGBToMonoIsDefault(t *testing.T) {
	got := Downgrade(NewRGBColor(255, 0, 0), DepthMono)
	if got.Kind != ColorDefault {
		t.Errorf("expected mono downgrade to default, got %+v", got)
	}
}

func TestDowngradeRGBTo256PicksIndexedKind(t *testing.T) {
	got := Downgrade(NewRGBColor(200, 30, 30), Depth256)
	if got.Kind != ColorIndexed256 {
		t.Errorf("expected ColorIndexed256, got kind %v", got.Kind)
	}
}

func TestDowngradeRGBTo16PicksIndexedKind(t *testing.T) {
	got := Downgrade(NewRGBColor(200, 30, 30), Depth16)
	if got.Kind != ColorIndexed16 || got.Value > 15 {
		t.Errorf("expected a valid ColorIndexed16, got %+v", got)
	}
}

func TestNearestIndexed256PureRed(t *testing.T) {
	idx := NearestIndexed256(NewRGBColor(255, 0, 0))
	// Both index 9 (bright red) and index 196 (the 6x6x6 cube's red) hold
	// exactly (255,0,0); either is a zero-distance match.
	if got := xterm256Palette[idx]; got != NewRGBColor(255, 0, 0) {
		t.Errorf("expected an index whose palette entry is pure red, got %d (%+v)", idx, got)
	}
}

func TestRGBRoundTrip(t *testing.T) {
	c := NewRGBColor(12, 34, 56)
	r, g, b := c.RGB()
	if r != 12 || g != 34 || b != 56 {
		t.Errorf("got (%d,%d,%d), want (12,34,56)", r, g, b)
	}
}
