package plottemp

import (
	"reflect"
	"testing"
)

func squareRing(x0, y0, x1, y1 float64) Polygon {
	return Polygon{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func TestBuildMaskSquare(t *testing.T) {
	mask, ok := BuildMask(squareRing(2, 2, 5, 5), 10, 10)
	if !ok {
		t.Fatal("expected overlap")
	}
	if mask.OffX != 2 || mask.OffY != 2 || mask.W != 3 || mask.H != 3 {
		t.Errorf("unexpected window: %+v", mask)
	}
	if got := mask.Count(); got != 9 {
		t.Errorf("got %d masked pixels, want 9", got)
	}
}

func TestBuildMaskNoOverlap(t *testing.T) {
	if _, ok := BuildMask(squareRing(20, 20, 25, 25), 10, 10); ok {
		t.Error("expected no overlap for ring outside the grid")
	}
	if _, ok := BuildMask(squareRing(-8, -8, -2, -2), 10, 10); ok {
		t.Error("expected no overlap for negative ring")
	}
}

func TestBuildMaskClipsToGrid(t *testing.T) {
	mask, ok := BuildMask(squareRing(-2, -2, 3, 3), 10, 10)
	if !ok {
		t.Fatal("expected overlap")
	}
	if mask.OffX != 0 || mask.OffY != 0 || mask.W != 3 || mask.H != 3 {
		t.Errorf("unexpected window: %+v", mask)
	}
	if got := mask.Count(); got != 9 {
		t.Errorf("got %d masked pixels, want 9", got)
	}
}

func TestBuildMaskDeterministic(t *testing.T) {
	ring := Polygon{{1.3, 0.7}, {8.9, 1.1}, {7.2, 8.4}, {0.6, 6.2}}
	first, ok := BuildMask(ring, 10, 10)
	if !ok {
		t.Fatal("expected overlap")
	}
	second, ok := BuildMask(ring, 10, 10)
	if !ok {
		t.Fatal("expected overlap")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different masks")
	}
}

func TestContainsPointBoundary(t *testing.T) {
	ring := squareRing(2, 2, 5, 5)
	cases := []struct {
		x, y float64
		want bool
	}{
		{3.5, 3.5, true},  // interior
		{2, 3, true},      // on a vertical edge
		{3, 5, true},      // on a horizontal edge
		{2, 2, true},      // on a vertex
		{1.9, 3, false},   // just outside
		{5.01, 5, false},  // past the corner
		{3.5, 5.5, false}, // above
	}
	for _, c := range cases {
		if got := containsPoint(ring, c.x, c.y); got != c.want {
			t.Errorf("containsPoint(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestContainsPointClosedRing(t *testing.T) {
	open := squareRing(2, 2, 5, 5)
	closed := append(append(Polygon{}, open...), open[0])
	if !containsPoint(closed, 3.5, 3.5) {
		t.Error("closed ring rejected an interior point")
	}
	if containsPoint(closed, 6, 6) {
		t.Error("closed ring accepted an exterior point")
	}
}
