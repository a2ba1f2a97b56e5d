package plottemp

import "math"

// PixelMask is a plot footprint rasterized over a crop window of the full
// pixel grid. OffX and OffY locate the window within the raster; Inside is
// row-major over the window.
type PixelMask struct {
	OffX, OffY int
	W, H       int
	Inside     []bool
}

// Count returns the number of pixels inside the footprint.
func (m *PixelMask) Count() int {
	n := 0
	for _, in := range m.Inside {
		if in {
			n++
		}
	}
	return n
}

// BuildMask rasterizes a pixel-space ring onto a raster grid. The window is
// the ring's integer bounding box clipped to the grid. ok is false when the
// clipped window has zero area, meaning the plot does not overlap the
// raster at all; callers must treat that as a skip, not as empty data.
//
// A pixel belongs to the mask when its center falls inside the ring or on
// its boundary. The test is purely arithmetic over the inputs, so identical
// inputs always yield identical masks.
func BuildMask(ring Polygon, width, height int) (*PixelMask, bool) {
	if len(ring) < 3 {
		return nil, false
	}
	minX, minY, maxX, maxY := ring.Bounds()
	x0 := clampInt(int(math.Floor(minX)), 0, width)
	y0 := clampInt(int(math.Floor(minY)), 0, height)
	x1 := clampInt(int(math.Ceil(maxX)), 0, width)
	y1 := clampInt(int(math.Ceil(maxY)), 0, height)
	if x1 <= x0 || y1 <= y0 {
		return nil, false
	}

	m := &PixelMask{OffX: x0, OffY: y0, W: x1 - x0, H: y1 - y0}
	m.Inside = make([]bool, m.W*m.H)
	for row := 0; row < m.H; row++ {
		cy := float64(y0+row) + 0.5
		for col := 0; col < m.W; col++ {
			cx := float64(x0+col) + 0.5
			m.Inside[row*m.W+col] = containsPoint(ring, cx, cy)
		}
	}
	return m, true
}

// containsPoint reports whether (x, y) lies inside the ring or on its
// boundary. Boundary points count as inside so small plots keep the pixels
// straddling their edges.
func containsPoint(ring Polygon, x, y float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[j], ring[i]
		if onSegment(a, b, x, y) {
			return true
		}
		if (b.Y > y) != (a.Y > y) {
			cross := (a.X-b.X)*(y-b.Y)/(a.Y-b.Y) + b.X
			if x < cross {
				inside = !inside
			}
		}
	}
	return inside
}

const segmentEps = 1e-9

// onSegment reports whether (x, y) lies on the segment a-b within floating
// tolerance.
func onSegment(a, b Vertex, x, y float64) bool {
	cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X)
	scale := math.Max(1, math.Abs(b.X-a.X)+math.Abs(b.Y-a.Y))
	if math.Abs(cross) > segmentEps*scale {
		return false
	}
	if x < math.Min(a.X, b.X)-segmentEps || x > math.Max(a.X, b.X)+segmentEps {
		return false
	}
	if y < math.Min(a.Y, b.Y)-segmentEps || y > math.Max(a.Y, b.Y)+segmentEps {
		return false
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
