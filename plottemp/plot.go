package plottemp

import (
	"github.com/golang/geo/s2"
)

// Vertex is a single polygon vertex, in world or pixel coordinates
// depending on context.
type Vertex struct {
	X float64
	Y float64
}

// Polygon is an ordered ring of vertices. The closing vertex may be
// repeated or omitted; containment tests treat the ring as closed either
// way.
type Polygon []Vertex

// Plot is one experimental plot boundary as supplied by the plot source.
// The boundary is expressed in the reference system identified by EPSG.
// Plots are read-only to the pipeline.
type Plot struct {
	ID        string
	Name      string
	Treatment string
	EPSG      int
	Boundary  Polygon
}

// Bounds returns the axis-aligned bounding box of the ring.
func (p Polygon) Bounds() (minX, minY, maxX, maxY float64) {
	if len(p) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = p[0].X, p[0].X
	minY, maxY = p[0].Y, p[0].Y
	for _, v := range p[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return minX, minY, maxX, maxY
}

// Centroid returns the mean of the distinct ring vertices. Good enough for
// the point placement the geostreams output needs.
func (p Polygon) Centroid() Vertex {
	verts := p
	if len(verts) > 1 && verts[0] == verts[len(verts)-1] {
		verts = verts[:len(verts)-1]
	}
	if len(verts) == 0 {
		return Vertex{}
	}
	var c Vertex
	for _, v := range verts {
		c.X += v.X
		c.Y += v.Y
	}
	c.X /= float64(len(verts))
	c.Y /= float64(len(verts))
	return c
}

// rect returns the ring's bounding box as an s2 rect. Only meaningful for
// rings in geographic coordinates, x as longitude and y as latitude.
func (p Polygon) rect() s2.Rect {
	r := s2.EmptyRect()
	for _, v := range p {
		r = r.AddPoint(s2.LatLngFromDegrees(v.Y, v.X))
	}
	return r
}
