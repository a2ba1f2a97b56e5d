package plottemp

import (
	"fmt"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/venicegeo/geojson-go/geojson"
)

// polygonToWKT renders a ring as an OGR-consumable POLYGON string, closing
// it with the first vertex.
func polygonToWKT(p Polygon) string {
	verts := p
	if len(verts) > 1 && verts[0] == verts[len(verts)-1] {
		verts = verts[:len(verts)-1]
	}
	var sb strings.Builder
	sb.WriteString("POLYGON((")
	for _, v := range verts {
		fmt.Fprintf(&sb, "%v %v, ", v.X, v.Y)
	}
	fmt.Fprintf(&sb, "%v %v))", verts[0].X, verts[0].Y)
	return sb.String()
}

// ringFromGeometry extracts the exterior ring of an OGR polygon through its
// GeoJSON rendering.
func ringFromGeometry(geom *godal.Geometry) (Polygon, error) {
	gj, err := geom.GeoJSON()
	if err != nil {
		return nil, geometryErrorf("rendering reprojected boundary: %w", err)
	}
	parsed, err := geojson.Parse([]byte(gj))
	if err != nil {
		return nil, geometryErrorf("parsing reprojected boundary: %w", err)
	}
	poly, ok := parsed.(*geojson.Polygon)
	if !ok {
		return nil, geometryErrorf("reprojected boundary is a %T, not a polygon", parsed)
	}
	if len(poly.Coordinates) == 0 {
		return nil, geometryErrorf("reprojected boundary has no rings")
	}
	ring := poly.Coordinates[0]
	out := make(Polygon, 0, len(ring))
	for _, c := range ring {
		out = append(out, Vertex{X: c[0], Y: c[1]})
	}
	return out, nil
}

// reprojectRing converts a ring between two spatial references, delegating
// to GDAL. The ring is returned unchanged when the references are the same.
func reprojectRing(p Polygon, src, dst *godal.SpatialRef) (Polygon, error) {
	if src.IsSame(dst) {
		return p, nil
	}
	geom, err := godal.NewGeometryFromWKT(polygonToWKT(p), src)
	if err != nil {
		return nil, geometryErrorf("parsing plot boundary: %w", err)
	}
	if err := geom.Reproject(dst); err != nil {
		return nil, geometryErrorf("reprojecting plot boundary: %w", err)
	}
	return ringFromGeometry(geom)
}

// PixelCoords converts world coordinates to fractional (col, row) pixel
// coordinates by inverting the raster's affine geotransform. Coordinates
// outside the pixel grid are returned as-is; downstream masking treats them
// as zero overlap.
func PixelCoords(p Polygon, gt [6]float64) (Polygon, error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 {
		return nil, geometryErrorf("geotransform %v is not invertible", gt)
	}
	out := make(Polygon, len(p))
	for i, v := range p {
		dx := v.X - gt[0]
		dy := v.Y - gt[3]
		out[i] = Vertex{
			X: (gt[5]*dx - gt[2]*dy) / det,
			Y: (gt[1]*dy - gt[4]*dx) / det,
		}
	}
	return out, nil
}

// Reconcile expresses a plot boundary in pixel coordinates of a raster,
// reprojecting between reference systems when they differ. The container
// mutex is held across the reprojection because workers share the raster's
// SRS handle.
func Reconcile(plot Plot, raster *RasterContainer) (Polygon, error) {
	ring := plot.Boundary
	if raster.SRS != nil {
		src, err := godal.NewSpatialRefFromEPSG(plot.EPSG)
		if err != nil {
			return nil, geometryErrorf("unsupported reference system EPSG:%d: %w", plot.EPSG, err)
		}
		raster.mu.Lock()
		ring, err = reprojectRing(ring, src, raster.SRS)
		raster.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return PixelCoords(ring, raster.GeoTransform)
}

// wgs84Centroid returns the boundary centroid in geographic coordinates
// for the point-series output. Fresh reference handles are created per
// call, so this is safe from concurrent workers.
func wgs84Centroid(plot Plot) (Vertex, error) {
	if plot.EPSG == 4326 {
		return plot.Boundary.Centroid(), nil
	}
	src, err := godal.NewSpatialRefFromEPSG(plot.EPSG)
	if err != nil {
		return Vertex{}, geometryErrorf("unsupported reference system EPSG:%d: %w", plot.EPSG, err)
	}
	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return Vertex{}, geometryErrorf("creating WGS84 reference: %w", err)
	}
	ring, err := reprojectRing(plot.Boundary, src, wgs84)
	if err != nil {
		return Vertex{}, err
	}
	return ring.Centroid(), nil
}
