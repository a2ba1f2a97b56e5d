package plottemp

import (
	"errors"
	"math"
	"testing"

	"github.com/airbusgeo/godal"
)

func TestPixelCoordsInvertsGeotransform(t *testing.T) {
	gts := [][6]float64{
		{0, 1, 0, 0, 0, 1},
		{100, 2, 0, 200, 0, -2},
		{10, 1, 0.3, 20, 0.2, -1}, // rotation terms set
	}
	pixels := Polygon{{0, 0}, {3, 4}, {9.5, 0.25}}
	for _, gt := range gts {
		world := make(Polygon, len(pixels))
		for i, px := range pixels {
			world[i] = Vertex{
				X: gt[0] + px.X*gt[1] + px.Y*gt[2],
				Y: gt[3] + px.X*gt[4] + px.Y*gt[5],
			}
		}
		got, err := PixelCoords(world, gt)
		if err != nil {
			t.Fatalf("gt %v: %v", gt, err)
		}
		for i := range pixels {
			if math.Abs(got[i].X-pixels[i].X) > 1e-9 || math.Abs(got[i].Y-pixels[i].Y) > 1e-9 {
				t.Errorf("gt %v: got %v, want %v", gt, got[i], pixels[i])
			}
		}
	}
}

func TestPixelCoordsDegenerateTransform(t *testing.T) {
	_, err := PixelCoords(squareRing(2, 2, 5, 5), [6]float64{0, 0, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected an error for a zero-determinant geotransform")
	}
	if kind := failureKind(err); kind != GeometryError {
		t.Errorf("failure kind = %v, want %v", kind, GeometryError)
	}
}

func TestPixelCoordsOutsideGrid(t *testing.T) {
	// Out-of-range coordinates are returned, not rejected; overlap handling
	// belongs to the mask builder.
	got, err := PixelCoords(squareRing(-10, -10, -5, -5), [6]float64{0, 1, 0, 0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].X != -10 || got[0].Y != -10 {
		t.Errorf("got %v, want {-10 -10}", got[0])
	}
}

func TestPolygonToWKT(t *testing.T) {
	open := squareRing(2, 2, 5, 5)
	want := "POLYGON((2 2, 5 2, 5 5, 2 5, 2 2))"
	if got := polygonToWKT(open); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	closed := append(append(Polygon{}, open...), open[0])
	if got := polygonToWKT(closed); got != want {
		t.Errorf("closed ring: got %s, want %s", got, want)
	}
}

func TestFailureKindFallback(t *testing.T) {
	if kind := failureKind(errors.New("boom")); kind != GeometryError {
		t.Errorf("kind = %v, want %v", kind, GeometryError)
	}
	if kind := failureKind(rasterErrorf("boom")); kind != RasterLoadError {
		t.Errorf("kind = %v, want %v", kind, RasterLoadError)
	}
}

func TestCentroid(t *testing.T) {
	open := squareRing(2, 2, 5, 5)
	if got := open.Centroid(); got.X != 3.5 || got.Y != 3.5 {
		t.Errorf("got %v, want {3.5 3.5}", got)
	}
	closed := append(append(Polygon{}, open...), open[0])
	if got := closed.Centroid(); got.X != 3.5 || got.Y != 3.5 {
		t.Errorf("closed ring: got %v, want {3.5 3.5}", got)
	}
}

func TestReconcileSameReferenceSystem(t *testing.T) {
	path := createRaster(t, rasterSpec{width: 10, height: 10, fill: 300})
	raster, closeRaster := openRaster(t, path)
	defer closeRaster()

	plot := Plot{ID: "p1", EPSG: 4326, Boundary: squareRing(2, 2, 5, 5)}
	got, err := Reconcile(plot, raster)
	if err != nil {
		t.Fatal(err)
	}
	want, err := PixelCoords(plot.Boundary, raster.GeoTransform)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-9 || math.Abs(got[i].Y-want[i].Y) > 1e-9 {
			t.Errorf("vertex %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReconcileProjectedPlot(t *testing.T) {
	// A boundary supplied in UTM zone 31N must reproject to the same pixel
	// coordinates as the geographic original: WKT build, Reproject and
	// ring extraction end to end, not the same-reference short-circuit.
	path := createRaster(t, rasterSpec{width: 10, height: 10, fill: 300})
	raster, closeRaster := openRaster(t, path)
	defer closeRaster()

	geographic := squareRing(2, 2, 5, 5)
	plot := Plot{ID: "p1", EPSG: 32631, Boundary: projectedRing(t, geographic, 32631)}
	got, err := Reconcile(plot, raster)
	if err != nil {
		t.Fatal(err)
	}
	want, err := PixelCoords(geographic, raster.GeoTransform)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d vertices, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-6 || math.Abs(got[i].Y-want[i].Y) > 1e-6 {
			t.Errorf("vertex %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWGS84CentroidProjectedPlot(t *testing.T) {
	godal.RegisterAll()
	geographic := squareRing(2, 2, 5, 5)
	plot := Plot{ID: "p1", EPSG: 32631, Boundary: projectedRing(t, geographic, 32631)}
	got, err := wgs84Centroid(plot)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.X-3.5) > 1e-6 || math.Abs(got.Y-3.5) > 1e-6 {
		t.Errorf("centroid = %v, want {3.5 3.5}", got)
	}

	direct := Plot{ID: "p2", EPSG: 4326, Boundary: geographic}
	if got, err := wgs84Centroid(direct); err != nil || got != geographic.Centroid() {
		t.Errorf("geographic plot centroid = %v (%v), want passthrough", got, err)
	}
}

func TestReconcileUnknownEPSG(t *testing.T) {
	path := createRaster(t, rasterSpec{width: 10, height: 10, fill: 300})
	raster, closeRaster := openRaster(t, path)
	defer closeRaster()

	plot := Plot{ID: "p1", EPSG: 999999, Boundary: squareRing(2, 2, 5, 5)}
	_, err := Reconcile(plot, raster)
	if err == nil {
		t.Fatal("expected an error for an unknown EPSG code")
	}
	if kind := failureKind(err); kind != GeometryError {
		t.Errorf("failure kind = %v, want %v", kind, GeometryError)
	}
}
