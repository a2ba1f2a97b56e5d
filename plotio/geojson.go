package plotio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/venicegeo/geojson-go/geojson"

	"meantemp-tools/plottemp"
)

// LoadPlots reads a GeoJSON FeatureCollection of plot boundaries. Features
// carry their name in a "sitename" property and may override the reference
// system with an integer "epsg" property; GeoJSON coordinates default to
// EPSG:4326. Non-polygon features are skipped with a warning.
func LoadPlots(path string) ([]plottemp.Plot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := geojson.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	fc, ok := parsed.(*geojson.FeatureCollection)
	if !ok {
		return nil, fmt.Errorf("expected a FeatureCollection in %s, got %T", path, parsed)
	}

	var plots []plottemp.Plot
	for _, feat := range fc.Features {
		poly, ok := feat.Geometry.(*geojson.Polygon)
		if !ok {
			logrus.Warnf("Skipping feature %q: geometry is %T, not a polygon", feat.IDStr(), feat.Geometry)
			continue
		}
		if len(poly.Coordinates) == 0 {
			logrus.Warnf("Skipping feature %q: polygon has no rings", feat.IDStr())
			continue
		}
		boundary := ringToPolygon(poly.Coordinates[0])

		name := feat.PropertyString("sitename")
		if name == "" {
			name = feat.IDStr()
		}
		id := feat.IDStr()
		if id == "" {
			id = name
		}
		epsg := 4326
		if v := feat.PropertyFloat("epsg"); v != 0 {
			epsg = int(v)
		}
		plots = append(plots, plottemp.Plot{
			ID:        id,
			Name:      name,
			Treatment: feat.PropertyString("treatment"),
			EPSG:      epsg,
			Boundary:  boundary,
		})
	}
	if len(plots) == 0 {
		return nil, fmt.Errorf("no usable plot polygons in %s", path)
	}
	return plots, nil
}

func ringToPolygon(ring [][]float64) plottemp.Polygon {
	out := make(plottemp.Polygon, 0, len(ring))
	for _, c := range ring {
		out = append(out, plottemp.Vertex{X: c[0], Y: c[1]})
	}
	return out
}

// WritePlots renders plots back to a GeoJSON FeatureCollection, the format
// LoadPlots reads.
func WritePlots(plots []plottemp.Plot, path string) error {
	features := make([]*geojson.Feature, 0, len(plots))
	for _, plot := range plots {
		coords := make([][]float64, 0, len(plot.Boundary))
		for _, v := range plot.Boundary {
			coords = append(coords, []float64{v.X, v.Y})
		}
		props := map[string]interface{}{
			"sitename": plot.Name,
		}
		if plot.Treatment != "" {
			props["treatment"] = plot.Treatment
		}
		if plot.EPSG != 4326 {
			props["epsg"] = plot.EPSG
		}
		feature := geojson.NewFeature(geojson.NewPolygon([][][]float64{coords}), plot.ID, props)
		feature.Bbox = feature.ForceBbox()
		features = append(features, feature)
	}
	fc := geojson.NewFeatureCollection(features)
	raw, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
