package plotio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"meantemp-tools/plottemp"
)

func sampleRows() []plottemp.ResultRow {
	citation := plottemp.Citation{
		Author: "Doe",
		Title:  "Season 4",
		Year:   "2018",
		Method: "Mean temperature from infrared images",
	}
	return []plottemp.ResultRow{
		{
			PlotID:     "p1",
			PlotName:   "Range 1",
			Image:      "ir_20180504.tif",
			MeanTemp:   30,
			PixelCount: 9,
			Centroid:   plottemp.Vertex{X: 3.5, Y: 3.5},
			Timestamp:  "2018-05-04T12:00:00",
			Citation:   citation,
		},
		{
			PlotID:    "p2",
			PlotName:  "Range 2",
			Image:     "ir_20180504.tif",
			NoData:    true,
			Centroid:  plottemp.Vertex{X: 7.5, Y: 7.5},
			Timestamp: "2018-05-04T12:00:00",
			Citation:  citation,
		},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func TestWriteTraitCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meantemp.csv")
	if err := WriteTraitCSV(sampleRows(), path); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	wantHeader := "local_datetime,surface_temperature,access_level,site,citation_author,citation_year,citation_title,method"
	if lines[0] != wantHeader {
		t.Errorf("header = %s", lines[0])
	}
	want := "2018-05-04T12:00:00,30,2,Range 1,Doe,2018,Season 4,Mean temperature from infrared images"
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
	if !strings.Contains(lines[2], ",NA,") {
		t.Errorf("no-data row lost its NA marker: %s", lines[2])
	}
}

func TestWriteGeostreamsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meantemp_geostreams.csv")
	if err := WriteGeostreamsCSV(sampleRows(), path); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	// Header plus the single numeric row; the no-data row is omitted.
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := "Range 1,IR Surface Temperature,3.5,3.5,2018-05-04T12:00:00,ir_20180504.tif,30,2018-05-04"
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
}

func TestWriteFailuresCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.csv")
	failures := []plottemp.ProcessingFailure{{
		PlotID: "p3",
		Image:  "bad.tif",
		Kind:   plottemp.RasterLoadError,
		Detail: "open failed, file truncated",
	}}
	if err := WriteFailuresCSV(failures, path); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := `p3,bad.tif,raster_load_error,"open failed, file truncated"`
	if lines[1] != want {
		t.Errorf("row = %s, want %s", lines[1], want)
	}
}

func TestWriteMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meantemp_metadata.json")
	batch := plottemp.BatchResult{
		Failures: make([]plottemp.ProcessingFailure, 2),
		Stats: plottemp.BatchStats{
			TotalImages:     3,
			ProcessedImages: 2,
			PlotsProcessed:  4,
			EmptyPlots:      1,
			SkippedPlots:    2,
		},
	}
	if err := WriteMetadata(batch, time.Now(), path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"version": "3.0"`,
		`"total_image_count": 3`,
		`"processed_image_count": 2`,
		`"total_plots_processed": 4`,
		`"empty_plots": 1`,
		`"failure_count": 2`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("metadata missing %s:\n%s", want, raw)
		}
	}
}
