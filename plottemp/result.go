package plottemp

import (
	"errors"
	"fmt"
)

// FailureKind classifies why an (image, plot) pair produced no result.
type FailureKind string

const (
	// RasterLoadError marks an image that could not be opened or read.
	// When the image itself fails to open, every plot of the batch is
	// recorded with this kind.
	RasterLoadError FailureKind = "raster_load_error"
	// GeometryError marks a plot whose boundary could not be expressed in
	// the raster's pixel space: unknown reference system or a degenerate
	// geotransform.
	GeometryError FailureKind = "geometry_error"
)

// Citation identifies the measurement provenance carried on every row.
type Citation struct {
	Author string
	Title  string
	Year   string
	Method string
}

// ResultRow is the outcome of one successfully processed (image, plot)
// pair. NoData is set when the masked window held no valid pixels; MeanTemp
// and PixelCount are only meaningful when NoData is false.
type ResultRow struct {
	PlotID     string
	PlotName   string
	Image      string
	MeanTemp   float64
	PixelCount int
	NoData     bool
	Centroid   Vertex // boundary centroid in WGS84, X longitude and Y latitude
	Timestamp  string
	Citation   Citation
}

// ProcessingFailure records one (image, plot) pair that could not be
// reduced to a ResultRow.
type ProcessingFailure struct {
	PlotID string
	Image  string
	Kind   FailureKind
	Detail string
}

// BatchStats counts what happened across a whole batch.
type BatchStats struct {
	TotalImages     int
	ProcessedImages int
	PlotsProcessed  int
	EmptyPlots      int
	SkippedPlots    int
}

// BatchResult is everything a batch run produced. Every (image, plot) pair
// appears exactly once: as a row, as a failure, or as a silent skip counted
// in Stats.
type BatchResult struct {
	Rows     []ResultRow
	Failures []ProcessingFailure
	Stats    BatchStats
}

// kindError tags an error with the failure kind recorded against the pair.
type kindError struct {
	kind FailureKind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

func geometryErrorf(format string, args ...interface{}) error {
	return &kindError{kind: GeometryError, err: fmt.Errorf(format, args...)}
}

func rasterErrorf(format string, args ...interface{}) error {
	return &kindError{kind: RasterLoadError, err: fmt.Errorf(format, args...)}
}

// failureKind extracts the kind from a pipeline error. Untagged errors come
// from the geometry path, so that is the fallback.
func failureKind(err error) FailureKind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return GeometryError
}
