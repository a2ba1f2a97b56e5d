package plottemp

import (
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"
)

// RasterContainer bundles an opened band with the georeferencing the
// per-plot pipeline needs. The mutex serialises band reads and any use of
// the shared SRS handle; neither GDAL block caches nor spatial-reference
// handles are safe for concurrent access.
type RasterContainer struct {
	Band         *godal.Band
	GeoTransform [6]float64
	SRS          *godal.SpatialRef
	Width        int
	Height       int
	NoData       float64
	HasNoData    bool
	mu           sync.Mutex
}

func (rc *RasterContainer) lockedRead(mask *PixelMask, buf []float64) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.Band.Read(mask.OffX, mask.OffY, buf, mask.W, mask.H)
}

// worldRing returns the raster's footprint in world coordinates.
func (rc *RasterContainer) worldRing() Polygon {
	corners := []Vertex{
		{0, 0},
		{float64(rc.Width), 0},
		{float64(rc.Width), float64(rc.Height)},
		{0, float64(rc.Height)},
	}
	gt := rc.GeoTransform
	ring := make(Polygon, len(corners))
	for i, c := range corners {
		ring[i] = Vertex{
			X: gt[0] + c.X*gt[1] + c.Y*gt[2],
			Y: gt[3] + c.X*gt[4] + c.Y*gt[5],
		}
	}
	return ring
}

// wgs84Rect returns the raster footprint as a geographic bounding rect for
// the cheap plot pre-filter. Rasters without a spatial reference get the
// full rect, which disables pre-filtering rather than guessing.
func (rc *RasterContainer) wgs84Rect() (s2.Rect, error) {
	if rc.SRS == nil {
		return s2.FullRect(), nil
	}
	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return s2.EmptyRect(), rasterErrorf("creating WGS84 reference: %w", err)
	}
	ring, err := reprojectRing(rc.worldRing(), rc.SRS, wgs84)
	if err != nil {
		return s2.EmptyRect(), err
	}
	return ring.rect(), nil
}

// ConfigOpts carries all knobs for a batch run. Calibration and citation
// metadata are explicit here rather than ambient state so the pipeline
// stays testable without environment setup.
type ConfigOpts struct {
	NumWorkers int
	Cal        Calibration
	AggFunc    AggFunc
	Citation   Citation
	Timestamp  string
}

// ProcessBatch runs the plot pipeline over every image. Failures are local
// to the smallest affected unit: a raster that cannot be opened fails all
// of its plots, a plot that cannot be reconciled or read fails alone, and
// nothing aborts sibling plots or images. The returned BatchResult accounts
// for every (image, plot) pair.
func ProcessBatch(imagePaths []string, plots []Plot, opts ConfigOpts) BatchResult {
	godal.RegisterAll()
	if opts.NumWorkers < 1 {
		opts.NumWorkers = 1
	}
	if opts.AggFunc == nil {
		opts.AggFunc = Mean
	}

	var batch BatchResult
	batch.Stats.TotalImages = len(imagePaths)
	for _, path := range imagePaths {
		res := processImage(path, plots, opts)
		batch.Rows = append(batch.Rows, res.rows...)
		batch.Failures = append(batch.Failures, res.failures...)
		if res.opened {
			batch.Stats.ProcessedImages++
		}
		batch.Stats.PlotsProcessed += res.processed
		batch.Stats.EmptyPlots += res.empty
		batch.Stats.SkippedPlots += res.skipped
	}
	return batch
}

type imageResult struct {
	rows      []ResultRow
	failures  []ProcessingFailure
	opened    bool
	processed int
	empty     int
	skipped   int
}

func processImage(path string, plots []Plot, opts ConfigOpts) imageResult {
	ds, err := godal.Open(path)
	if err != nil {
		logrus.Errorf("Opening raster %s: %v", path, err)
		return imageResult{failures: failAllPlots(path, plots, err)}
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	raster, err := newRasterContainer(ds)
	if err != nil {
		logrus.Errorf("Reading georeferencing of %s: %v", path, err)
		return imageResult{failures: failAllPlots(path, plots, err)}
	}

	imageRect, err := raster.wgs84Rect()
	if err != nil {
		logrus.Errorf("Computing footprint of %s: %v", path, err)
		return imageResult{failures: failAllPlots(path, plots, err)}
	}

	res := imageResult{opened: true}
	candidates := make([]Plot, 0, len(plots))
	for _, plot := range plots {
		rect, err := plotRect(plot)
		if err != nil {
			// Let the full reconciliation report the bad reference system.
			candidates = append(candidates, plot)
			continue
		}
		if !imageRect.Intersects(rect) {
			logrus.Debugf("Plot %s does not intersect %s", plot.ID, path)
			res.skipped++
			continue
		}
		candidates = append(candidates, plot)
	}
	logrus.Infof("Processing %d of %d plots for %s", len(candidates), len(plots), path)

	for outcome := range processPlots(raster, path, genPlots(candidates), opts) {
		switch {
		case outcome.failure != nil:
			res.processed++
			res.failures = append(res.failures, *outcome.failure)
		case outcome.row != nil:
			res.processed++
			if outcome.row.NoData {
				res.empty++
			}
			res.rows = append(res.rows, *outcome.row)
		default:
			res.skipped++
		}
	}
	return res
}

func newRasterContainer(ds *godal.Dataset) (*RasterContainer, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, rasterErrorf("reading geotransform: %w", err)
	}
	struc := ds.Structure()
	band := &ds.Bands()[0]
	noData, hasNoData := band.NoData()
	if !hasNoData {
		logrus.Debug("NoData not set")
	}
	return &RasterContainer{
		Band:         band,
		GeoTransform: gt,
		SRS:          ds.SpatialRef(),
		Width:        struc.SizeX,
		Height:       struc.SizeY,
		NoData:       noData,
		HasNoData:    hasNoData,
	}, nil
}

// plotRect returns the plot's bounding box as a geographic rect for the
// pre-filter, reprojecting when the boundary is not already geographic.
func plotRect(plot Plot) (s2.Rect, error) {
	ring := plot.Boundary
	if plot.EPSG != 4326 {
		src, err := godal.NewSpatialRefFromEPSG(plot.EPSG)
		if err != nil {
			return s2.EmptyRect(), geometryErrorf("unsupported reference system EPSG:%d: %w", plot.EPSG, err)
		}
		wgs84, err := godal.NewSpatialRefFromEPSG(4326)
		if err != nil {
			return s2.EmptyRect(), geometryErrorf("creating WGS84 reference: %w", err)
		}
		ring, err = reprojectRing(ring, src, wgs84)
		if err != nil {
			return s2.EmptyRect(), err
		}
	}
	return ring.rect(), nil
}

// plotOutcome is the three-way result of one (image, plot) pair. Exactly
// one of row or failure is set; neither set means a silent skip.
type plotOutcome struct {
	row     *ResultRow
	failure *ProcessingFailure
}

// genPlots feeds plots to the workers, serially; there is nothing to gain
// from parallelising this side.
func genPlots(plots []Plot) <-chan Plot {
	out := make(chan Plot)
	go func() {
		defer close(out)
		for _, plot := range plots {
			out <- plot
		}
	}()
	return out
}

func processPlots(raster *RasterContainer, image string, plots <-chan Plot, opts ConfigOpts) <-chan plotOutcome {
	out := make(chan plotOutcome)
	var wg sync.WaitGroup
	wg.Add(opts.NumWorkers)
	for i := 0; i < opts.NumWorkers; i++ {
		go func() {
			defer wg.Done()
			for plot := range plots {
				out <- processPlot(raster, image, plot, opts)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func processPlot(raster *RasterContainer, image string, plot Plot, opts ConfigOpts) plotOutcome {
	ring, err := Reconcile(plot, raster)
	if err != nil {
		logrus.Errorf("Plot %s on %s: %v", plot.ID, image, err)
		return failureOutcome(plot, image, err)
	}

	mask, ok := BuildMask(ring, raster.Width, raster.Height)
	if !ok {
		logrus.Debugf("Plot %s has no pixel overlap with %s", plot.ID, image)
		return plotOutcome{}
	}

	window := make([]float64, mask.W*mask.H)
	if err := raster.lockedRead(mask, window); err != nil {
		logrus.Errorf("Reading window for plot %s on %s: %v", plot.ID, image, err)
		return failureOutcome(plot, image, rasterErrorf("reading window: %w", err))
	}

	centroid, err := wgs84Centroid(plot)
	if err != nil {
		logrus.Errorf("Centroid of plot %s: %v", plot.ID, err)
		return failureOutcome(plot, image, err)
	}

	value, count := WindowStats(window, mask, raster.NoData, raster.HasNoData, opts.Cal, opts.AggFunc)
	row := ResultRow{
		PlotID:    plot.ID,
		PlotName:  plot.Name,
		Image:     image,
		Centroid:  centroid,
		Timestamp: opts.Timestamp,
		Citation:  opts.Citation,
	}
	if count == 0 {
		row.NoData = true
	} else {
		row.MeanTemp = value
		row.PixelCount = count
	}
	return plotOutcome{row: &row}
}

func failureOutcome(plot Plot, image string, err error) plotOutcome {
	return plotOutcome{failure: &ProcessingFailure{
		PlotID: plot.ID,
		Image:  image,
		Kind:   failureKind(err),
		Detail: err.Error(),
	}}
}

func failAllPlots(image string, plots []Plot, err error) []ProcessingFailure {
	failures := make([]ProcessingFailure, 0, len(plots))
	for _, plot := range plots {
		failures = append(failures, ProcessingFailure{
			PlotID: plot.ID,
			Image:  image,
			Kind:   RasterLoadError,
			Detail: err.Error(),
		})
	}
	return failures
}
