package plotio

import (
	"encoding/json"
	"os"
	"time"

	"meantemp-tools/plottemp"
)

// ExtractorVersion is recorded in the metadata sidecar.
const ExtractorVersion = "3.0"

// ProcessMetadata is the JSON sidecar summarising one batch run.
type ProcessMetadata struct {
	Version         string `json:"version"`
	UTCTimestamp    string `json:"utc_timestamp"`
	ProcessingTime  string `json:"processing_time"`
	TotalImages     int    `json:"total_image_count"`
	ProcessedImages int    `json:"processed_image_count"`
	PlotsProcessed  int    `json:"total_plots_processed"`
	EmptyPlots      int    `json:"empty_plots"`
	SkippedPlots    int    `json:"skipped_plots"`
	FailureCount    int    `json:"failure_count"`
}

// WriteMetadata writes the batch summary sidecar next to the result files.
func WriteMetadata(batch plottemp.BatchResult, started time.Time, path string) error {
	md := ProcessMetadata{
		Version:         ExtractorVersion,
		UTCTimestamp:    time.Now().UTC().Format(time.RFC3339),
		ProcessingTime:  time.Since(started).String(),
		TotalImages:     batch.Stats.TotalImages,
		ProcessedImages: batch.Stats.ProcessedImages,
		PlotsProcessed:  batch.Stats.PlotsProcessed,
		EmptyPlots:      batch.Stats.EmptyPlots,
		SkippedPlots:    batch.Stats.SkippedPlots,
		FailureCount:    len(batch.Failures),
	}
	raw, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
