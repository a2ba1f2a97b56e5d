package plotio

import (
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"

	"meantemp-tools/plottemp"
)

const rowBufferSize = 4096

type TempRow struct {
	Site       string  `parquet:"site, type=UTF8"`
	Image      string  `parquet:"image, type=UTF8"`
	Datetime   string  `parquet:"local_datetime, type=UTF8"`
	MeanTemp   float64 `parquet:"surface_temperature, type=DOUBLE"`
	PixelCount int64   `parquet:"pixel_count, type=INT64"`
	NoData     bool    `parquet:"no_data, type=BOOLEAN"`
}

// WriteParquet streams result rows to a snappy-compressed parquet file,
// flushing in buffered batches so large batches never hold every row group
// in memory.
func WriteParquet(rows []plottemp.ResultRow, path string) error {
	output, err := os.Create(path)
	if err != nil {
		return err
	}

	schema := parquet.SchemaOf(new(TempRow))
	writer := parquet.NewGenericWriter[TempRow](output, schema, parquet.Compression(&parquet.Snappy))
	defer func() {
		if err := writer.Close(); err != nil {
			logrus.Error(err)
		}
		if err := output.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	buf := make([]TempRow, 0, rowBufferSize)
	for _, row := range rows {
		buf = append(buf, TempRow{
			Site:       row.PlotName,
			Image:      row.Image,
			Datetime:   row.Timestamp,
			MeanTemp:   row.MeanTemp,
			PixelCount: int64(row.PixelCount),
			NoData:     row.NoData,
		})
		if len(buf) == rowBufferSize {
			if err := flushRows(writer, buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		return flushRows(writer, buf)
	}
	return nil
}

func flushRows(writer *parquet.GenericWriter[TempRow], buf []TempRow) error {
	if _, err := writer.Write(buf); err != nil {
		return err
	}
	return writer.Flush()
}
