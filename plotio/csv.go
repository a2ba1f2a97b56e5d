package plotio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"meantemp-tools/plottemp"
)

// AccessLevel is the trait database access level stamped on every row.
const AccessLevel = "2"

// TraitName is the geostreams trait name for the statistic.
const TraitName = "IR Surface Temperature"

// WriteTraitCSV renders result rows in the trait table layout the metadata
// database ingests. No-data rows keep their place with an NA temperature so
// the row census stays complete.
func WriteTraitCSV(rows []plottemp.ResultRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	header := "local_datetime,surface_temperature,access_level,site,citation_author,citation_year,citation_title,method\n"
	if _, err := f.WriteString(header); err != nil {
		return err
	}

	for _, row := range rows {
		fields := []string{
			row.Timestamp,
			tempField(row),
			AccessLevel,
			row.PlotName,
			row.Citation.Author,
			row.Citation.Year,
			row.Citation.Title,
			row.Citation.Method,
		}
		if _, err := f.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return err
		}
	}
	return f.Sync()
}

// WriteGeostreamsCSV renders numeric results as a geostreams point series,
// one row per plot centroid. No-data rows are omitted; the stream carries
// only measured values.
func WriteGeostreamsCSV(rows []plottemp.ResultRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if _, err := f.WriteString("site,trait,lat,lon,dp_time,source,value,timestamp\n"); err != nil {
		return err
	}

	for _, row := range rows {
		if row.NoData {
			continue
		}
		fields := []string{
			row.PlotName,
			TraitName,
			formatFloat(row.Centroid.Y),
			formatFloat(row.Centroid.X),
			row.Timestamp,
			row.Image,
			formatFloat(row.MeanTemp),
			datestamp(row.Timestamp),
		}
		if _, err := f.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return err
		}
	}
	return f.Sync()
}

// WriteFailuresCSV records every (image, plot) pair that produced no
// result, with its failure kind and detail.
func WriteFailuresCSV(failures []plottemp.ProcessingFailure, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if _, err := f.WriteString("plot,image,kind,detail\n"); err != nil {
		return err
	}
	for _, failure := range failures {
		line := fmt.Sprintf("%s,%s,%s,%s\n",
			failure.PlotID, failure.Image, failure.Kind, strconv.Quote(failure.Detail))
		if _, err := f.WriteString(line); err != nil {
			return err
		}
	}
	return f.Sync()
}

func tempField(row plottemp.ResultRow) string {
	if row.NoData {
		return "NA"
	}
	return formatFloat(row.MeanTemp)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// datestamp strips the time part from a local_datetime value.
func datestamp(timestamp string) string {
	if i := strings.IndexByte(timestamp, 'T'); i >= 0 {
		return timestamp[:i]
	}
	return timestamp
}
