// Package betydb fetches experimental site boundaries from a BETYdb-style
// plot metadata service.
package betydb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/venicegeo/geojson-go/geojson"

	"meantemp-tools/plottemp"
)

const defaultTimeout = 30 * time.Second

// Client queries one BETYdb instance. BaseURL has no trailing slash; Key is
// the API key the instance issued.
type Client struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

func NewClient(baseURL, key string) *Client {
	return &Client{
		BaseURL: baseURL,
		Key:     key,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type sitesResponse struct {
	Data []struct {
		Site struct {
			ID       json.Number     `json:"id"`
			Sitename string          `json:"sitename"`
			Geometry json.RawMessage `json:"geometry"`
		} `json:"site"`
	} `json:"data"`
}

// SiteBoundaries returns the plots registered for a date, optionally
// filtered by city. Sites without a polygon geometry are skipped with a
// warning; boundaries come back in EPSG:4326, which is what the service
// stores.
func (c *Client) SiteBoundaries(date, city string) ([]plottemp.Plot, error) {
	query := url.Values{}
	query.Set("key", c.Key)
	if date != "" {
		query.Set("date", date)
	}
	if city != "" {
		query.Set("city", city)
	}
	endpoint := fmt.Sprintf("%s/api/v1/sites.json?%s", c.BaseURL, query.Encode())

	resp, err := c.HTTP.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Error(err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sites request returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed sitesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding sites response: %w", err)
	}

	plots := make([]plottemp.Plot, 0, len(parsed.Data))
	for _, rec := range parsed.Data {
		site := rec.Site
		geom, err := geojson.Parse(site.Geometry)
		if err != nil {
			logrus.Warnf("Skipping site %s: bad geometry: %v", site.Sitename, err)
			continue
		}
		poly, ok := geom.(*geojson.Polygon)
		if !ok || len(poly.Coordinates) == 0 {
			logrus.Warnf("Skipping site %s: geometry is %T, not a polygon", site.Sitename, geom)
			continue
		}
		boundary := make(plottemp.Polygon, 0, len(poly.Coordinates[0]))
		for _, c := range poly.Coordinates[0] {
			boundary = append(boundary, plottemp.Vertex{X: c[0], Y: c[1]})
		}
		plots = append(plots, plottemp.Plot{
			ID:       site.ID.String(),
			Name:     site.Sitename,
			EPSG:     4326,
			Boundary: boundary,
		})
	}
	logrus.Infof("Fetched %d plot boundaries for date %q", len(plots), date)
	return plots, nil
}
