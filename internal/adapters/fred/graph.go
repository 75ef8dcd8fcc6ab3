package fred

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/okian/recessionwatch/internal/domain/series"
)

// Transformations understood by fredgraph.
const (
	TransformNone          = "lin"
	TransformPercentChange = "pc1"
)

// GraphSeries returns a fetcher for seriesID through the fredgraph CSV
// download, monthly averaged and transformed as requested.
func (c *Client) GraphSeries(seriesID, transformation string, start time.Time) series.Fetcher {
	return series.FetcherFunc(func(ctx context.Context) ([]series.Observation, error) {
		return c.Graph(ctx, seriesID, transformation, start)
	})
}

// Graph downloads seriesID as CSV. The first column is the date, the
// second the value; empty and "." values are skipped.
func (c *Client) Graph(ctx context.Context, seriesID, transformation string, start time.Time) ([]series.Observation, error) {
	if transformation == "" {
		transformation = TransformNone
	}
	q := url.Values{}
	q.Set("id", seriesID)
	if !start.IsZero() {
		q.Set("cosd", start.Format(dateLayout))
	}
	q.Set("coed", c.now().UTC().Format(dateLayout))
	q.Set("transformation", transformation)
	q.Set("fq", "Monthly")
	q.Set("fam", "avg")

	sep := "?"
	if strings.Contains(c.graphURL, "?") {
		sep = "&"
	}
	body, err := c.get(ctx, c.graphURL+sep+q.Encode(), seriesID)
	if err != nil {
		return nil, err
	}
	return parseGraphCSV(seriesID, body)
}

func parseGraphCSV(seriesID string, body []byte) ([]series.Observation, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %w", ErrParse, seriesID, err)
	}
	switch strings.ToLower(header[0]) {
	case "date", "observation_date":
	default:
		return nil, fmt.Errorf("%w: %s header starts with %q", ErrParse, seriesID, header[0])
	}

	var out []series.Observation
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParse, seriesID, err)
		}
		obs, ok, err := parseObservation(rec[0], rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", seriesID, err)
		}
		if ok {
			out = append(out, obs)
		}
	}
	return out, nil
}
