// Package multpl scrapes the monthly S&P 500 price table from multpl.com.
package multpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/recessionwatch/internal/domain/series"
)

// DefaultURL is the monthly S&P 500 price table.
const DefaultURL = "https://www.multpl.com/s-p-500-historical-prices/table/by-month"

const (
	tableID    = "datatable"
	dateLayout = "Jan 2, 2006"
)

// Sentinel error kinds for this package.
var (
	ErrHTTPStatus   = errors.New("unexpected HTTP status")
	ErrNoTable      = errors.New("price table not found")
	ErrMalformedRow = errors.New("malformed price row")
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithURL overrides the page address.
func WithURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// Client fetches and parses the price table.
type Client struct {
	httpClient HTTPClient
	url        string
}

// NewClient creates a new multpl client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        DefaultURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch implements series.Fetcher.
func (c *Client) Fetch(ctx context.Context) ([]series.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrHTTPStatus, resp.StatusCode, c.url)
	}
	return Parse(resp.Body)
}

// Parse extracts (date, price) rows from the page. Thousands separators
// are stripped; rows whose first cell is a header are skipped.
func Parse(r io.Reader) ([]series.Observation, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := find(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && attr(n, "id") == tableID
	})
	if table == nil {
		return nil, ErrNoTable
	}

	var out []series.Observation
	var rowErr error
	walk(table, func(n *html.Node) bool {
		if rowErr != nil {
			return false
		}
		if n.Type != html.ElementNode || n.DataAtom != atom.Tr {
			return true
		}
		cells := children(n, atom.Td)
		if len(cells) == 0 {
			return false
		}
		if len(cells) < 2 {
			rowErr = fmt.Errorf("%w: %d cells", ErrMalformedRow, len(cells))
			return false
		}
		obs, err := parseRow(text(cells[0]), text(cells[1]))
		if err != nil {
			rowErr = err
			return false
		}
		out = append(out, obs)
		return false
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return out, nil
}

func parseRow(date, price string) (series.Observation, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return series.Observation{}, fmt.Errorf("%w: date %q", ErrMalformedRow, date)
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, price)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return series.Observation{}, fmt.Errorf("%w: price %q on %s", ErrMalformedRow, price, date)
	}
	return series.Observation{Date: d, Value: v}, nil
}

// walk visits n and its descendants depth first; visit returns false to
// skip a node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
