// Package ingv fetches seismic events from the INGV FDSN event web service
// as delimited text and converts them into the raw table shape consumed by
// the normalizer.
package ingv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

// Query selects a bounding box and time window of catalog events.
type Query struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	Start, End     time.Time
}

// CacheKey identifies the query for fetch-result caching.
func (q Query) CacheKey() string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f|%s|%s",
		q.MinLat, q.MaxLat, q.MinLon, q.MaxLon,
		q.Start.UTC().Format(time.RFC3339), q.End.UTC().Format(time.RFC3339))
}

// Client fetches catalog events over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an INGV catalog client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

const fdsnTimeLayout = "2006-01-02T15:04:05"

// FetchCatalog queries the event service and parses the pipe-delimited text
// payload. Any transport failure, non-2xx status, malformed body, or empty
// result set yields a TransportError so the caller can fall back.
func (c *Client) FetchCatalog(ctx context.Context, q Query) (domain.Table, error) {
	params := url.Values{
		"format":    {"text"},
		"minlat":    {fmt.Sprintf("%.4f", q.MinLat)},
		"maxlat":    {fmt.Sprintf("%.4f", q.MaxLat)},
		"minlon":    {fmt.Sprintf("%.4f", q.MinLon)},
		"maxlon":    {fmt.Sprintf("%.4f", q.MaxLon)},
		"starttime": {q.Start.UTC().Format(fdsnTimeLayout)},
		"endtime":   {q.End.UTC().Format(fdsnTimeLayout)},
	}
	fullURL := c.baseURL + "/fdsnws/event/1/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Table{}, &domain.TransportError{Source: "ingv", Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Table{}, &domain.TransportError{Source: "ingv", Err: err}
	}
	defer resp.Body.Close()

	// 204 is the FDSN convention for a query matching no events.
	if resp.StatusCode == http.StatusNoContent {
		return domain.Table{}, &domain.TransportError{Source: "ingv", Err: errors.New("empty result set")}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Table{}, &domain.TransportError{
			Source: "ingv",
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	table, err := parseFDSNText(resp.Body)
	if err != nil {
		return domain.Table{}, &domain.TransportError{Source: "ingv", Err: err}
	}
	if len(table.Rows) == 0 {
		return domain.Table{}, &domain.TransportError{Source: "ingv", Err: errors.New("empty result set")}
	}

	c.logger.Debug("catalog fetched", "rows", len(table.Rows))
	return table, nil
}

// parseFDSNText reads the pipe-delimited FDSN text format. The first line is
// the header, prefixed with '#'. Rows whose field count differs from the
// header are skipped.
func parseFDSNText(r io.Reader) (domain.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var table domain.Table
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if table.Columns == nil {
			header := strings.TrimPrefix(line, "#")
			for _, c := range strings.Split(header, "|") {
				table.Columns = append(table.Columns, strings.TrimSpace(c))
			}
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != len(table.Columns) {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		table.Rows = append(table.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("read body: %w", err)
	}
	if table.Columns == nil {
		return domain.Table{}, errors.New("malformed body: no header line")
	}
	return table, nil
}
