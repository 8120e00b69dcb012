// Package noaa fetches the planetary K-index from the NOAA SWPC product feed.
package noaa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

// Client fetches the current Kp value over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a NOAA K-index client for the given product URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchKp returns the most recent planetary K-index. The feed is a JSON
// array of rows where the first row is a header and each data row's second
// field is the Kp value. Any failure yields a TransportError; the caller
// substitutes the configured fallback constant.
func (c *Client) FetchKp(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, &domain.TransportError{Source: "noaa", Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &domain.TransportError{Source: "noaa", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &domain.TransportError{Source: "noaa", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var rows [][]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, &domain.TransportError{Source: "noaa", Err: fmt.Errorf("decode body: %w", err)}
	}
	// The first row is the column header; at least one data row must follow.
	if len(rows) < 2 {
		return 0, &domain.TransportError{Source: "noaa", Err: errors.New("feed has no data rows")}
	}

	latest := rows[len(rows)-1]
	if len(latest) < 2 {
		return 0, &domain.TransportError{Source: "noaa", Err: errors.New("latest row has no kp field")}
	}

	kp, err := coerceFloat(latest[1])
	if err != nil {
		return 0, &domain.TransportError{Source: "noaa", Err: fmt.Errorf("parse kp: %w", err)}
	}
	if kp < 0 {
		return 0, &domain.TransportError{Source: "noaa", Err: fmt.Errorf("negative kp %g", kp)}
	}

	c.logger.Debug("kp fetched", "kp", kp)
	return kp, nil
}

// coerceFloat accepts the value as either a JSON number or a numeric string;
// the SWPC product feeds have shipped both encodings.
func coerceFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
