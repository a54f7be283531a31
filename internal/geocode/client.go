package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"neighborly/internal/metrics"
)

// maxResponseBytes bounds how much of an upstream response we will read.
const maxResponseBytes = 1 << 20

// UpstreamError reports a non-2xx provider response. Body is for internal
// logging only and must never reach a client.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Client calls the location autocomplete provider.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	filter     string
	httpClient *http.Client
}

// NewClient builds a provider client. limit caps the number of suggestions
// requested; filter optionally restricts results to a region and is passed
// through verbatim when set.
func NewClient(baseURL, apiKey string, limit int, filter string) *Client {
	if limit <= 0 {
		limit = 5
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		limit:      limit,
		filter:     filter,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the provider credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Autocomplete fetches suggestions for the query and returns the provider's
// JSON body verbatim. A non-2xx response yields an UpstreamError carrying
// the status and (internal-only) body.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("format", "geojson")
	params.Set("apiKey", c.apiKey)
	if c.filter != "" {
		params.Set("filter", c.filter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
