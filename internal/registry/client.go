package registry

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// titleColumn is the header of the dataset-title column in the tabular
// title list.
const titleColumn = "Dataset title"

// Client fetches the registry feed with retry and backoff.
type Client struct {
	client       *http.Client
	maxRetries   int
	backoffMs    int
	backoffMaxMs int
}

// NewClient creates a feed client.
func NewClient(timeoutSeconds, maxRetries, backoffMs, backoffMaxMs int) *Client {
	return &Client{
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		maxRetries:   maxRetries,
		backoffMs:    backoffMs,
		backoffMaxMs: backoffMaxMs,
	}
}

// HTTPError represents a non-2xx response from the feed.
type HTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// FetchRecords downloads and decodes the JSON registry feed.
func (c *Client) FetchRecords(ctx context.Context, url string) ([]UpstreamRecord, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch registry feed: %w", err)
	}
	defer body.Close()

	var records []UpstreamRecord
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode registry feed: %w", err)
	}
	return records, nil
}

// FetchRecordsFiltered downloads the feed and keeps only records whose
// title is in titles. A nil titles list disables filtering.
func (c *Client) FetchRecordsFiltered(ctx context.Context, url string, titles []string) ([]UpstreamRecord, error) {
	records, err := c.FetchRecords(ctx, url)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		return records, nil
	}

	wanted := make(map[string]bool, len(titles))
	for _, t := range titles {
		wanted[t] = true
	}

	filtered := make([]UpstreamRecord, 0, len(titles))
	for _, r := range records {
		if wanted[r.Title] {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// FetchDatasetTitles downloads a CSV of dataset titles and returns the
// title column in row order.
func (c *Client) FetchDatasetTitles(ctx context.Context, url string) ([]string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset titles: %w", err)
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read titles header: %w", err)
	}

	titleIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == titleColumn {
			titleIdx = i
			break
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("titles csv has no %q column", titleColumn)
	}

	var titles []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read titles row: %w", err)
		}
		if titleIdx < len(row) {
			titles = append(titles, row[titleIdx])
		}
	}
	return titles, nil
}

// get performs a GET with retry and exponential backoff. 429 and 5xx are
// retried, honoring Retry-After; other 4xx fail immediately.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(c.backoffMs) * time.Duration(1<<uint(attempt-1)) * time.Millisecond
			if backoff > time.Duration(c.backoffMaxMs)*time.Millisecond {
				backoff = time.Duration(c.backoffMaxMs) * time.Millisecond
			}
			if httpErr, ok := lastErr.(*HTTPError); ok && httpErr.RetryAfter > 0 {
				backoff = httpErr.RetryAfter
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return nil, &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

func isRetryable(err error) bool {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		// Network errors are retryable
		return true
	}
	return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
}

// parseRetryAfter parses a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
