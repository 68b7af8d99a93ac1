// Package hdx is the client for the dataset-hosting platform's action
// API. It implements the lookup capabilities the assembler consumes and
// the submitter the run loop hands accepted submissions to.
package hdx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codsync/internal/assemble"
)

// approvedVocabulary is the name of the platform's controlled tag list.
const approvedVocabulary = "approved"

// Client talks to the platform's action API with retry and backoff.
// Lookup data (valid locations, approved vocabulary) is fetched once via
// the Load* methods and served from memory afterwards.
type Client struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	maxRetries   int
	backoffMs    int
	backoffMaxMs int

	locations map[string]bool
	vocab     map[string]string
}

// NewClient creates a platform client. baseURL is the site root, e.g.
// "https://data.example.org".
func NewClient(baseURL, apiKey string, timeoutSeconds, maxRetries, backoffMs, backoffMaxMs int) *Client {
	return &Client{
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		maxRetries:   maxRetries,
		backoffMs:    backoffMs,
		backoffMaxMs: backoffMaxMs,
	}
}

// HTTPError represents a non-success response from the platform.
type HTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// LocationError reports location codes the platform does not recognize.
type LocationError struct {
	Codes []string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("unrecognized locations: %s", strings.Join(e.Codes, ", "))
}

// envelope is the action API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// Autocomplete searches organizations by name. Only the id of the first
// hit is used downstream, but the full hit list is returned.
func (c *Client) Autocomplete(ctx context.Context, name string) ([]assemble.Organization, error) {
	query := url.Values{"q": {name}}
	raw, err := c.call(ctx, http.MethodGet, "organization_autocomplete", query, nil)
	if err != nil {
		return nil, fmt.Errorf("organization autocomplete %q: %w", name, err)
	}

	var hits []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, fmt.Errorf("decode autocomplete result: %w", err)
	}

	orgs := make([]assemble.Organization, len(hits))
	for i, h := range hits {
		orgs[i] = assemble.Organization{ID: h.ID, Name: h.Name, Title: h.Title}
	}
	return orgs, nil
}

// LoadLocations fetches the platform's valid location list. Must be
// called before Validate.
func (c *Client) LoadLocations(ctx context.Context) error {
	raw, err := c.call(ctx, http.MethodGet, "group_list", nil, nil)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return fmt.Errorf("decode location list: %w", err)
	}

	c.locations = make(map[string]bool, len(names))
	for _, name := range names {
		c.locations[strings.ToLower(name)] = true
	}
	return nil
}

// Validate checks every code against the loaded location list and
// returns a LocationError naming the unrecognized ones.
func (c *Client) Validate(ctx context.Context, codes []string) error {
	if c.locations == nil {
		return fmt.Errorf("locations not loaded")
	}

	var bad []string
	for _, code := range codes {
		if !c.locations[strings.ToLower(code)] {
			bad = append(bad, code)
		}
	}
	if len(bad) > 0 {
		return &LocationError{Codes: bad}
	}
	return nil
}

// LoadVocabulary fetches the approved tag vocabulary. Must be called
// before Approve.
func (c *Client) LoadVocabulary(ctx context.Context) error {
	query := url.Values{"id": {approvedVocabulary}}
	raw, err := c.call(ctx, http.MethodGet, "vocabulary_show", query, nil)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	var result struct {
		Tags []struct {
			Name string `json:"name"`
		} `json:"tags"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("decode vocabulary: %w", err)
	}

	c.vocab = make(map[string]string, len(result.Tags))
	for _, tag := range result.Tags {
		c.vocab[strings.ToLower(tag.Name)] = tag.Name
	}
	return nil
}

// Approve maps a free-text tag to its approved canonical form by
// case-insensitive lookup in the loaded vocabulary.
func (c *Client) Approve(tag string) (string, bool) {
	approved, ok := c.vocab[strings.ToLower(strings.TrimSpace(tag))]
	return approved, ok
}

// call performs one action API call with retry and exponential backoff,
// honoring Retry-After. 429 and 5xx are retried; other 4xx fail fast.
func (c *Client) call(ctx context.Context, method, action string, query url.Values, body interface{}) (json.RawMessage, error) {
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

		result, err := c.callOnce(ctx, method, action, query, body)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) callOnce(ctx context.Context, method, action string, query url.Values, body interface{}) (json.RawMessage, error) {
	endpoint := c.baseURL + "/api/3/action/" + action
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("action %s reported failure: %s", action, string(env.Result))
	}
	return env.Result, nil
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
