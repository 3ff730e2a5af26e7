package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned when a platform has no credentials.
var ErrNotConfigured = errors.New("platform credentials not configured")

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error %d: %s", e.Platform, e.StatusCode, e.Body)
}

// apiClient performs rate limited, authenticated GET requests.
type apiClient struct {
	platform string
	baseURL  string
	token    string
	http     *http.Client
	limiter  *rate.Limiter
}

func newAPIClient(platform, baseURL, token string, cfg Config) *apiClient {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &apiClient{
		platform: platform,
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		http:     &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// getJSON fetches path and decodes the body into out. Numbers decode as json.Number.
func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	if c.token == "" {
		return fmt.Errorf("%s: %w", c.platform, ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Platform: c.platform, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.platform, err)
	}
	return nil
}

// parseTime accepts the timestamp layouts used by the platforms.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// joinUnique joins the non-empty values in first-seen order.
func joinUnique(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}
