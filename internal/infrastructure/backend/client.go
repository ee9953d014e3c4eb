// Package backend is the gateway's client for the marketplace REST
// backend. A shared Client owns the transport; one Dispatcher per role
// scopes requests to that role's credentials and the active tenant.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketfront/portal-gateway/internal/core/domain"
	"github.com/marketfront/portal-gateway/internal/pkg/metrics"
)

const defaultRequestTimeout = 10 * time.Second

// Client issues requests to the marketplace backend. It is safe for
// concurrent use and shared by all four role dispatchers.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a Client for the backend at baseURL. A nil httpClient
// gets a default with a conservative timeout.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{baseURL: u, http: httpClient, log: log}, nil
}

// do sends one request. token, when non-empty, becomes the Authorization
// header — exactly one role's token per request, the caller's. The tenant
// context travels as a header for slug/subdomain resolution and as the
// `client` query parameter when the URL named the tenant id explicitly,
// matching how the backend expects to receive each style.
func (c *Client) do(ctx context.Context, role domain.Role, method, path, token string, tc domain.TenantContext, in, out any) (int, error) {
	u := c.baseURL.JoinPath(path)

	if tc.Source == domain.SourceClientParam && tc.ID != "" {
		q := u.Query()
		q.Set("client", tc.ID)
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	switch tc.Source {
	case domain.SourcePathSlug, domain.SourceSubdomain:
		if tc.ID != "" {
			req.Header.Set("X-Tenant-ID", tc.ID)
		} else if tc.Slug != "" {
			req.Header.Set("X-Tenant-Slug", tc.Slug)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(string(role), "error").Observe(time.Since(start).Seconds())
		return 0, fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(string(role), statusClass(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("backend %s %s: %s", method, path, errorMessage(raw, resp.StatusCode))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// errorMessage pulls the backend's {"error": ...} envelope out of an error
// body, falling back to the status text for anything malformed.
func errorMessage(raw []byte, status int) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.ToLower(http.StatusText(status))
}

func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
