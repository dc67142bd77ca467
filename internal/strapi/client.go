// internal/strapi/client.go
package strapi

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

	"github.com/sirupsen/logrus"
)

// Client is a thin REST client for the CMS collection API. All content
// types live under the /api prefix and share the {data, meta} envelope.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Response struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

type Meta struct {
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// StatusError carries the upstream status and raw body so callers can
// surface the CMS error verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms responded %d: %s", e.StatusCode, e.Body)
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithAuth returns the headers for an optional bearer token. An empty
// token yields no headers at all, so callers can splat the result into a
// request unconditionally.
func WithAuth(token string) http.Header {
	if token == "" {
		return nil
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	endpoint := c.baseURL + "/api/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(map[string]interface{}{"data": body})
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range WithAuth(c.token) {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cms response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("CMS request rejected")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode cms response: %w", err)
	}

	return &envelope, nil
}
