// internal/services/proxy_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// hopHeaders must not be copied in either direction; they describe the
// individual connection, not the request.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ProxyService forwards storefront requests to the CMS under its /api
// prefix: method, query and body are copied through, status, headers and
// body come back verbatim. No retry, no caching.
type ProxyService struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewProxyService(baseURL, token string, timeout time.Duration) *ProxyService {
	return &ProxyService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward relays one request to the CMS and returns the upstream
// response. The caller owns the response body.
func (s *ProxyService) Forward(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader) (*http.Response, error) {
	endpoint := s.baseURL + "/api/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	copyHeaders(req.Header, header)
	for _, h := range hopHeaders {
		req.Header.Del(h)
	}
	req.Header.Del("Host")

	// Inject the service token unless the caller authenticated itself.
	if s.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Error("Upstream request failed")
		return nil, err
	}

	for _, h := range hopHeaders {
		resp.Header.Del(h)
	}
	return resp, nil
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
