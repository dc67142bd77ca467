// internal/router/router_test.go
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftcraft/storefront/internal/config"
)

func fakeCMS(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/products":
			w.Write([]byte(`{
				"data": [{"id": 1, "name": "Carved Bowl", "price": 29.99, "material": "wood", "inStock": true}],
				"meta": {"pagination": {"page": 1, "pageSize": 12, "pageCount": 1, "total": 1}}
			}`))
		case strings.HasPrefix(r.URL.Path, "/api/blog-posts/"):
			w.Write([]byte(`{"data": {"id": 3, "title": "Gift Guide"}}`))
		case r.URL.Path == "/api/materials" || r.URL.Path == "/api/occasions" || r.URL.Path == "/api/categories":
			w.Write([]byte(`{"data": [{"id": 1, "name": "Wood"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"status": 404}}`))
		}
	}))
}

func testConfig(t *testing.T, cmsURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "development",
		Strapi: config.StrapiConfig{
			BaseURL:  cmsURL,
			Timeout:  5,
			PageSize: 12,
		},
		Email: config.EmailConfig{FromEmail: "noreply@giftcraft.store", FromName: "Giftcraft"},
		Cache: config.CacheConfig{Dir: t.TempDir(), TaxonomyTTL: time.Hour, QueryTTL: time.Minute},
	}
}

func perform(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	r := Initialize(testConfig(t, cms.URL))
	w := perform(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestProductsEndpointEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	r := Initialize(testConfig(t, cms.URL))
	w := perform(r, http.MethodGet, "/proxy/products?materials=wood", "")

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Carved Bowl", envelope.Data[0].Name)
	assert.Contains(t, envelope.Meta, "pagination")
}

func TestTaxonomiesEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	r := Initialize(testConfig(t, cms.URL))
	w := perform(r, http.MethodGet, "/proxy/taxonomies", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Wood")
}

func TestUnroutedProxyPathForwardsToCMS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	r := Initialize(testConfig(t, cms.URL))
	w := perform(r, http.MethodGet, "/proxy/blog-posts/3", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gift Guide")
}

func TestCommentNotificationValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	r := Initialize(testConfig(t, cms.URL))
	w := perform(r, http.MethodPost, "/api/email/comment-notification", `{"author": "Maria"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommentNotificationAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	// No SMTP host configured: the notification is logged, not sent, and
	// the endpoint still reports success.
	r := Initialize(testConfig(t, cms.URL))
	payload := `{
		"blogPostId": 3,
		"author": "Maria",
		"email": "maria@example.com",
		"content": "Lovely bowl!",
		"adminEmail": "admin@giftcraft.store"
	}`
	w := perform(r, http.MethodPost, "/api/email/comment-notification", payload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent":true`)
}

func TestUnknownPathIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cms := fakeCMS(t)
	defer cms.Close()

	r := Initialize(testConfig(t, cms.URL))
	w := perform(r, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
