// internal/catalog/stub_test.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/giftcraft/storefront/internal/strapi"
)

// stubCMS records every request and delegates to a configurable handler.
type stubCMS struct {
	mu      sync.Mutex
	calls   []string
	handler func(path string, query url.Values) (*strapi.Response, error)
}

func (s *stubCMS) Get(ctx context.Context, path string, query url.Values) (*strapi.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, path)
	s.mu.Unlock()

	if s.handler != nil {
		return s.handler(path, query)
	}
	return &strapi.Response{Data: json.RawMessage(`[]`)}, nil
}

func (s *stubCMS) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func productsResponse(products ...map[string]interface{}) *strapi.Response {
	if products == nil {
		products = []map[string]interface{}{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		panic(err)
	}
	return &strapi.Response{
		Data: raw,
		Meta: strapi.Meta{Pagination: strapi.Pagination{
			Page:      1,
			PageSize:  12,
			PageCount: 1,
			Total:     len(products),
		}},
	}
}

func product(id int, name, material string, price float64, occasions ...string) map[string]interface{} {
	occ := make([]interface{}, 0, len(occasions))
	for _, o := range occasions {
		occ = append(occ, o)
	}
	return map[string]interface{}{
		"id":        id,
		"name":      name,
		"material":  material,
		"price":     price,
		"occasions": occ,
		"inStock":   true,
	}
}

func taxonomyResponse(names ...string) *strapi.Response {
	entries := make([]map[string]interface{}, 0, len(names))
	for i, name := range names {
		entries = append(entries, map[string]interface{}{"id": i + 1, "name": name})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		panic(err)
	}
	return &strapi.Response{Data: raw}
}

func errorResponse(status int) (*strapi.Response, error) {
	return nil, &strapi.StatusError{StatusCode: status, Body: fmt.Sprintf("status %d", status)}
}
