// internal/catalog/service_test.go
package catalog

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftcraft/storefront/internal/strapi"
)

func TestSearchCachesIdenticalQueries(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		return productsResponse(product(1, "Bowl", "wood", 29)), nil
	}}
	svc := NewService(cms, time.Minute)

	q := strapi.Query{Materials: []string{"wood"}}

	first, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, first.Products, 1)
	require.Equal(t, 1, cms.callCount())

	second, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cms.callCount(), "identical query within cache TTL must not refetch")
}

func TestSearchCacheExpires(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		return productsResponse(product(1, "Bowl", "wood", 29)), nil
	}}
	svc := NewService(cms, time.Minute)

	q := strapi.Query{Materials: []string{"wood"}}
	_, err := svc.Search(context.Background(), q)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, cms.callCount())
}

func TestSearchFallbackMergesPerValueQueries(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		// The deployed CMS "ignores" OR-groups: any query carrying one
		// comes back empty.
		for key := range query {
			if strings.Contains(key, "$or") {
				return productsResponse(), nil
			}
		}
		switch query.Get("filters[material][name][$eq]") {
		case "wood":
			return productsResponse(
				product(1, "Bowl", "wood", 29),
				product(2, "Frame", "wood", 19),
			), nil
		case "resin":
			return productsResponse(
				product(2, "Frame", "wood", 19), // duplicate across values
				product(3, "Coaster", "resin", 9),
			), nil
		}
		return productsResponse(), nil
	}}
	svc := NewService(cms, 0)

	result, err := svc.Search(context.Background(), strapi.Query{Materials: []string{"wood", "resin"}})

	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 3, result.Total, "merged results dedupe by id")
	ids := make([]string, 0, len(result.Products))
	for _, p := range result.Products {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"1", "2", "3"}, ids)
}

func TestSearchDefensiveFilterDropsMismatches(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		// Server "forgot" to filter: returns a glass product for a wood query.
		return productsResponse(
			product(1, "Bowl", "wood", 29),
			product(2, "Vase", "glass", 49),
		), nil
	}}
	svc := NewService(cms, 0)

	result, err := svc.Search(context.Background(), strapi.Query{Materials: []string{"wood"}})

	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "wood", result.Products[0].Material)
}

func TestSearchErrorPropagates(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		return errorResponse(502)
	}}
	svc := NewService(cms, 0)

	_, err := svc.Search(context.Background(), strapi.Query{Search: "bowl"})
	assert.Error(t, err)
}

func TestGetReturnsNilForMissingProduct(t *testing.T) {
	cms := &stubCMS{handler: func(path string, query url.Values) (*strapi.Response, error) {
		return &strapi.Response{Data: []byte(`null`)}, nil
	}}
	svc := NewService(cms, 0)

	p, err := svc.Get(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMatchesQuery(t *testing.T) {
	p := strapi.Product{
		Name:      "Carved Bowl",
		Material:  "wood",
		Occasions: []string{"birthday"},
		Category:  "keepsakes",
		Price:     29,
		InStock:   true,
	}

	tests := []struct {
		name  string
		query strapi.Query
		want  bool
	}{
		{"no filters", strapi.Query{}, true},
		{"material match fold", strapi.Query{Materials: []string{"Wood"}}, true},
		{"material mismatch", strapi.Query{Materials: []string{"glass"}}, false},
		{"occasion intersection", strapi.Query{Occasions: []string{"wedding", "birthday"}}, true},
		{"occasion miss", strapi.Query{Occasions: []string{"wedding"}}, false},
		{"price in range", strapi.Query{MinPrice: floatPtrTest(20), MaxPrice: floatPtrTest(30)}, true},
		{"price below min", strapi.Query{MinPrice: floatPtrTest(30)}, false},
		{"search name", strapi.Query{Search: "bowl"}, true},
		{"search miss", strapi.Query{Search: "mug"}, false},
		{"bulk flag filters", strapi.Query{BulkEligible: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesQuery(p, tt.query))
		})
	}
}

func floatPtrTest(v float64) *float64 { return &v }
