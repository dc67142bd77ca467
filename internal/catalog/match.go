// internal/catalog/match.go
package catalog

import (
	"strings"

	"github.com/giftcraft/storefront/internal/strapi"
)

// filterProducts re-validates every product against the query. The CMS
// already filtered server-side for most query shapes; this pass keeps the
// storefront consistent no matter which shape actually executed.
func filterProducts(products []strapi.Product, q strapi.Query) []strapi.Product {
	out := make([]strapi.Product, 0, len(products))
	for _, p := range products {
		if matchesQuery(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matchesQuery(p strapi.Product, q strapi.Query) bool {
	if len(q.Materials) > 0 && !containsFold(q.Materials, p.Material) {
		return false
	}
	if len(q.Occasions) > 0 && !intersectsFold(q.Occasions, p.Occasions) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(q.Category, p.Category) {
		return false
	}
	if len(q.Recipients) > 0 && !intersectsFold(q.Recipients, p.Recipients) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.InStock && !p.InStock {
		return false
	}
	if q.Featured && !p.Featured {
		return false
	}
	if q.BulkEligible && !p.BulkEligible {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, v := range haystack {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}

func intersectsFold(selected, actual []string) bool {
	for _, want := range selected {
		if containsFold(actual, want) {
			return true
		}
	}
	return false
}
