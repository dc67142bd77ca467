// internal/catalog/service.go
package catalog

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/giftcraft/storefront/internal/strapi"
)

// Result is one page of products. When the OR-group fallback merged a
// fan-out of single-value queries, Merged is set and the whole result is
// reported as a single page (server-side pagination is forfeited).
type Result struct {
	Products  []strapi.Product `json:"products"`
	Page      int              `json:"page"`
	PageSize  int              `json:"pageSize"`
	PageCount int              `json:"pageCount"`
	Total     int              `json:"total"`
	Merged    bool             `json:"merged,omitempty"`
}

type cachedResult struct {
	result  Result
	expires time.Time
}

// Service runs product queries against the CMS: identical queries are
// deduplicated in flight and cached briefly, OR-group queries that come
// back empty fall back to a per-value fan-out, and every response passes
// a client-side re-filter so server- and client-side filtering can never
// disagree.
type Service struct {
	cms      cmsGetter
	cacheTTL time.Duration
	now      func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cachedResult
}

func NewService(cms cmsGetter, cacheTTL time.Duration) *Service {
	return &Service{
		cms:      cms,
		cacheTTL: cacheTTL,
		now:      time.Now,
		cache:    make(map[string]cachedResult),
	}
}

// Search executes a filter query. The cache key is the canonical encoded
// query, so two filter states that build the same parameters share one
// request.
func (s *Service) Search(ctx context.Context, q strapi.Query) (Result, error) {
	key := strapi.BuildProductQuery(q).Encode()

	if result, ok := s.cached(key); ok {
		return result, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := s.execute(ctx, q)
		if err != nil {
			return Result{}, err
		}
		s.storeCached(key, result)
		return result, nil
	})
	if err != nil {
		return Result{}, err
	}

	return v.(Result), nil
}

// Get fetches a single product by id.
func (s *Service) Get(ctx context.Context, id string) (*strapi.Product, error) {
	query := url.Values{}
	query.Set("populate", "*")

	resp, err := s.cms.Get(ctx, "products/"+id, query)
	if err != nil {
		return nil, err
	}

	products := strapi.MapProducts(resp.Data)
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

func (s *Service) execute(ctx context.Context, q strapi.Query) (Result, error) {
	params := strapi.BuildProductQuery(q)

	resp, err := s.cms.Get(ctx, "products", params)
	if err != nil {
		return Result{}, err
	}

	products := strapi.MapProducts(resp.Data)

	// Zero rows out of an OR-group query is the signal that the deployed
	// CMS does not understand the group shape; fan out one request per
	// value and merge.
	if len(products) == 0 && q.HasMultiValueFilter() {
		return s.fanOut(ctx, q)
	}

	meta := resp.Meta.Pagination
	result := Result{
		Products:  filterProducts(products, q),
		Page:      meta.Page,
		PageSize:  meta.PageSize,
		PageCount: meta.PageCount,
		Total:     meta.Total,
	}
	if result.Page == 0 {
		result.Page = 1
	}
	return result, nil
}

// fanOut issues one single-value query per selected value and merges the
// results, deduplicating by product id. The merged set is one page.
func (s *Service) fanOut(ctx context.Context, q strapi.Query) (Result, error) {
	logrus.WithField("query", strapi.BuildProductQuery(q).Encode()).
		Info("OR-group returned no rows, falling back to per-value queries")

	seen := make(map[string]bool)
	var merged []strapi.Product

	for _, sub := range strapi.SingleValueQueries(q) {
		resp, err := s.cms.Get(ctx, "products", strapi.BuildProductQuery(sub))
		if err != nil {
			logrus.WithError(err).Warn("Fallback query failed, skipping value")
			continue
		}
		for _, p := range strapi.MapProducts(resp.Data) {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			merged = append(merged, p)
		}
	}

	merged = filterProducts(merged, q)
	return Result{
		Products: merged,
		Page:     1,
		PageSize: len(merged),
		Total:    len(merged),
		Merged:   true,
	}, nil
}

func (s *Service) cached(key string) (Result, bool) {
	if s.cacheTTL <= 0 {
		return Result{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok || s.now().After(entry.expires) {
		delete(s.cache, key)
		return Result{}, false
	}
	return entry.result, true
}

func (s *Service) storeCached(key string, result Result) {
	if s.cacheTTL <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cachedResult{result: result, expires: s.now().Add(s.cacheTTL)}
}
