// internal/catalog/taxonomy.go
package catalog

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/giftcraft/storefront/internal/kvstore"
	"github.com/giftcraft/storefront/internal/strapi"
)

const taxonomyStoreKey = "taxonomies:v1"

// cmsGetter is the slice of the CMS client the catalog needs.
type cmsGetter interface {
	Get(ctx context.Context, path string, query url.Values) (*strapi.Response, error)
}

// TaxonomySet holds the three reference lists the filter UI is built
// from.
type TaxonomySet struct {
	Materials  []strapi.Taxonomy `json:"materials"`
	Occasions  []strapi.Taxonomy `json:"occasions"`
	Categories []strapi.Taxonomy `json:"categories"`
}

type persistedTaxonomies struct {
	TS         int64             `json:"ts"`
	Materials  []strapi.Taxonomy `json:"materials"`
	Occasions  []strapi.Taxonomy `json:"occasions"`
	Categories []strapi.Taxonomy `json:"categories"`
}

// Taxonomies caches the reference lists in two layers: a per-process
// memory layer and a persisted snapshot with a TTL, so a warm session
// never refetches and a fresh one refetches at most once per TTL window.
type Taxonomies struct {
	cms   cmsGetter
	store *kvstore.Store
	ttl   time.Duration
	now   func() time.Time

	mu  sync.Mutex
	mem *TaxonomySet
}

func NewTaxonomies(cms cmsGetter, store *kvstore.Store, ttl time.Duration) *Taxonomies {
	return &Taxonomies{
		cms:   cms,
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetAll returns the cached set, reading through memory, then the
// persisted snapshot, then the network. A failed fetch for one taxonomy
// degrades to an empty list for that taxonomy only.
func (t *Taxonomies) GetAll(ctx context.Context) (TaxonomySet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mem != nil {
		return *t.mem, nil
	}

	if snapshot, ok := t.readSnapshot(); ok {
		t.mem = snapshot
		return *snapshot, nil
	}

	set := t.fetchAll(ctx)
	t.mem = &set
	t.writeSnapshot(set)

	return set, nil
}

// Invalidate clears both cache layers; the next GetAll refetches.
func (t *Taxonomies) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mem = nil
	if t.store != nil {
		t.store.Delete(taxonomyStoreKey)
	}
}

func (t *Taxonomies) readSnapshot() (*TaxonomySet, bool) {
	if t.store == nil {
		return nil, false
	}

	var record persistedTaxonomies
	if !t.store.Get(taxonomyStoreKey, &record) {
		return nil, false
	}

	age := t.now().Sub(time.Unix(record.TS, 0))
	if age < 0 || age > t.ttl {
		return nil, false
	}

	return &TaxonomySet{
		Materials:  record.Materials,
		Occasions:  record.Occasions,
		Categories: record.Categories,
	}, true
}

func (t *Taxonomies) writeSnapshot(set TaxonomySet) {
	if t.store == nil {
		return
	}

	record := persistedTaxonomies{
		TS:         t.now().Unix(),
		Materials:  set.Materials,
		Occasions:  set.Occasions,
		Categories: set.Categories,
	}
	if err := t.store.Put(taxonomyStoreKey, record); err != nil {
		logrus.WithError(err).Warn("Failed to persist taxonomy snapshot")
	}
}

// fetchAll issues the three reference-list requests concurrently.
func (t *Taxonomies) fetchAll(ctx context.Context) TaxonomySet {
	var set TaxonomySet

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set.Materials = t.fetchOne(ctx, "materials")
		return nil
	})
	g.Go(func() error {
		set.Occasions = t.fetchOne(ctx, "occasions")
		return nil
	})
	g.Go(func() error {
		set.Categories = t.fetchOne(ctx, "categories")
		return nil
	})
	g.Wait()

	return set
}

func (t *Taxonomies) fetchOne(ctx context.Context, path string) []strapi.Taxonomy {
	query := url.Values{}
	query.Set("pagination[pageSize]", "100")

	resp, err := t.cms.Get(ctx, path, query)
	if err != nil {
		logrus.WithError(err).WithField("taxonomy", path).Warn("Taxonomy fetch failed, using empty list")
		return []strapi.Taxonomy{}
	}

	return strapi.MapTaxonomies(resp.Data)
}
