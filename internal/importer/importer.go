// internal/importer/importer.go
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/giftcraft/storefront/internal/strapi"
	"github.com/giftcraft/storefront/internal/utils"
)

// Seed is the shape of the db.json seed file.
type Seed struct {
	Products []SeedProduct `json:"products"`
}

type SeedProduct struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" validate:"gte=0"`
	Material     string   `json:"material"`
	Category     string   `json:"category"`
	Occasions    []string `json:"occasions"`
	Recipients   []string `json:"recipients"`
	Customizable bool     `json:"customizable"`
	Sizes        []string `json:"sizes"`
	InStock      bool     `json:"inStock"`
	Featured     bool     `json:"featured"`
	BulkEligible bool     `json:"bulkEligible"`
}

// Summary reports what one run did.
type Summary struct {
	Created int
	Skipped int
}

type cmsClient interface {
	Get(ctx context.Context, path string, query url.Values) (*strapi.Response, error)
	Post(ctx context.Context, path string, body interface{}) (*strapi.Response, error)
}

// Importer seeds the CMS from a static file. Taxonomy references are
// resolved by exact name lookup, created when absent, and memoized so a
// name referenced by many products is resolved once per run. Products
// are created sequentially; a failed product is logged and skipped.
type Importer struct {
	cms  cmsClient
	memo map[string]map[string]string // collection -> name -> id
}

func New(cms cmsClient) *Importer {
	return &Importer{
		cms:  cms,
		memo: make(map[string]map[string]string),
	}
}

// LoadSeed reads and decodes the seed file.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &seed, nil
}

// Run seeds every product in order. There is no transaction and no
// rollback; rerunning is safe because taxonomy resolution is
// lookup-before-create.
func (im *Importer) Run(ctx context.Context, seed *Seed) Summary {
	var summary Summary

	for _, product := range seed.Products {
		if err := ctx.Err(); err != nil {
			logrus.WithError(err).Warn("Import interrupted")
			summary.Skipped += len(seed.Products) - summary.Created - summary.Skipped
			break
		}

		if err := im.importProduct(ctx, product); err != nil {
			logrus.WithError(err).WithField("product", product.Name).Error("Product import failed, continuing")
			summary.Skipped++
			continue
		}
		summary.Created++
	}

	return summary
}

func (im *Importer) importProduct(ctx context.Context, product SeedProduct) error {
	if err := utils.ValidateStruct(&product); err != nil {
		return fmt.Errorf("invalid seed entry: %w", err)
	}

	payload := map[string]interface{}{
		"name":         product.Name,
		"description":  product.Description,
		"price":        product.Price,
		"customizable": product.Customizable,
		"sizes":        product.Sizes,
		"inStock":      product.InStock,
		"featured":     product.Featured,
		"bulkEligible": product.BulkEligible,
	}

	if product.Material != "" {
		id, err := im.resolve(ctx, "materials", product.Material)
		if err != nil {
			return err
		}
		payload["material"] = id
	}

	if product.Category != "" {
		id, err := im.resolve(ctx, "categories", product.Category)
		if err != nil {
			return err
		}
		payload["category"] = id
	}

	occasionIDs, err := im.resolveAll(ctx, "occasions", product.Occasions)
	if err != nil {
		return err
	}
	payload["occasions"] = occasionIDs

	recipientIDs, err := im.resolveAll(ctx, "recipient-lists", product.Recipients)
	if err != nil {
		return err
	}
	payload["recipients"] = recipientIDs

	_, err = im.cms.Post(ctx, "products", payload)
	return err
}

func (im *Importer) resolveAll(ctx context.Context, collection string, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := im.resolve(ctx, collection, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolve returns the CMS id for a taxonomy name, creating the entry if
// no exact-name match exists.
func (im *Importer) resolve(ctx context.Context, collection, name string) (string, error) {
	if ids, ok := im.memo[collection]; ok {
		if id, ok := ids[name]; ok {
			return id, nil
		}
	}

	query := url.Values{}
	query.Set("filters[name][$eq]", name)
	query.Set("pagination[pageSize]", "1")

	resp, err := im.cms.Get(ctx, collection, query)
	if err != nil {
		return "", fmt.Errorf("lookup %s %q failed: %w", collection, name, err)
	}

	if existing := strapi.MapTaxonomies(resp.Data); len(existing) > 0 {
		im.remember(collection, name, existing[0].ID)
		return existing[0].ID, nil
	}

	created, err := im.cms.Post(ctx, collection, map[string]interface{}{"name": name})
	if err != nil {
		return "", fmt.Errorf("create %s %q failed: %w", collection, name, err)
	}

	entries := strapi.MapTaxonomies(created.Data)
	if len(entries) == 0 {
		return "", fmt.Errorf("create %s %q returned no entry", collection, name)
	}

	logrus.WithFields(logrus.Fields{
		"collection": collection,
		"name":       name,
		"id":         entries[0].ID,
	}).Info("Created taxonomy entry")

	im.remember(collection, name, entries[0].ID)
	return entries[0].ID, nil
}

func (im *Importer) remember(collection, name, id string) {
	if im.memo[collection] == nil {
		im.memo[collection] = make(map[string]string)
	}
	im.memo[collection][name] = id
}
