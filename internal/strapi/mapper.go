// internal/strapi/mapper.go
package strapi

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Product is the storefront view of a CMS product entry. The CMS exposes
// two envelope generations (flat entries and attributes-nested entries
// with relation/media wrappers); the mapper accepts both.
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	ImageURL     ImageSet `json:"imageUrl"`
	Images       []string `json:"images"`
	Material     string   `json:"material"`
	Occasions    []string `json:"occasions"`
	Category     string   `json:"category,omitempty"`
	Recipients   []string `json:"recipients"`
	Customizable bool     `json:"customizable"`
	Sizes        []string `json:"sizes"`
	InStock      bool     `json:"inStock"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"reviewCount"`
	Featured     bool     `json:"featured"`
	BulkEligible bool     `json:"bulkEligible"`
}

type ImageSet struct {
	Main string `json:"main"`
	Alt  string `json:"alt,omitempty"`
}

// Taxonomy is a generic reference entity (material, occasion, category,
// recipient list).
type Taxonomy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// MapProducts decodes the data section of a collection response. Entries
// that cannot be decoded are skipped rather than failing the whole page.
func MapProducts(data json.RawMessage) []Product {
	entries := decodeEntries(data)
	products := make([]Product, 0, len(entries))
	for _, entry := range entries {
		products = append(products, MapProduct(entry))
	}
	return products
}

// MapProduct normalizes one raw entry into a Product.
func MapProduct(raw map[string]interface{}) Product {
	entry := flattenEntry(raw)

	p := Product{
		ID:           asID(entry["id"]),
		Name:         asString(entry["name"]),
		Description:  asString(entry["description"]),
		Price:        asFloat(entry["price"]),
		Material:     relationName(entry["material"]),
		Occasions:    relationNames(entry["occasions"]),
		Category:     relationName(firstNonNil(entry["category"], entry["productCategory"])),
		Recipients:   relationNames(firstNonNil(entry["recipients"], entry["recipientLists"])),
		Customizable: asBool(entry["customizable"]),
		Sizes:        asStrings(entry["sizes"]),
		InStock:      asBool(entry["inStock"]),
		Rating:       asFloat(entry["rating"]),
		ReviewCount:  int(asFloat(entry["reviewCount"])),
		Featured:     asBool(entry["featured"]),
		BulkEligible: asBool(entry["bulkEligible"]),
	}

	p.ImageURL, p.Images = resolveImages(entry)
	return p
}

// MapTaxonomies decodes a reference-list response in either shape.
func MapTaxonomies(data json.RawMessage) []Taxonomy {
	entries := decodeEntries(data)
	items := make([]Taxonomy, 0, len(entries))
	for _, entry := range entries {
		flat := flattenEntry(entry)
		item := Taxonomy{
			ID:   asID(flat["id"]),
			Name: asString(flat["name"]),
			Slug: asString(flat["slug"]),
		}
		if item.Name != "" {
			items = append(items, item)
		}
	}
	return items
}

func decodeEntries(data json.RawMessage) []map[string]interface{} {
	if len(data) == 0 {
		return nil
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(data, &list); err == nil {
		return list
	}

	// Single-entry responses (detail endpoints) carry an object instead.
	var single map[string]interface{}
	if err := json.Unmarshal(data, &single); err == nil && single != nil {
		return []map[string]interface{}{single}
	}

	return nil
}

// flattenEntry merges the v4 {id, attributes:{...}} shape into one level;
// flat entries pass through untouched.
func flattenEntry(raw map[string]interface{}) map[string]interface{} {
	attrs, ok := raw["attributes"].(map[string]interface{})
	if !ok {
		return raw
	}

	flat := make(map[string]interface{}, len(attrs)+1)
	for k, v := range attrs {
		flat[k] = v
	}
	flat["id"] = raw["id"]
	return flat
}

// resolveImages picks the main/alt image and the gallery from whichever
// fields the entry carries: a plain imageUrl string, an imageUrl object,
// or featuredImage/gallery media relations.
func resolveImages(entry map[string]interface{}) (ImageSet, []string) {
	var set ImageSet

	switch v := entry["imageUrl"].(type) {
	case string:
		set.Main = v
	case map[string]interface{}:
		set.Main = asString(v["main"])
		set.Alt = asString(v["alt"])
	}

	if set.Main == "" {
		set.Main = mediaURL(entry["featuredImage"])
	}
	if set.Alt == "" {
		set.Alt = mediaURL(entry["altImage"])
	}

	images := mediaURLs(entry["gallery"])
	if extra := asStrings(entry["images"]); len(extra) > 0 {
		images = append(images, extra...)
	}
	if set.Main == "" && len(images) > 0 {
		set.Main = images[0]
	}

	return set, images
}

// mediaURL digs through {data:{attributes:{url}}} wrappers, accepting
// plain strings and unwrapped objects too.
func mediaURL(v interface{}) string {
	switch media := v.(type) {
	case string:
		return media
	case map[string]interface{}:
		if data, ok := media["data"]; ok {
			return mediaURL(data)
		}
		if attrs, ok := media["attributes"].(map[string]interface{}); ok {
			return asString(attrs["url"])
		}
		return asString(media["url"])
	}
	return ""
}

func mediaURLs(v interface{}) []string {
	switch media := v.(type) {
	case []interface{}:
		urls := make([]string, 0, len(media))
		for _, item := range media {
			if u := mediaURL(item); u != "" {
				urls = append(urls, u)
			}
		}
		return urls
	case map[string]interface{}:
		if data, ok := media["data"]; ok {
			return mediaURLs(data)
		}
		if u := mediaURL(media); u != "" {
			return []string{u}
		}
	}
	return nil
}

// relationName resolves a to-one relation to its name, whether the value
// is a bare string, an entry object, or a {data:{...}} wrapper.
func relationName(v interface{}) string {
	switch rel := v.(type) {
	case string:
		return rel
	case map[string]interface{}:
		if data, ok := rel["data"]; ok {
			return relationName(data)
		}
		flat := flattenEntry(rel)
		return asString(flat["name"])
	}
	return ""
}

func relationNames(v interface{}) []string {
	switch rel := v.(type) {
	case []interface{}:
		names := make([]string, 0, len(rel))
		for _, item := range rel {
			if name := relationName(item); name != "" {
				names = append(names, name)
			}
		}
		return names
	case map[string]interface{}:
		if data, ok := rel["data"]; ok {
			return relationNames(data)
		}
		if name := relationName(rel); name != "" {
			return []string{name}
		}
	case string:
		return []string{rel}
	}
	return nil
}

func firstNonNil(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func asID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case json.Number:
		return id.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asStrings(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
