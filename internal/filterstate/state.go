// internal/filterstate/state.go
package filterstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/giftcraft/storefront/internal/strapi"
)

// State is the set of active product filters. It is the single source of
// truth both for the query trigger and for the URL query string; FromQuery
// and ToQuery are exact inverses for canonical query strings.
//
// A price filter is either a named bucket or an explicit min/max pair,
// never both: when a bucket is set it wins and the explicit bounds are
// discarded.
type State struct {
	Search       string
	Materials    []string
	Occasions    []string
	Category     string
	Recipients   []string
	PriceBucket  string
	MinPrice     *float64
	MaxPrice     *float64
	Page         int
	BulkEligible bool

	// DerivedOccasions are auto-selected from the category→occasion table
	// when a category is chosen without explicit occasions. They feed the
	// product query but are hidden from chips and never written to the URL.
	DerivedOccasions []string
}

// Chip is one removable applied-filter marker. Only explicit, user-made
// selections become chips.
type Chip struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// PriceBucket is a named price tier offered by the filter UI.
type PriceBucket struct {
	Label string
	Min   *float64
	Max   *float64
}

var PriceBuckets = []PriceBucket{
	{Label: "under-25", Max: floatPtr(25)},
	{Label: "25-50", Min: floatPtr(25), Max: floatPtr(50)},
	{Label: "50-100", Min: floatPtr(50), Max: floatPtr(100)},
	{Label: "over-100", Min: floatPtr(100)},
}

// categoryOccasions maps a product category to the occasions it implies.
var categoryOccasions = map[string][]string{
	"wedding gifts":     {"wedding", "anniversary"},
	"baby gifts":        {"baby shower", "birthday"},
	"corporate gifts":   {"corporate"},
	"holiday ornaments": {"christmas"},
	"keepsakes":         {"anniversary", "valentines"},
}

// FromQuery parses a URL query string into a State. Unknown parameters
// are ignored; malformed numbers fall back to the unfiltered value.
func FromQuery(query url.Values) State {
	s := State{
		Search:       query.Get("q"),
		Materials:    splitList(query.Get("materials")),
		Occasions:    splitList(query.Get("occasions")),
		Recipients:   splitList(query.Get("recipients")),
		BulkEligible: query.Get("bulkEligible") == "true",
		Page:         1,
	}

	s.Category = query.Get("categories")
	if s.Category == "" {
		s.Category = query.Get("category")
	}

	if bucket := query.Get("priceRange"); bucket != "" {
		// A named bucket wins over explicit bounds.
		if _, _, ok := bucketBounds(bucket); ok {
			s.PriceBucket = bucket
		}
	} else {
		s.MinPrice = parseFloat(query.Get("minPrice"))
		s.MaxPrice = parseFloat(query.Get("maxPrice"))
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		s.Page = page
	}

	s.deriveOccasions()
	return s
}

// ToQuery serializes the explicit filter selections back into canonical
// URL query parameters. Defaults (page 1, empty fields) and derived
// occasions are omitted.
func (s State) ToQuery() url.Values {
	query := url.Values{}

	if s.Search != "" {
		query.Set("q", s.Search)
	}
	if len(s.Materials) > 0 {
		query.Set("materials", strings.Join(s.Materials, ","))
	}
	if len(s.Occasions) > 0 {
		query.Set("occasions", strings.Join(s.Occasions, ","))
	}
	if s.Category != "" {
		query.Set("category", s.Category)
	}
	if len(s.Recipients) > 0 {
		query.Set("recipients", strings.Join(s.Recipients, ","))
	}
	if s.PriceBucket != "" {
		query.Set("priceRange", s.PriceBucket)
	} else {
		if s.MinPrice != nil {
			query.Set("minPrice", formatFloat(*s.MinPrice))
		}
		if s.MaxPrice != nil {
			query.Set("maxPrice", formatFloat(*s.MaxPrice))
		}
	}
	if s.Page > 1 {
		query.Set("page", strconv.Itoa(s.Page))
	}
	if s.BulkEligible {
		query.Set("bulkEligible", "true")
	}

	return query
}

// Query translates the state into the CMS filter query, resolving the
// price bucket to bounds and folding derived occasions in.
func (s State) Query(pageSize int) strapi.Query {
	q := strapi.Query{
		Search:       s.Search,
		Materials:    s.Materials,
		Occasions:    s.Occasions,
		Category:     s.Category,
		Recipients:   s.Recipients,
		BulkEligible: s.BulkEligible,
		Page:         s.Page,
		PageSize:     pageSize,
	}

	if len(q.Occasions) == 0 && len(s.DerivedOccasions) > 0 {
		q.Occasions = s.DerivedOccasions
	}

	if s.PriceBucket != "" {
		q.MinPrice, q.MaxPrice, _ = bucketBounds(s.PriceBucket)
	} else {
		q.MinPrice = s.MinPrice
		q.MaxPrice = s.MaxPrice
	}

	return q
}

// IsZero reports whether no filter is set at all (page alone does not
// count as a filter).
func (s State) IsZero() bool {
	return s.Search == "" &&
		len(s.Materials) == 0 &&
		len(s.Occasions) == 0 &&
		s.Category == "" &&
		len(s.Recipients) == 0 &&
		s.PriceBucket == "" &&
		s.MinPrice == nil &&
		s.MaxPrice == nil &&
		!s.BulkEligible
}

// Chips lists the removable applied-filter chips. Derived occasions are
// deliberately absent: the user never set them, so they must not be
// surfaced as removable selections.
func (s State) Chips() []Chip {
	var chips []Chip

	if s.Search != "" {
		chips = append(chips, Chip{Kind: "search", Value: s.Search, Label: "\"" + s.Search + "\""})
	}
	for _, m := range s.Materials {
		chips = append(chips, Chip{Kind: "material", Value: m, Label: m})
	}
	for _, o := range s.Occasions {
		chips = append(chips, Chip{Kind: "occasion", Value: o, Label: o})
	}
	if s.Category != "" {
		chips = append(chips, Chip{Kind: "category", Value: s.Category, Label: s.Category})
	}
	for _, r := range s.Recipients {
		chips = append(chips, Chip{Kind: "recipient", Value: r, Label: "For " + r})
	}
	if s.PriceBucket != "" {
		chips = append(chips, Chip{Kind: "price", Value: s.PriceBucket, Label: s.PriceBucket})
	} else if s.MinPrice != nil || s.MaxPrice != nil {
		chips = append(chips, Chip{Kind: "price", Value: "custom", Label: priceLabel(s.MinPrice, s.MaxPrice)})
	}
	if s.BulkEligible {
		chips = append(chips, Chip{Kind: "bulk", Value: "true", Label: "Bulk eligible"})
	}

	return chips
}

// ToggleMaterial flips a material selection (checkbox semantics).
func (s *State) ToggleMaterial(name string) {
	s.Materials = toggleValue(s.Materials, name)
}

// ToggleOccasion flips an explicit occasion selection. Explicit
// selections replace the derived set.
func (s *State) ToggleOccasion(name string) {
	s.Occasions = toggleValue(s.Occasions, name)
	s.deriveOccasions()
}

// ToggleRecipient flips a recipient selection (checkbox semantics).
func (s *State) ToggleRecipient(name string) {
	s.Recipients = toggleValue(s.Recipients, name)
}

// ToggleCategory selects a category, or deselects it when it is already
// the active one (radio semantics).
func (s *State) ToggleCategory(name string) {
	if strings.EqualFold(s.Category, name) {
		s.Category = ""
	} else {
		s.Category = name
	}
	s.deriveOccasions()
}

// SetPriceBucket selects a named bucket and clears explicit bounds.
func (s *State) SetPriceBucket(label string) {
	s.PriceBucket = label
	s.MinPrice = nil
	s.MaxPrice = nil
}

// SetPriceBounds sets explicit bounds and clears any bucket.
func (s *State) SetPriceBounds(min, max *float64) {
	s.PriceBucket = ""
	s.MinPrice = min
	s.MaxPrice = max
}

func (s *State) deriveOccasions() {
	if s.Category == "" || len(s.Occasions) > 0 {
		s.DerivedOccasions = nil
		return
	}
	s.DerivedOccasions = categoryOccasions[strings.ToLower(s.Category)]
}

func bucketBounds(label string) (*float64, *float64, bool) {
	for _, b := range PriceBuckets {
		if b.Label == label {
			return b.Min, b.Max, true
		}
	}
	return nil, nil, false
}

func toggleValue(list []string, value string) []string {
	for i, v := range list {
		if strings.EqualFold(v, value) {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return append(list, value)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func priceLabel(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return formatFloat(*min) + "–" + formatFloat(*max)
	case min != nil:
		return "from " + formatFloat(*min)
	case max != nil:
		return "up to " + formatFloat(*max)
	}
	return ""
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatPtr(v float64) *float64 {
	return &v
}
