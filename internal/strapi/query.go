// internal/strapi/query.go
package strapi

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 12
	maxPageSize     = 100
)

// Query is the filter state a product listing translates into CMS query
// parameters. Multi-valued relation fields cannot use a native list
// operator, so two or more values become an indexed OR-group of equality
// clauses instead.
type Query struct {
	Search       string
	Materials    []string
	Occasions    []string
	Category     string
	Recipients   []string
	MinPrice     *float64
	MaxPrice     *float64
	InStock      bool
	Featured     bool
	BulkEligible bool
	Page         int
	PageSize     int
}

// orClause is one equality/containment leaf inside an OR-group, keyed by
// the bracketed field path, e.g. "[material][name][$eq]".
type orClause struct {
	path  string
	op    string
	value string
}

// HasMultiValueFilter reports whether the query needs an OR-group on a
// relation field, the shape some CMS deployments reject with zero rows.
func (q Query) HasMultiValueFilter() bool {
	return len(q.Materials) >= 2 || len(q.Occasions) >= 2 || len(q.Recipients) >= 2
}

// BuildProductQuery translates the filter state into the CMS query
// parameter conventions: pagination[...], populate, filters[field][$op]
// comparisons and indexed filters[$or][i][...] groups.
func BuildProductQuery(q Query) url.Values {
	values := url.Values{}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}

	values.Set("pagination[page]", strconv.Itoa(page))
	values.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	values.Set("populate", "*")

	if q.MinPrice != nil {
		values.Set("filters[price][$gte]", formatPrice(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		values.Set("filters[price][$lte]", formatPrice(*q.MaxPrice))
	}

	if q.Category != "" {
		values.Set("filters[category][name][$eq]", q.Category)
	}
	if q.InStock {
		values.Set("filters[inStock][$eq]", "true")
	}
	if q.Featured {
		values.Set("filters[featured][$eq]", "true")
	}
	if q.BulkEligible {
		values.Set("filters[bulkEligible][$eq]", "true")
	}

	var groups [][]orClause

	if q.Search != "" {
		groups = append(groups, []orClause{
			{path: "[name]", op: "$containsi", value: q.Search},
			{path: "[description]", op: "$containsi", value: q.Search},
		})
	}
	groups = appendRelationFilter(groups, values, "material", q.Materials)
	groups = appendRelationFilter(groups, values, "occasions", q.Occasions)
	groups = appendRelationFilter(groups, values, "recipients", q.Recipients)

	// A lone group sits directly under filters[$or]; several groups must
	// each nest under filters[$and] so their indexes stay independent.
	switch len(groups) {
	case 0:
	case 1:
		writeORGroup(values, "filters", groups[0])
	default:
		for i, group := range groups {
			writeORGroup(values, fmt.Sprintf("filters[$and][%d]", i), group)
		}
	}

	return values
}

// appendRelationFilter emits a plain equality filter for a single value
// and queues an OR-group for two or more.
func appendRelationFilter(groups [][]orClause, values url.Values, field string, selected []string) [][]orClause {
	switch len(selected) {
	case 0:
		return groups
	case 1:
		values.Set(fmt.Sprintf("filters[%s][name][$eq]", field), selected[0])
		return groups
	}

	group := make([]orClause, 0, len(selected))
	for _, v := range selected {
		group = append(group, orClause{
			path:  fmt.Sprintf("[%s][name]", field),
			op:    "$eq",
			value: v,
		})
	}
	return append(groups, group)
}

func writeORGroup(values url.Values, prefix string, group []orClause) {
	for i, clause := range group {
		key := fmt.Sprintf("%s[$or][%d]%s[%s]", prefix, i, clause.path, clause.op)
		values.Set(key, clause.value)
	}
}

// SingleValueQueries expands a query with multi-value relation filters
// into one query per value, used when the deployed CMS ignores OR-groups.
// Pagination is dropped on purpose; the caller merges the fan-out into a
// single page.
func SingleValueQueries(q Query) []Query {
	if !q.HasMultiValueFilter() {
		return []Query{q}
	}

	var out []Query
	switch {
	case len(q.Materials) >= 2:
		for _, v := range q.Materials {
			clone := q
			clone.Materials = []string{v}
			clone.Page = 1
			out = append(out, SingleValueQueries(clone)...)
		}
	case len(q.Occasions) >= 2:
		for _, v := range q.Occasions {
			clone := q
			clone.Occasions = []string{v}
			clone.Page = 1
			out = append(out, SingleValueQueries(clone)...)
		}
	case len(q.Recipients) >= 2:
		for _, v := range q.Recipients {
			clone := q
			clone.Recipients = []string{v}
			clone.Page = 1
			out = append(out, SingleValueQueries(clone)...)
		}
	}
	return out
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
