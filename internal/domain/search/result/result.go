// Package result defines the typed search response returned to callers.
package result

import "github.com/moorfield/propsearch/internal/domain/sale"

// Facets is the per-dimension breakdown of distinct values present among the
// matches. All five dimensions are always present; a dimension with no
// buckets is an empty list, never absent.
type Facets struct {
	Towns      []string
	Localities []string
	Districts  []string
	Counties   []string
	Prices     []string
}

// Response is one page of search results. Total is nil when the backend
// could not compute a match count.
type Response struct {
	Results []sale.Transaction
	Total   *int64
	Facets  Facets
	Page    int
}

// Empty returns the fallback response for searches that cannot match
// anything (malformed postcode, unresolved geocode): no results, no facets,
// no count. This is deliberately not an error.
func Empty(page int) Response {
	return Response{
		Results: []sale.Transaction{},
		Facets: Facets{
			Towns:      []string{},
			Localities: []string{},
			Districts:  []string{},
			Counties:   []string{},
			Prices:     []string{},
		},
		Page: page,
	}
}
