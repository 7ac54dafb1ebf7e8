// Package db defines the backend-neutral contract between the core and the
// search engine: query/result shapes, index management, bulk upsert, and the
// suggestion dictionary.
package db

import (
	"context"
	"time"

	"github.com/moorfield/propsearch/internal/domain/search/plan"
)

// Store is the search-backend facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Searcher
	Suggester
	BulkUpserter
	IndexManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SearchQuery is one executable search: a query plan bound to an index.
type SearchQuery struct {
	IndexName string
	Plan      plan.Plan
}

// SearchResult is one backend result page: documents, per-dimension facet
// buckets, and an optional total match count.
type SearchResult struct {
	Total   *int64
	Entries []SearchEntry
	Facets  []FacetGroup
}

// SearchEntry is a single document hit, as flat field name/value pairs.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// FacetGroup holds the buckets returned for one facet dimension.
type FacetGroup struct {
	Field   string
	Buckets []FacetBucket
}

// FacetBucket is one distinct value with its match count.
type FacetBucket struct {
	Value string
	Count int64
}

// Searcher executes query plans. Documents and facet buckets in one result
// come from a single backend round trip (same query execution).
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}

// Suggester returns ranked autocomplete strings for a text prefix.
type Suggester interface {
	Suggest(ctx context.Context, prefix string, max int) ([]string, error)
}

// Document is one indexed record keyed by identifier, as flat fields.
// Absent optional fields are omitted from the map, never stored empty.
type Document struct {
	ID     string
	Fields map[string]string
}

// BulkUpserter uploads documents with replace-by-identifier semantics and
// feeds the suggestion dictionary.
type BulkUpserter interface {
	UpsertBatch(ctx context.Context, docs []Document) error
	AddSuggestions(ctx context.Context, terms []string) error
}

// IndexManager provides index lifecycle operations. Schema setup is
// administrative and outside the runtime search path.
type IndexManager interface {
	RecreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}
