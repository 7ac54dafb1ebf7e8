// Package request defines the caller-facing search request shapes and the
// filter/sort vocabulary.
package request

// Column is a domain sort column.
type Column string

// Sort columns.
const (
	ByStreet   Column = "street"
	ByTown     Column = "town"
	ByPostcode Column = "postcode"
	ByDate     Column = "date"
	ByPrice    Column = "price"
)

// Direction is a sort direction.
type Direction string

// Sort directions. Ascending is the default when unspecified.
const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Sort pairs a column with a direction.
type Sort struct {
	Column    Column
	Direction Direction
}

// Filters is the structured filter set. An empty string means the dimension
// is not filtered. Matching is exact and case-insensitive.
type Filters struct {
	Town     string
	County   string
	Locality string
	District string
}

// Request is a generic search request: optional free text, filters, optional
// sort, and a zero-based page index at a fixed page size.
type Request struct {
	Text    string
	Filters Filters
	Sort    *Sort
	Page    int
}

// PostcodeRequest is a geo-radius search around a postcode. The postcode is
// expected to split into exactly two space-separated parts (outward and
// inward code); anything else falls back to an empty result rather than an
// error.
type PostcodeRequest struct {
	Postcode string
	RadiusKm int
	Filters  Filters
	Sort     *Sort
	Page     int
}
