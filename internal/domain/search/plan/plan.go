// Package plan turns a structured search request into a backend-neutral
// query description. Building is total: malformed inputs degrade (an unknown
// sort column yields no ordering) instead of failing.
package plan

import (
	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/domain/search/filter"
	"github.com/moorfield/propsearch/internal/domain/search/request"
)

// PageSize is the fixed number of results per page.
const PageSize = 20

// FacetDimensions are always requested, regardless of active filters:
// filters narrow the result set, facets describe the whole dimension.
// Callers rely on a response carrying exactly these five keys. Place-name
// dimensions group on the TAG aliases, not the TEXT attributes.
var FacetDimensions = []string{
	sale.FieldTownTag,
	sale.FieldLocalityTag,
	sale.FieldDistrictTag,
	sale.FieldCountyTag,
	sale.FieldPrice,
}

// SortField is one underlying sortable field with a direction.
type SortField struct {
	Field      string
	Descending bool
}

// Plan is a backend-neutral query description: the backend compiles it to its
// own query syntax and executes it.
type Plan struct {
	Filters   filter.Expression
	Text      string // prefix-wildcard applied; "" means match all
	Sort      []SortField
	Facets    []string
	Offset    int
	Limit     int
	WithCount bool
}

// BuildSearch builds the plan for a generic filtered search.
func BuildSearch(req *request.Request) Plan {
	return Plan{
		Filters:   buildFilters(req.Filters),
		Text:      buildText(req.Text),
		Sort:      buildSort(req.Sort),
		Facets:    FacetDimensions,
		Offset:    req.Page * PageSize,
		Limit:     PageSize,
		WithCount: true,
	}
}

// BuildGeoSearch builds the plan for a radius search around a resolved
// center point. Geo searches carry no free text; the geo condition is
// AND-combined with the attribute filters.
func BuildGeoSearch(req *request.PostcodeRequest, lat, lon float64) Plan {
	return Plan{
		Filters:   buildFilters(req.Filters).WithinRadius(lat, lon, req.RadiusKm),
		Sort:      buildSort(req.Sort),
		Facets:    FacetDimensions,
		Offset:    req.Page * PageSize,
		Limit:     PageSize,
		WithCount: true,
	}
}

// buildFilters emits an equality condition per present filter value;
// absent values contribute nothing. Conditions target the TAG aliases so
// they match exact values instead of tokenized text.
func buildFilters(f request.Filters) filter.Expression {
	return filter.NewExpression(
		filter.Equals(sale.FieldTownTag, f.Town),
		filter.Equals(sale.FieldCountyTag, f.County),
		filter.Equals(sale.FieldLocalityTag, f.Locality),
		filter.Equals(sale.FieldDistrictTag, f.District),
	)
}

// buildText appends the prefix-wildcard marker so matches include any term
// starting with the given text. Empty text stays empty (match all).
func buildText(text string) string {
	if text == "" {
		return ""
	}
	return text + "*"
}

// buildSort maps a domain sort column to its underlying sortable fields.
// Street sorts by building name first, then street, both with the same
// direction. An unrecognized column produces no ordering (backend default
// order) rather than an error.
func buildSort(s *request.Sort) []SortField {
	if s == nil {
		return nil
	}
	desc := s.Direction == request.Descending

	switch s.Column {
	case request.ByStreet:
		return []SortField{
			{Field: sale.FieldBuilding, Descending: desc},
			{Field: sale.FieldStreet, Descending: desc},
		}
	case request.ByTown:
		return []SortField{{Field: sale.FieldTown, Descending: desc}}
	case request.ByPostcode:
		return []SortField{{Field: sale.FieldPostcode, Descending: desc}}
	case request.ByDate:
		return []SortField{{Field: sale.FieldDate, Descending: desc}}
	case request.ByPrice:
		return []SortField{{Field: sale.FieldPrice, Descending: desc}}
	}
	return nil
}
