// Package search executes query plans against the transaction index and
// projects raw documents back into domain types.
package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/moorfield/propsearch/internal/db"
	"github.com/moorfield/propsearch/internal/domain"
	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/domain/search/plan"
	"github.com/moorfield/propsearch/internal/domain/search/result"
)

// Repo executes plans via the search backend.
type Repo struct {
	store db.Searcher
}

// New creates the search repository.
func New(store db.Searcher) *Repo {
	return &Repo{store: store}
}

// Execute runs the plan and projects the backend result into the typed
// response. A document that cannot be projected fails the whole page: a bad
// record in the index is an integrity fault, not something to skip over.
func (r *Repo) Execute(ctx context.Context, p plan.Plan) (*result.Response, error) {
	res, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: domain.IndexName,
		Plan:      p,
	})
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	transactions := make([]sale.Transaction, 0, len(res.Entries))
	for _, entry := range res.Entries {
		tx, err := projectTransaction(entry.Fields)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", entry.Key, err)
		}
		transactions = append(transactions, tx)
	}

	page := 0
	if p.Limit > 0 {
		page = p.Offset / p.Limit
	}

	return &result.Response{
		Results: transactions,
		Total:   res.Total,
		Facets:  projectFacets(res.Facets),
		Page:    page,
	}, nil
}

// projectTransaction rebuilds a transaction from stored document fields.
// Identifier and enumeration failures surface as domain integrity errors.
func projectTransaction(fields map[string]string) (sale.Transaction, error) {
	var tx sale.Transaction

	id, err := uuid.Parse(fields[sale.FieldID])
	if err != nil {
		return tx, fmt.Errorf("transaction id %q: %w", fields[sale.FieldID], domain.ErrMalformedRecord)
	}

	price, err := strconv.ParseInt(fields[sale.FieldPrice], 10, 64)
	if err != nil {
		return tx, fmt.Errorf("price %q: %w", fields[sale.FieldPrice], domain.ErrMalformedRecord)
	}

	epoch, err := strconv.ParseInt(fields[sale.FieldDate], 10, 64)
	if err != nil {
		return tx, fmt.Errorf("date %q: %w", fields[sale.FieldDate], domain.ErrMalformedRecord)
	}

	propertyType, err := sale.ParsePropertyType(fields[sale.FieldPropertyType])
	if err != nil {
		return tx, err
	}
	buildType, err := sale.ParseBuildType(fields[sale.FieldBuildType])
	if err != nil {
		return tx, err
	}
	contractType, err := sale.ParseContractType(fields[sale.FieldContractType])
	if err != nil {
		return tx, err
	}

	tx = sale.Transaction{
		ID:           id,
		Price:        price,
		Date:         time.Unix(epoch, 0).UTC(),
		PropertyType: propertyType,
		BuildType:    buildType,
		ContractType: contractType,
		Building:     fields[sale.FieldBuilding],
		Street:       optionalField(fields, sale.FieldStreet),
		Locality:     optionalField(fields, sale.FieldLocality),
		Postcode:     optionalField(fields, sale.FieldPostcode),
		Town:         fields[sale.FieldTown],
		District:     fields[sale.FieldDistrict],
		County:       fields[sale.FieldCounty],
	}
	return tx, nil
}

// optionalField maps a stored field to a pointer. A key absent from the
// document means the source record had no value; it projects to nil, not to
// an empty string.
func optionalField(fields map[string]string, name string) *string {
	v, ok := fields[name]
	if !ok {
		return nil
	}
	return &v
}

// projectFacets maps backend buckets to the fixed five-dimension summary.
// A dimension the backend returned nothing for stays an empty list.
func projectFacets(groups []db.FacetGroup) result.Facets {
	facets := result.Facets{
		Towns:      []string{},
		Localities: []string{},
		Districts:  []string{},
		Counties:   []string{},
		Prices:     []string{},
	}

	for _, g := range groups {
		values := make([]string, 0, len(g.Buckets))
		for _, b := range g.Buckets {
			values = append(values, b.Value)
		}

		switch g.Field {
		case sale.FieldTownTag:
			facets.Towns = values
		case sale.FieldLocalityTag:
			facets.Localities = values
		case sale.FieldDistrictTag:
			facets.Districts = values
		case sale.FieldCountyTag:
			facets.Counties = values
		case sale.FieldPrice:
			facets.Prices = values
		}
	}

	return facets
}
