// Package ingest maps transactions to indexed documents and writes them to
// the search backend.
package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/moorfield/propsearch/internal/db"
	"github.com/moorfield/propsearch/internal/domain"
	"github.com/moorfield/propsearch/internal/domain/sale"
	"github.com/moorfield/propsearch/internal/geocode"
)

// Store is the backend surface this repository needs.
type Store interface {
	db.BulkUpserter
	db.IndexManager
}

// Record pairs a transaction with its optionally resolved coordinate. A nil
// point means the postcode did not geocode; the record is still indexed,
// just without a location field.
type Record struct {
	Tx    sale.Transaction
	Point *geocode.Point
}

// Repo writes transaction documents and maintains the index.
type Repo struct {
	store Store
}

// New creates the ingestion repository.
func New(store Store) *Repo {
	return &Repo{store: store}
}

// Store maps the records to documents and uploads them as one batch.
// A repeated transaction ID replaces the earlier document.
func (r *Repo) Store(ctx context.Context, records []Record) error {
	docs := make([]db.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, buildDocument(rec))
	}
	if err := r.store.UpsertBatch(ctx, docs); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// AddSuggestions feeds place and street names from the records into the
// autocomplete dictionary.
func (r *Repo) AddSuggestions(ctx context.Context, records []Record) error {
	seen := make(map[string]struct{})
	var terms []string
	add := func(term string) {
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, rec := range records {
		add(rec.Tx.Town)
		add(rec.Tx.District)
		add(rec.Tx.County)
		if rec.Tx.Street != nil {
			add(*rec.Tx.Street)
		}
		if rec.Tx.Locality != nil {
			add(*rec.Tx.Locality)
		}
	}

	if err := r.store.AddSuggestions(ctx, terms); err != nil {
		return fmt.Errorf("add suggestions: %w", err)
	}
	return nil
}

// RecreateIndex drops and recreates the transaction index with the current
// schema. Stored documents survive and are re-indexed by the backend.
func (r *Repo) RecreateIndex(ctx context.Context) error {
	if err := r.store.RecreateIndex(ctx, IndexDefinition()); err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	return nil
}

// IndexExists reports whether the transaction index is present.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, domain.IndexName)
	if err != nil {
		return false, fmt.Errorf("index exists: %w", err)
	}
	return ok, nil
}

// buildDocument flattens a record into stored fields. Optional fields with
// no value are omitted entirely so projection can tell absent from empty.
func buildDocument(rec Record) db.Document {
	tx := rec.Tx
	fields := map[string]string{
		sale.FieldID:           tx.ID.String(),
		sale.FieldPrice:        strconv.FormatInt(tx.Price, 10),
		sale.FieldDate:         strconv.FormatInt(tx.Date.Unix(), 10),
		sale.FieldPropertyType: tx.PropertyType.String(),
		sale.FieldBuildType:    tx.BuildType.String(),
		sale.FieldContractType: tx.ContractType.String(),
		sale.FieldBuilding:     tx.Building,
		sale.FieldTown:         tx.Town,
		sale.FieldDistrict:     tx.District,
		sale.FieldCounty:       tx.County,
	}

	if tx.Street != nil {
		fields[sale.FieldStreet] = *tx.Street
	}
	if tx.Locality != nil {
		fields[sale.FieldLocality] = *tx.Locality
	}
	if tx.Postcode != nil {
		fields[sale.FieldPostcode] = *tx.Postcode
	}
	if rec.Point != nil {
		// RediSearch GEO format: "lon,lat"
		fields[sale.FieldLocation] = fmt.Sprintf("%g,%g", rec.Point.Lon, rec.Point.Lat)
	}

	return db.Document{ID: tx.ID.String(), Fields: fields}
}

// IndexDefinition is the transaction index schema. Place-name fields are
// indexed twice: as TEXT under the stored field name so free text matches
// them, and as a SORTABLE TAG alias so filters stay exact and aggregations
// can group on them without a LOAD step.
func IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     domain.IndexName,
		Prefixes: []string{domain.KeyPrefix},
		Fields: []db.Field{
			{Name: sale.FieldID, Type: db.FieldTag},
			{Name: sale.FieldPrice, Type: db.FieldNumeric, Sortable: true},
			{Name: sale.FieldDate, Type: db.FieldNumeric, Sortable: true},
			{Name: sale.FieldPostcode, Type: db.FieldTag, Sortable: true},
			{Name: sale.FieldPropertyType, Type: db.FieldTag},
			{Name: sale.FieldBuildType, Type: db.FieldTag},
			{Name: sale.FieldContractType, Type: db.FieldTag},
			{Name: sale.FieldBuilding, Type: db.FieldText, Sortable: true},
			{Name: sale.FieldStreet, Type: db.FieldText, Sortable: true},
			{Name: sale.FieldLocality, Type: db.FieldText},
			{Name: sale.FieldLocality, Alias: sale.FieldLocalityTag, Type: db.FieldTag, Sortable: true},
			{Name: sale.FieldTown, Type: db.FieldText, Sortable: true},
			{Name: sale.FieldTown, Alias: sale.FieldTownTag, Type: db.FieldTag, Sortable: true},
			{Name: sale.FieldDistrict, Type: db.FieldText},
			{Name: sale.FieldDistrict, Alias: sale.FieldDistrictTag, Type: db.FieldTag, Sortable: true},
			{Name: sale.FieldCounty, Type: db.FieldText},
			{Name: sale.FieldCounty, Alias: sale.FieldCountyTag, Type: db.FieldTag, Sortable: true},
			{Name: sale.FieldLocation, Type: db.FieldGeo},
		},
	}
}
