// Package sale defines the property-sale transaction record, its closed
// enumerations, and the indexed-document field vocabulary.
package sale

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moorfield/propsearch/internal/domain"
)

// Indexed document field names. Every layer that touches the index (query
// building, projection, ingestion, index creation) uses these constants.
const (
	FieldID           = "transaction_id"
	FieldPrice        = "price"
	FieldDate         = "date"
	FieldPostcode     = "postcode"
	FieldPropertyType = "property_type"
	FieldBuildType    = "build_type"
	FieldContractType = "contract_type"
	FieldBuilding     = "building"
	FieldStreet       = "street"
	FieldLocality     = "locality"
	FieldTown         = "town"
	FieldDistrict     = "district"
	FieldCounty       = "county"
	FieldLocation     = "location"
)

// Tag-alias attribute names. The place-name fields are indexed twice: a TEXT
// attribute under the stored field name so free text reaches them, and a TAG
// alias for exact filtering and facet grouping.
const (
	FieldLocalityTag = "locality_tag"
	FieldTownTag     = "town_tag"
	FieldDistrictTag = "district_tag"
	FieldCountyTag   = "county_tag"
)

// PropertyType classifies the kind of property sold.
type PropertyType string

// Property types.
const (
	Detached       PropertyType = "detached"
	SemiDetached   PropertyType = "semi_detached"
	Terraced       PropertyType = "terraced"
	FlatMaisonette PropertyType = "flat_maisonette"
	OtherProperty  PropertyType = "other"
)

// ParsePropertyType parses a stored property type string.
func ParsePropertyType(s string) (PropertyType, error) {
	switch PropertyType(s) {
	case Detached, SemiDetached, Terraced, FlatMaisonette, OtherProperty:
		return PropertyType(s), nil
	}
	return "", fmt.Errorf("property type %q: %w", s, domain.ErrUnknownEnum)
}

func (p PropertyType) String() string { return string(p) }

// BuildType distinguishes newly built properties from established ones.
type BuildType string

// Build types.
const (
	NewBuild    BuildType = "new_build"
	Established BuildType = "established"
)

// ParseBuildType parses a stored build type string.
func ParseBuildType(s string) (BuildType, error) {
	switch BuildType(s) {
	case NewBuild, Established:
		return BuildType(s), nil
	}
	return "", fmt.Errorf("build type %q: %w", s, domain.ErrUnknownEnum)
}

func (b BuildType) String() string { return string(b) }

// ContractType is the tenure under which the property was transferred.
type ContractType string

// Contract types.
const (
	Freehold  ContractType = "freehold"
	Leasehold ContractType = "leasehold"
)

// ParseContractType parses a stored contract type string.
func ParseContractType(s string) (ContractType, error) {
	switch ContractType(s) {
	case Freehold, Leasehold:
		return ContractType(s), nil
	}
	return "", fmt.Errorf("contract type %q: %w", s, domain.ErrUnknownEnum)
}

func (c ContractType) String() string { return string(c) }

// Transaction is one property-sale record. The ID is the join key between the
// search index and the system of record. Street, Locality and Postcode are
// optional: nil means the source record had no value, which is distinct from
// an empty string and stays distinct through indexing and projection.
type Transaction struct {
	ID           uuid.UUID
	Price        int64
	Date         time.Time
	PropertyType PropertyType
	BuildType    BuildType
	ContractType ContractType
	Building     string
	Street       *string
	Locality     *string
	Postcode     *string
	Town         string
	District     string
	County       string
}
