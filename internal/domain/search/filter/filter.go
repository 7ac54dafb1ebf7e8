// Package filter models the backend-neutral predicate set of a search:
// a conjunction of case-normalized equality conditions, optionally combined
// with one geo-radius condition.
package filter

import "strings"

// Condition is a single equality clause: field == value. The value is
// uppercased at construction so filtering is case-insensitive regardless of
// how the caller spells it.
type Condition struct {
	field string
	value string
}

// Equals creates an equality condition on field with a case-normalized value.
func Equals(field, value string) Condition {
	return Condition{field: field, value: strings.ToUpper(value)}
}

// Field returns the field name.
func (c Condition) Field() string { return c.field }

// Value returns the uppercased match value.
func (c Condition) Value() string { return c.value }

// GeoRadius admits only documents whose geographic point lies within
// RadiusKm kilometers of the center.
type GeoRadius struct {
	Lat      float64
	Lon      float64
	RadiusKm int
}

// Expression is a conjunction of equality conditions, optionally AND-combined
// with a geo-radius condition. Conditions form a set: composition order has
// no semantic effect.
type Expression struct {
	conds []Condition
	geo   *GeoRadius
}

// NewExpression builds an expression from zero or more (field, value) pairs,
// skipping pairs with an empty value. Pairs are supplied as alternating
// conditions via Equals.
func NewExpression(conds ...Condition) Expression {
	kept := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if c.value == "" {
			continue
		}
		kept = append(kept, c)
	}
	return Expression{conds: kept}
}

// WithinRadius returns a copy of the expression AND-combined with a
// geo-radius condition. Geo and attribute conditions are always conjunctive.
func (e Expression) WithinRadius(lat, lon float64, radiusKm int) Expression {
	e.geo = &GeoRadius{Lat: lat, Lon: lon, RadiusKm: radiusKm}
	return e
}

// Conditions returns the equality conditions.
func (e Expression) Conditions() []Condition { return e.conds }

// Geo returns the geo-radius condition, or nil.
func (e Expression) Geo() *GeoRadius { return e.geo }

// IsEmpty reports whether the expression has no conditions at all.
func (e Expression) IsEmpty() bool {
	return len(e.conds) == 0 && e.geo == nil
}
