package db

import (
	"errors"
	"strconv"
)

// FieldType enumerates supported index field types.
type FieldType int

const (
	// FieldNumeric is a numeric field.
	FieldNumeric FieldType = iota
	// FieldTag is an exact-match tag field.
	FieldTag
	// FieldText is a full-text searchable field.
	FieldText
	// FieldGeo is a geographic point field supporting radius predicates.
	FieldGeo
)

// Field describes a single attribute in an index schema. Alias, when set,
// names the attribute independently of the stored field, so the same stored
// field can be indexed more than once under different attribute names.
type Field struct {
	Name     string
	Alias    string
	Type     FieldType
	Sortable bool
}

// Attribute is the name the index exposes for this field: the alias when
// one is set, the stored field name otherwise.
func (f *Field) Attribute() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition is a complete index definition.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []Field
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !isValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if f.Alias != "" && !isValidIdentifier(f.Alias) {
			return errors.New("field alias contains invalid characters: " + f.Alias)
		}
		if seen[f.Attribute()] {
			return errors.New("duplicate attribute name: " + f.Attribute())
		}
		seen[f.Attribute()] = true
	}

	return nil
}

// isValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
