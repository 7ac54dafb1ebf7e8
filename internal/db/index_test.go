package db

import "testing"

func TestIndexDefinitionValidate(t *testing.T) {
	valid := func() *IndexDefinition {
		return &IndexDefinition{
			Name:     "idx",
			Prefixes: []string{"p:"},
			Fields: []Field{
				{Name: "price", Type: FieldNumeric, Sortable: true},
				{Name: "town", Type: FieldText},
				{Name: "town", Alias: "town_tag", Type: FieldTag, Sortable: true},
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("same field twice needs distinct aliases", func(t *testing.T) {
		def := valid()
		def.Fields = append(def.Fields, Field{Name: "town", Type: FieldTag})
		if err := def.Validate(); err == nil {
			t.Error("expected duplicate attribute error")
		}
	})

	t.Run("duplicate alias rejected", func(t *testing.T) {
		def := valid()
		def.Fields = append(def.Fields, Field{Name: "county", Alias: "town_tag", Type: FieldTag})
		if err := def.Validate(); err == nil {
			t.Error("expected duplicate attribute error")
		}
	})

	t.Run("invalid alias rejected", func(t *testing.T) {
		def := valid()
		def.Fields[2].Alias = "town tag"
		if err := def.Validate(); err == nil {
			t.Error("expected invalid alias error")
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		def := valid()
		def.Name = ""
		if err := def.Validate(); err == nil {
			t.Error("expected missing name error")
		}
	})

	t.Run("no fields rejected", func(t *testing.T) {
		def := valid()
		def.Fields = nil
		if err := def.Validate(); err == nil {
			t.Error("expected missing fields error")
		}
	})
}

func TestFieldAttribute(t *testing.T) {
	f := Field{Name: "town"}
	if f.Attribute() != "town" {
		t.Errorf("attribute = %q", f.Attribute())
	}
	f.Alias = "town_tag"
	if f.Attribute() != "town_tag" {
		t.Errorf("attribute = %q", f.Attribute())
	}
}
