package redis

import (
	"context"
	"fmt"

	"github.com/moorfield/propsearch/internal/db"
)

// RecreateIndex drops the index if it exists and creates it from the
// definition. Indexed documents survive the drop; only the index is rebuilt.
func (s *Store) RecreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	drop := s.b().Arbitrary("FT.DROPINDEX").Args(def.Name).Build()
	if err := s.do(ctx, drop).Error(); err != nil && !isUnknownIndexErr(err) {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}

	create := s.b().Arbitrary("FT.CREATE").Args(buildCreateArgs(def)...).Build()
	if err := s.do(ctx, create).Error(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether the index is known to the backend.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndexErr(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func buildCreateArgs(def *db.IndexDefinition) []string {
	args := []string{def.Name, "ON", "HASH"}

	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", fmt.Sprintf("%d", len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}

	args = append(args, "SCHEMA")
	for _, f := range def.Fields {
		args = append(args, f.Name)
		if f.Alias != "" {
			args = append(args, "AS", f.Alias)
		}
		switch f.Type {
		case db.FieldNumeric:
			args = append(args, "NUMERIC")
		case db.FieldTag:
			args = append(args, "TAG")
		case db.FieldText:
			args = append(args, "TEXT")
		case db.FieldGeo:
			args = append(args, "GEO")
		}
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	}
	return args
}

func isUnknownIndexErr(err error) bool {
	return isRedisErr(err, "unknown index") || isRedisErr(err, "no such index")
}
