package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/moorfield/propsearch/internal/db"
	"github.com/moorfield/propsearch/internal/domain"
)

// UpsertBatch writes every document as one HSET, pipelined in a single
// DoMulti round trip. A repeated identifier replaces the earlier record.
func (s *Store) UpsertBatch(ctx context.Context, docs []db.Document) error {
	if len(docs) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("document id is required")}
		}
		b := s.b().Hset().Key(domain.KeyPrefix + doc.ID).FieldValue()
		for name, value := range doc.Fields {
			b = b.FieldValue(name, value)
		}
		cmds = append(cmds, b.Build())
	}

	for _, reply := range s.client.DoMulti(ctx, cmds...) {
		if err := reply.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: err}
		}
	}
	return nil
}

// AddSuggestions feeds terms into the suggestion dictionary. INCR bumps the
// score of a term already present, so frequent terms rank higher.
func (s *Store) AddSuggestions(ctx context.Context, terms []string) error {
	if len(terms) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		cmds = append(cmds, s.b().Arbitrary("FT.SUGADD").Keys(suggestionDict).Args(
			term, "1", "INCR",
		).Build())
	}

	for _, reply := range s.client.DoMulti(ctx, cmds...) {
		if err := reply.Error(); err != nil {
			return &db.Error{Op: db.OpSugAdd, Err: err}
		}
	}
	return nil
}
