package ingest

import (
	"context"

	ingestrepo "github.com/moorfield/propsearch/internal/repository/ingest"
)

// Repository writes mapped transaction records to the search backend.
type Repository interface {
	Store(ctx context.Context, records []ingestrepo.Record) error
	AddSuggestions(ctx context.Context, records []ingestrepo.Record) error
	RecreateIndex(ctx context.Context) error
	IndexExists(ctx context.Context) (bool, error)
}
