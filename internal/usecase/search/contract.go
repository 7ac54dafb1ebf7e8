package search

import (
	"context"

	"github.com/moorfield/propsearch/internal/domain/search/plan"
	"github.com/moorfield/propsearch/internal/domain/search/result"
)

// Executor runs a query plan against the transaction index.
type Executor interface {
	Execute(ctx context.Context, p plan.Plan) (*result.Response, error)
}

// Suggester returns ranked autocomplete strings for a text prefix.
type Suggester interface {
	Suggest(ctx context.Context, prefix string, max int) ([]string, error)
}
