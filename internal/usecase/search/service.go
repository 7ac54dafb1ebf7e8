// Package search orchestrates transaction searches: generic filtered search,
// postcode radius search, and autocomplete suggestions.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/moorfield/propsearch/internal/domain/search/plan"
	"github.com/moorfield/propsearch/internal/domain/search/request"
	"github.com/moorfield/propsearch/internal/domain/search/result"
	"github.com/moorfield/propsearch/internal/geocode"
)

// MaxSuggestions caps an autocomplete response.
const MaxSuggestions = 10

// Service handles search orchestration.
type Service struct {
	exec    Executor
	suggest Suggester
	geo     geocode.Geocoder
}

// New creates a search service.
func New(exec Executor, suggest Suggester, geo geocode.Geocoder) *Service {
	return &Service{exec: exec, suggest: suggest, geo: geo}
}

// Search runs a generic filtered search.
func (s *Service) Search(ctx context.Context, req *request.Request) (*result.Response, error) {
	return s.exec.Execute(ctx, plan.BuildSearch(req))
}

// SearchByPostcode resolves the postcode to a coordinate and runs a radius
// search around it. A postcode that is not in two-part form, or that the
// geocoder does not know, yields an empty page rather than an error: the
// user asked about a place with no answers, which is a valid empty result.
func (s *Service) SearchByPostcode(ctx context.Context, req *request.PostcodeRequest) (*result.Response, error) {
	parts := strings.Fields(req.Postcode)
	if len(parts) != 2 {
		empty := result.Empty(req.Page)
		return &empty, nil
	}

	point, err := s.geo.Lookup(ctx, parts[0], parts[1])
	if err != nil {
		return nil, fmt.Errorf("resolve postcode: %w", err)
	}
	if point == nil {
		empty := result.Empty(req.Page)
		return &empty, nil
	}

	return s.exec.Execute(ctx, plan.BuildGeoSearch(req, point.Lat, point.Lon))
}

// Suggest returns up to MaxSuggestions deduplicated completions for the
// prefix. First occurrence wins, so backend ranking order is preserved.
func (s *Service) Suggest(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}

	raw, err := s.suggest.Suggest(ctx, prefix, MaxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, term := range raw {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out, nil
}
