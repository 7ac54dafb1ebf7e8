package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/moorfield/propsearch/internal/db"
	"github.com/moorfield/propsearch/internal/domain"
	"github.com/moorfield/propsearch/internal/domain/search/plan"
)

// maxFacetValues caps the number of buckets fetched per facet dimension.
const maxFacetValues = 100

// suggestionDict is the key of the autocomplete suggestion dictionary.
const suggestionDict = domain.KeyPrefix + "sug"

// Search compiles the plan to FT.SEARCH / FT.AGGREGATE and executes the
// document query and every facet aggregation in one DoMulti round trip, so
// documents and buckets reflect the same query execution.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}

	query := compileQuery(&q.Plan)

	searchArgs := []string{q.IndexName, query}
	if len(q.Plan.Sort) > 0 {
		// FT.SEARCH accepts a single SORTBY pair; the primary sort key wins.
		primary := q.Plan.Sort[0]
		dir := "ASC"
		if primary.Descending {
			dir = "DESC"
		}
		searchArgs = append(searchArgs, "SORTBY", primary.Field, dir)
	}
	searchArgs = append(searchArgs,
		"LIMIT", strconv.Itoa(q.Plan.Offset), strconv.Itoa(q.Plan.Limit),
		"DIALECT", "2",
	)

	cmds := make([]rueidis.Completed, 0, 1+len(q.Plan.Facets))
	cmds = append(cmds, s.b().Arbitrary("FT.SEARCH").Args(searchArgs...).Build())
	for _, facet := range q.Plan.Facets {
		cmds = append(cmds, s.b().Arbitrary("FT.AGGREGATE").Args(
			q.IndexName, query,
			"GROUPBY", "1", "@"+facet,
			"REDUCE", "COUNT", "0", "AS", "count",
			"LIMIT", "0", strconv.Itoa(maxFacetValues),
			"DIALECT", "2",
		).Build())
	}

	replies := s.client.DoMulti(ctx, cmds...)

	raw, err := replies[0].ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	res, err := parseSearchResult(raw)
	if err != nil {
		return nil, err
	}
	if !q.Plan.WithCount {
		res.Total = nil
	}

	res.Facets = make([]db.FacetGroup, 0, len(q.Plan.Facets))
	for i, facet := range q.Plan.Facets {
		rawAgg, err := replies[i+1].ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: err}
		}
		res.Facets = append(res.Facets, db.FacetGroup{
			Field:   facet,
			Buckets: parseFacetBuckets(rawAgg, facet),
		})
	}

	return res, nil
}

// Suggest queries the suggestion dictionary via FT.SUGGET.
func (s *Store) Suggest(ctx context.Context, prefix string, max int) ([]string, error) {
	cmd := s.b().Arbitrary("FT.SUGGET").Keys(suggestionDict).Args(
		prefix, "MAX", strconv.Itoa(max),
	).Build()

	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpSugGet, Err: err}
	}

	out := make([]string, 0, len(raw))
	for _, msg := range raw {
		v, err := msg.ToString()
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	res := &db.SearchResult{Total: &total}
	if total == 0 {
		return res, nil
	}

	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		res.Entries = append(res.Entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return res, nil
}

// parseFacetBuckets parses an FT.AGGREGATE reply: [groups, row1, row2, ...],
// each row a flat property array like [field, value, "count", n].
func parseFacetBuckets(raw []rueidis.RedisMessage, field string) []db.FacetBucket {
	buckets := []db.FacetBucket{}
	for i := 1; i < len(raw); i++ {
		row, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		props := parseFieldPairs(row)

		value, ok := props[field]
		if !ok || value == "" {
			// documents without the field group under an empty value
			continue
		}

		var count int64
		if c, err := strconv.ParseInt(props["count"], 10, 64); err == nil {
			count = c
		}
		buckets = append(buckets, db.FacetBucket{Value: value, Count: count})
	}
	return buckets
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query compilation ---

// compileQuery translates a plan into an FT.SEARCH query string. An empty
// plan compiles to "*" (match all).
func compileQuery(p *plan.Plan) string {
	var parts []string

	for _, cond := range p.Filters.Conditions() {
		parts = append(parts, buildTagFilter(cond.Field(), cond.Value()))
	}

	if g := p.Filters.Geo(); g != nil {
		parts = append(parts, buildGeoFilter(g.Lon, g.Lat, g.RadiusKm))
	}

	if text := compileText(p.Text); text != "" {
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

// buildGeoFilter emits a geo-radius predicate on the location field.
// RediSearch geo syntax takes longitude first.
func buildGeoFilter(lon, lat float64, radiusKm int) string {
	return fmt.Sprintf("@location:[%g %g %d km]", lon, lat, radiusKm)
}

// compileText escapes the free-text clause while preserving the trailing
// prefix-wildcard marker the plan appended.
func compileText(text string) string {
	if text == "" {
		return ""
	}
	if strings.HasSuffix(text, "*") {
		return escapeQuery(strings.TrimSuffix(text, "*")) + "*"
	}
	return escapeQuery(text)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
