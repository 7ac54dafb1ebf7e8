package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/moorfield/propsearch/internal/db"
	"github.com/moorfield/propsearch/internal/domain/search/filter"
	"github.com/moorfield/propsearch/internal/domain/search/plan"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Unknown Index Name", "unknown index name", true},
		{"NO SUCH INDEX", "no such index", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- search.go tests ---

func TestSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "FT.SEARCH" && cmd[1] == "idx" && cmd[2] == "@town:{YORK} Oak*"
			}),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "FT.AGGREGATE" && cmd[2] == "@town:{YORK} Oak*"
			}),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(
				mock.RedisInt64(1), // total
				mock.RedisString("propsearch:doc-1"),
				mock.RedisArray(
					mock.RedisString("town"),
					mock.RedisString("YORK"),
					mock.RedisString("price"),
					mock.RedisString("250000"),
				),
			)),
			mock.Result(mock.RedisArray(
				mock.RedisInt64(1),
				mock.RedisArray(
					mock.RedisString("town"),
					mock.RedisString("YORK"),
					mock.RedisString("count"),
					mock.RedisString("7"),
				),
			)),
		})

	s := NewStoreForTest(c)
	result, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName: "idx",
		Plan: plan.Plan{
			Filters:   filter.NewExpression(filter.Equals("town", "YORK")),
			Text:      "Oak*",
			Facets:    []string{"town"},
			Limit:     20,
			WithCount: true,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total == nil || *result.Total != 1 {
		t.Fatalf("expected total 1, got %v", result.Total)
	}
	if len(result.Entries) != 1 || result.Entries[0].Key != "propsearch:doc-1" {
		t.Fatalf("unexpected entries: %+v", result.Entries)
	}
	if result.Entries[0].Fields["price"] != "250000" {
		t.Errorf("expected price field, got %v", result.Entries[0].Fields)
	}
	if len(result.Facets) != 1 || result.Facets[0].Field != "town" {
		t.Fatalf("unexpected facets: %+v", result.Facets)
	}
	b := result.Facets[0].Buckets
	if len(b) != 1 || b[0].Value != "YORK" || b[0].Count != 7 {
		t.Errorf("unexpected buckets: %+v", b)
	}
}

func TestSearch_EmptyPlanMatchesAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*"
		})).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(mock.RedisInt64(0))),
		})

	s := NewStoreForTest(c)
	result, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName: "idx",
		Plan:      plan.Plan{Limit: 20, WithCount: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
	if result.Total == nil || *result.Total != 0 {
		t.Errorf("expected total 0, got %v", result.Total)
	}
}

func TestSearch_SortByPrimaryField(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			for i, tok := range cmd {
				if tok == "SORTBY" {
					return cmd[i+1] == "price" && cmd[i+2] == "DESC"
				}
			}
			return false
		})).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(mock.RedisInt64(0))),
		})

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName: "idx",
		Plan: plan.Plan{
			Sort: []plan.SortField{
				{Field: "price", Descending: true},
				{Field: "date"},
			},
			Limit: 20,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{IndexName: "idx"})
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Errorf("expected db.Error with op %s, got %v", db.OpSearch, err)
	}
}

func TestSearch_MissingIndexName(t *testing.T) {
	s := &Store{}
	if _, err := s.Search(context.Background(), &db.SearchQuery{}); err == nil {
		t.Fatal("expected error")
	}
}

// --- suggest tests ---

func TestSuggest_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SUGGET", suggestionDict, "lon", "MAX", "10")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("LONDON"),
			mock.RedisString("LONG EATON"),
		)))

	s := NewStoreForTest(c)
	got, err := s.Suggest(context.Background(), "lon", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "LONDON" || got[1] != "LONG EATON" {
		t.Errorf("unexpected suggestions: %v", got)
	}
}

func TestSuggest_EmptyDictionary(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SUGGET"
		})).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	got, err := s.Suggest(context.Background(), "zzz", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

// --- ingest.go tests ---

func TestUpsertBatch_KeyPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "propsearch:doc-1"
		})).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	err := s.UpsertBatch(context.Background(), []db.Document{
		{ID: "doc-1", Fields: map[string]string{"town": "YORK"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsertBatch_MissingID(t *testing.T) {
	s := &Store{}
	err := s.UpsertBatch(context.Background(), []db.Document{{Fields: map[string]string{"f": "v"}}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsertBatch_Empty(t *testing.T) {
	s := &Store{}
	if err := s.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddSuggestions(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("FT.SUGADD", suggestionDict, "LONDON", "1", "INCR"),
			mock.Match("FT.SUGADD", suggestionDict, "YORK", "1", "INCR"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	if err := s.AddSuggestions(context.Background(), []string{"LONDON", "", "YORK"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- index.go tests ---

func TestRecreateIndex_DropsAndCreates(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
			Return(mock.Result(mock.RedisError("Unknown Index name"))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "FT.CREATE" && cmd[1] == "idx"
			})).
			Return(mock.Result(mock.RedisString("OK"))),
	)

	s := NewStoreForTest(c)
	err := s.RecreateIndex(context.Background(), &db.IndexDefinition{
		Name:     "idx",
		Prefixes: []string{"propsearch:"},
		Fields: []db.Field{
			{Name: "price", Type: db.FieldNumeric, Sortable: true},
			{Name: "town", Type: db.FieldTag, Sortable: true},
			{Name: "street", Type: db.FieldText, Sortable: true},
			{Name: "location", Type: db.FieldGeo},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected index to be missing")
	}
}

func TestBuildCreateArgs(t *testing.T) {
	args := buildCreateArgs(&db.IndexDefinition{
		Name:     "idx",
		Prefixes: []string{"p:"},
		Fields: []db.Field{
			{Name: "price", Type: db.FieldNumeric, Sortable: true},
			{Name: "town", Type: db.FieldText},
			{Name: "town", Alias: "town_tag", Type: db.FieldTag, Sortable: true},
			{Name: "location", Type: db.FieldGeo},
		},
	})
	want := []string{
		"idx", "ON", "HASH", "PREFIX", "1", "p:", "SCHEMA",
		"price", "NUMERIC", "SORTABLE",
		"town", "TEXT",
		"town", "AS", "town_tag", "TAG", "SORTABLE",
		"location", "GEO",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}
