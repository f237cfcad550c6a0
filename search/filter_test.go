package search

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildEmptyFilter(t *testing.T) {
	b := Filter{}.Build()
	if b.Where != "WHERE p.status='public'" {
		t.Fatalf("empty filter should still restrict to public, got %q", b.Where)
	}
	if len(b.Params) != 0 {
		t.Fatalf("no params expected, got %v", b.Params)
	}
	if b.HasRank() {
		t.Fatal("rank expression without keyword")
	}
}

func TestBuildStatusPredicateIsUnconditional(t *testing.T) {
	// Whatever else filters, non-staff callers never see non-public rows.
	filters := []Filter{
		{},
		{Keyword: "robot"},
		{Genre: "art"},
		{TagIDs: []int{2, 5}},
		{Keyword: "robot", Genre: "art", TagIDs: []int{1}},
	}
	for _, f := range filters {
		b := f.Build()
		if !strings.Contains(b.Where, "p.status='public'") {
			t.Errorf("filter %+v lost the public-status predicate: %q", f, b.Where)
		}
	}
}

func TestBuildIncludeNonPublicDropsStatusPredicate(t *testing.T) {
	b := Filter{IncludeNonPublic: true}.Build()
	if b.Where != "" {
		t.Fatalf("staff with no facets should have no WHERE, got %q", b.Where)
	}
}

func TestBuildKeyword(t *testing.T) {
	b := Filter{Keyword: "robot", IncludeNonPublic: true}.Build()
	if !strings.Contains(b.Where, "websearch_to_tsquery('simple', ?)") {
		t.Fatalf("missing full-text predicate: %q", b.Where)
	}
	if !reflect.DeepEqual(b.Params, []interface{}{"robot"}) {
		t.Fatalf("params = %v", b.Params)
	}
	if !b.HasRank() || !strings.Contains(b.RankExpr, "ts_rank") {
		t.Fatalf("rank expression missing: %q", b.RankExpr)
	}
}

func TestBuildGenreAndTags(t *testing.T) {
	b := Filter{Genre: "art", TagIDs: []int{2, 5}}.Build()
	if !strings.Contains(b.Where, "p.genre=?") {
		t.Fatalf("missing genre predicate: %q", b.Where)
	}
	// All-of semantics: count of matched distinct tags must equal |T|.
	if !strings.Contains(b.Where, "HAVING COUNT(DISTINCT pt.tag_id) = ?") {
		t.Fatalf("tag filter is not all-of: %q", b.Where)
	}
	want := []interface{}{"art", []int{2, 5}, 2}
	if !reflect.DeepEqual(b.Params, want) {
		t.Fatalf("params = %v, want %v", b.Params, want)
	}
}

func TestBuildParamOrderMatchesClauseOrder(t *testing.T) {
	b := Filter{Keyword: "robot", Genre: "art", TagIDs: []int{7}}.Build()
	want := []interface{}{"art", "robot", []int{7}, 1}
	if !reflect.DeepEqual(b.Params, want) {
		t.Fatalf("params = %v, want %v", b.Params, want)
	}
	// Placeholder count in the clause matches the parameter count (the slice
	// binds to one IN ? placeholder).
	if got := strings.Count(b.Where, "?"); got != len(want) {
		t.Fatalf("%d placeholders for %d params in %q", got, len(want), b.Where)
	}
}

func TestParseTagIDs(t *testing.T) {
	cases := []struct {
		raw  string
		want []int
	}{
		{"", nil},
		{"2,5", []int{2, 5}},
		{" 2 , 5 ", []int{2, 5}},
		{"2,abc,5", []int{2, 5}},   // malformed tokens dropped, not rejected
		{"abc", nil},
		{"0,-3,5", []int{5}},
		{",,7,", []int{7}},
	}
	for _, c := range cases {
		if got := ParseTagIDs(c.raw); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ParseTagIDs(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
