// Package search builds the parameterized predicate, ranking and ordering
// fragments shared by the interactive post listing and the CSV/JSON exports.
// All three surfaces must consume the same builder so their filter semantics
// can never diverge.
package search

import (
	"strconv"
	"strings"
)

// Filter holds the user-supplied facets. All fields are optional.
// IncludeNonPublic is a capability, not an input: callers derive it from the
// authenticated user's role and must never populate it from request data.
type Filter struct {
	Keyword          string
	Genre            string
	TagIDs           []int
	IncludeNonPublic bool
}

// Built is the reusable output of Build. Where is a full "WHERE ..." clause
// (empty when nothing filters) with `?` placeholders matching Params in
// order. RankExpr is a selectable relevance expression, present only when a
// keyword was given; it consumes one extra parameter (the keyword again),
// which callers prepend to the final parameter list because the SELECT list
// binds before the WHERE clause.
type Built struct {
	Where    string
	Params   []interface{}
	RankExpr string
}

// HasRank reports whether a relevance expression exists.
func (b Built) HasRank() bool { return b.RankExpr != "" }

// Build assembles the predicate set against the posts table (aliased p).
//
// Tag filtering uses all-of semantics: a post qualifies only when the number
// of distinct requested tags attached to it equals the number requested.
func (f Filter) Build() Built {
	var (
		where  []string
		params []interface{}
		rank   string
	)

	if !f.IncludeNonPublic {
		where = append(where, "p.status='public'")
	}
	if f.Genre != "" {
		where = append(where, "p.genre=?")
		params = append(params, f.Genre)
	}
	if f.Keyword != "" {
		where = append(where, "p.search_vec @@ websearch_to_tsquery('simple', ?)")
		params = append(params, f.Keyword)
		rank = "ts_rank(p.search_vec, websearch_to_tsquery('simple', ?)) AS rank"
	}
	if len(f.TagIDs) > 0 {
		where = append(where, `p.id IN (
			SELECT pt.post_id FROM post_tags pt
			WHERE pt.tag_id IN ?
			GROUP BY pt.post_id
			HAVING COUNT(DISTINCT pt.tag_id) = ?)`)
		params = append(params, f.TagIDs, len(f.TagIDs))
	}

	b := Built{Params: params, RankExpr: rank}
	if len(where) > 0 {
		b.Where = "WHERE " + strings.Join(where, " AND ")
	}
	return b
}

// ParseTagIDs splits a comma-separated tag parameter into ids. Non-numeric
// tokens are dropped silently, never rejected.
func ParseTagIDs(raw string) []int {
	var ids []int
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if id, err := strconv.Atoi(tok); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
