package search

import "testing"

func TestOrderBy(t *testing.T) {
	cases := []struct {
		sort    string
		hasRank bool
		want    string
	}{
		{SortNew, false, "p.created_at DESC"},
		{SortOld, false, "p.created_at ASC"},
		{SortUpdated, false, "p.updated_at DESC NULLS LAST, p.created_at DESC"},
		{SortLikes, false, "favorite_count DESC NULLS LAST, p.created_at DESC"},
		{SortAI, false, "p.ai_name ASC, p.created_at DESC"},
		{SortRelevance, true, "rank DESC NULLS LAST, p.created_at DESC"},
		// relevance without a keyword has no rank column to order by
		{SortRelevance, false, "p.created_at DESC"},
		{"bogus", false, "p.created_at DESC"},
		{"", true, "p.created_at DESC"},
	}
	for _, c := range cases {
		if got := OrderBy(c.sort, c.hasRank); got != c.want {
			t.Errorf("OrderBy(%q, %v) = %q, want %q", c.sort, c.hasRank, got, c.want)
		}
	}
}

func TestParseSort(t *testing.T) {
	for raw, want := range map[string]string{
		"new": SortNew, "old": SortOld, "updated": SortUpdated,
		"likes": SortLikes, "ai": SortAI, "relevance": SortRelevance,
		"": SortNew, "garbage": SortNew,
	} {
		if got := ParseSort(raw); got != want {
			t.Errorf("ParseSort(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, size int
		total      int64
		wantPage   int
		wantOffset int
		hasPrev    bool
		hasNext    bool
	}{
		{1, 8, 0, 1, 0, false, false},
		{1, 8, 8, 1, 0, false, false},   // offset+size == total -> no next
		{1, 8, 9, 1, 0, false, true},
		{2, 8, 9, 2, 8, true, false},
		{2, 8, 17, 2, 8, true, true},
		{0, 8, 100, 1, 0, false, true},  // page clamps to 1
		{-5, 8, 100, 1, 0, false, true},
		{13, 8, 100, 13, 96, true, false},
		{3, 10, 30, 3, 20, true, false},
	}
	for _, c := range cases {
		p := Paginate(c.page, c.size, c.total)
		if p.Page != c.wantPage || p.Offset != c.wantOffset || p.HasPrev != c.hasPrev || p.HasNext != c.hasNext {
			t.Errorf("Paginate(%d,%d,%d) = %+v, want page=%d offset=%d prev=%v next=%v",
				c.page, c.size, c.total, p, c.wantPage, c.wantOffset, c.hasPrev, c.hasNext)
		}
	}
}

// has_next must be false exactly when offset+size >= total.
func TestPaginateHasNextProperty(t *testing.T) {
	for page := 1; page <= 6; page++ {
		for _, size := range []int{1, 3, 8} {
			for total := int64(0); total <= 30; total++ {
				p := Paginate(page, size, total)
				want := int64(p.Offset+size) < total
				if p.HasNext != want {
					t.Fatalf("page=%d size=%d total=%d: has_next=%v, want %v", page, size, total, p.HasNext, want)
				}
			}
		}
	}
}
