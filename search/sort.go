package search

// Sort keys accepted by the listing and export surfaces.
const (
	SortNew       = "new"
	SortOld       = "old"
	SortUpdated   = "updated"
	SortLikes     = "likes"
	SortAI        = "ai"
	SortRelevance = "relevance"
)

var orderBy = map[string]string{
	SortNew:       "p.created_at DESC",
	SortOld:       "p.created_at ASC",
	SortUpdated:   "p.updated_at DESC NULLS LAST, p.created_at DESC",
	SortLikes:     "favorite_count DESC NULLS LAST, p.created_at DESC",
	SortAI:        "p.ai_name ASC, p.created_at DESC",
	SortRelevance: "rank DESC NULLS LAST, p.created_at DESC",
}

// ParseSort normalizes a raw sort parameter; anything unknown becomes the
// newest-first default.
func ParseSort(raw string) string {
	if _, ok := orderBy[raw]; ok {
		return raw
	}
	return SortNew
}

// OrderBy maps a sort key to its ORDER BY expression. Unknown keys fall back
// to newest-first, as does relevance when no rank expression exists (no
// keyword means there is nothing to rank by).
func OrderBy(sort string, hasRank bool) string {
	if sort == SortRelevance && !hasRank {
		sort = SortNew
	}
	expr, ok := orderBy[sort]
	if !ok {
		expr = orderBy[SortNew]
	}
	return expr
}

// Page is pagination metadata for one listing response.
type Page struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Offset   int   `json:"-"`
	Total    int64 `json:"total"`
	HasPrev  bool  `json:"has_prev"`
	HasNext  bool  `json:"has_next"`
}

// Paginate clamps page to >= 1 and computes the window against total.
func Paginate(page, pageSize int, total int64) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	offset := (page - 1) * pageSize
	return Page{
		Page:     page,
		PageSize: pageSize,
		Offset:   offset,
		Total:    total,
		HasPrev:  page > 1,
		HasNext:  int64(offset+pageSize) < total,
	}
}
