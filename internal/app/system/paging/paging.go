// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used when the request does not name one.
const DefaultLimit = 10

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// Params is a 1-based page number and a page size.
type Params struct {
	Page  int
	Limit int
}

// Parse reads the "page" and "limit" query parameters. Missing or
// malformed values fall back to page 1 and DefaultLimit; limit is capped
// at MaxLimit.
func Parse(r *http.Request) Params {
	p := Params{
		Page:  positive(query.Get(r, "page"), 1),
		Limit: positive(query.Get(r, "limit"), DefaultLimit),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of documents before this page.
func (p Params) Skip() int64 { return int64(p.Page-1) * int64(p.Limit) }

// ApplyToFind sets skip and limit on a Find.
func (p Params) ApplyToFind(find *options.FindOptions) {
	find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"totalUsers"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Compute builds the Pagination for p given the total number of matches.
func Compute(p Params, total int64) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  pages,
		Total:       total,
		Limit:       p.Limit,
		HasNextPage: p.Page < pages,
		HasPrevPage: p.Page > 1,
	}
}
