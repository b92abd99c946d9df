// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used when the client does not send one.
const DefaultLimit = 10

// MaxLimit caps client-supplied page sizes.
const MaxLimit = 100

// MaxPage caps client-supplied page numbers so skip stays well inside
// the range Mongo accepts.
const MaxPage = math.MaxInt32 / MaxLimit

// Page is a 1-based offset page request (?page=2&limit=10).
type Page struct {
	Page  int
	Limit int
}

// Parse reads "page" and "limit" from the query string. Missing or invalid
// values fall back to page 1 and defLimit; limit is capped at MaxLimit and
// page at MaxPage.
func Parse(r *http.Request, defLimit int) Page {
	if defLimit <= 0 {
		defLimit = DefaultLimit
	}
	return Page{
		Page:  min(positiveInt(query.Get(r, "page"), 1), MaxPage),
		Limit: min(positiveInt(query.Get(r, "limit"), defLimit), MaxLimit),
	}
}

func positiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip returns how many documents precede this page. It never goes
// negative, even for a Page built without Parse.
func (p Page) Skip() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	page, limit := int64(p.Page-1), int64(p.Limit)
	if page > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return page * limit
}

// ApplyToFind sets skip and limit on find.
func (p Page) ApplyToFind(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
