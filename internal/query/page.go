package query

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/devdish/devdish/backend/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// Page is an offset/limit window over a listing.
type Page struct {
	Number int
	Limit  int
}

// maxSkip bounds the offset so it fits every store's integer type.
const maxSkip = math.MaxInt32

// NewPage parses page and limit, falling back to the defaults for missing
// or invalid values. Page numbers past the largest addressable offset are
// clamped; such a page is always empty.
func NewPage(page, limit string) Page {
	p := Page{
		Number: positiveOr(page, DefaultPage),
		Limit:  positiveOr(limit, DefaultLimit),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if last := maxSkip/p.Limit + 1; p.Number > last {
		p.Number = last
	}
	return p
}

func positiveOr(v string, def int) int {
	v = strings.TrimSpace(v)
	n, err := strconv.Atoi(v)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(v, "-") {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of records before the window.
func (p Page) Skip() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return int((total + limit - 1) / limit)
}

// Result is one page of recipes with its metadata.
type Result struct {
	Recipes       []model.Recipe `json:"recipes"`
	CurrentPage   int            `json:"currentPage"`
	TotalPages    int            `json:"totalPages"`
	Total         int64          `json:"total"`
	AvailableTags []string       `json:"availableTags,omitempty"`
}

// Result wraps items fetched for p with the separately counted total.
func (p Page) Result(items []model.Recipe, total int64) *Result {
	if items == nil {
		items = []model.Recipe{}
	}
	return &Result{
		Recipes:     items,
		CurrentPage: p.Number,
		TotalPages:  p.TotalPages(total),
		Total:       total,
	}
}
