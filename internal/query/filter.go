// Package query turns listing parameters into a store-independent
// predicate, ordering and page window.
package query

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/devdish/devdish/backend/internal/model"
)

// anyValue means "no restriction" for category and difficulty.
const anyValue = "all"

// Filter is the listing configuration as received from the client.
// Every field is optional.
type Filter struct {
	Category   string   `form:"category"`
	Search     string   `form:"search"`
	Difficulty string   `form:"difficulty"`
	MaxTime    string   `form:"maxTime"`
	Tags       []string `form:"tags"`
	SortBy     string   `form:"sortBy"`
	SortOrder  string   `form:"sortOrder"`
	Page       string   `form:"page"`
	Limit      string   `form:"limit"`
}

// Scope is the implicit restriction applied by the caller's context.
type Scope struct {
	OwnerID    uuid.UUID
	PublicOnly bool
	LikedBy    uuid.UUID
}

// OwnedBy scopes a listing to one owner's recipes, public or not.
func OwnedBy(ownerID uuid.UUID) Scope {
	return Scope{OwnerID: ownerID}
}

// Public scopes a listing to public recipes.
func Public() Scope {
	return Scope{PublicOnly: true}
}

// PublicBy scopes a listing to one owner's public recipes.
func PublicBy(ownerID uuid.UUID) Scope {
	return Scope{OwnerID: ownerID, PublicOnly: true}
}

// LikedBy scopes a listing to public recipes the user has liked.
func LikedBy(userID uuid.UUID) Scope {
	return Scope{PublicOnly: true, LikedBy: userID}
}

// Criteria is the normalized predicate. Zero values mean no restriction.
type Criteria struct {
	OwnerID      uuid.UUID
	PublicOnly   bool
	LikedBy      uuid.UUID
	Category     model.Category
	Difficulty   model.Difficulty
	MaxTotalTime *int
	Tags         []string
	Search       string
}

// Query is a predicate plus ordering, ready for a recipe store.
type Query struct {
	Criteria Criteria
	Sort     Sort
}

// Compile builds the query for f within scope. It never fails: values it
// cannot interpret are dropped.
func Compile(f Filter, scope Scope) Query {
	c := Criteria{
		OwnerID:    scope.OwnerID,
		PublicOnly: scope.PublicOnly,
		LikedBy:    scope.LikedBy,
		Category:   model.Category(optional(f.Category)),
		Difficulty: model.Difficulty(optional(f.Difficulty)),
		Tags:       normalizeTags(f.Tags),
		Search:     strings.TrimSpace(f.Search),
	}

	if v := strings.TrimSpace(f.MaxTime); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxTotalTime = &n
		}
	}

	return Query{Criteria: c, Sort: ParseSort(f.SortBy, f.SortOrder)}
}

func optional(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, anyValue) {
		return ""
	}
	return v
}

// normalizeTags accepts repeated and comma separated values and drops
// blanks and duplicates.
func normalizeTags(raw []string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}
