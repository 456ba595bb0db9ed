package query

import "strings"

// SortField is a sortable recipe attribute.
type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortUpdatedAt  SortField = "updatedAt"
	SortTitle      SortField = "title"
	SortDifficulty SortField = "difficulty"
	SortTotalTime  SortField = "totalTime"
	SortPrepTime   SortField = "prepTime"
	SortCookTime   SortField = "cookTime"
	SortServings   SortField = "servings"
	SortViews      SortField = "views"
	SortLikes      SortField = "likes"
)

var sortFields = map[string]SortField{
	string(SortCreatedAt):  SortCreatedAt,
	string(SortUpdatedAt):  SortUpdatedAt,
	string(SortTitle):      SortTitle,
	string(SortDifficulty): SortDifficulty,
	string(SortTotalTime):  SortTotalTime,
	string(SortPrepTime):   SortPrepTime,
	string(SortCookTime):   SortCookTime,
	string(SortServings):   SortServings,
	string(SortViews):      SortViews,
	string(SortLikes):      SortLikes,
}

// Sort is an ordering over one field. Stores add an id tie-breaker.
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort lists newest recipes first.
var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

// ParseSort resolves sortBy and sortOrder against the allow-list. sortBy
// may also carry the order as a suffix, e.g. "title_asc". An unknown field
// yields DefaultSort.
func ParseSort(sortBy, sortOrder string) Sort {
	sortBy = strings.TrimSpace(sortBy)
	sortOrder = strings.ToLower(strings.TrimSpace(sortOrder))

	if i := strings.LastIndex(sortBy, "_"); i > 0 {
		if suffix := strings.ToLower(sortBy[i+1:]); suffix == "asc" || suffix == "desc" {
			sortBy = sortBy[:i]
			if sortOrder == "" {
				sortOrder = suffix
			}
		}
	}

	field, ok := sortFields[sortBy]
	if !ok {
		return DefaultSort
	}
	return Sort{Field: field, Desc: sortOrder != "asc"}
}
