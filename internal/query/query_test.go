package query

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devdish/devdish/backend/internal/model"
)

func TestCompileScopes(t *testing.T) {
	owner := uuid.New()

	q := Compile(Filter{}, OwnedBy(owner))
	assert.Equal(t, owner, q.Criteria.OwnerID)
	assert.False(t, q.Criteria.PublicOnly)
	assert.Equal(t, DefaultSort, q.Sort)

	q = Compile(Filter{}, Public())
	assert.Equal(t, uuid.Nil, q.Criteria.OwnerID)
	assert.True(t, q.Criteria.PublicOnly)

	q = Compile(Filter{}, LikedBy(owner))
	assert.True(t, q.Criteria.PublicOnly)
	assert.Equal(t, owner, q.Criteria.LikedBy)

	q = Compile(Filter{}, PublicBy(owner))
	assert.True(t, q.Criteria.PublicOnly)
	assert.Equal(t, owner, q.Criteria.OwnerID)
}

func TestCompileSentinels(t *testing.T) {
	q := Compile(Filter{Category: "All", Difficulty: "all"}, Public())
	assert.Empty(t, q.Criteria.Category)
	assert.Empty(t, q.Criteria.Difficulty)

	q = Compile(Filter{Category: "Dessert", Difficulty: " Hard "}, Public())
	assert.Equal(t, model.CategoryDessert, q.Criteria.Category)
	assert.Equal(t, model.DifficultyHard, q.Criteria.Difficulty)
}

func TestCompileMaxTime(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"", nil},
		{"abc", nil},
		{"-5", nil},
		{"0", intPtr(0)},
		{" 20 ", intPtr(20)},
	}
	for _, tt := range tests {
		q := Compile(Filter{MaxTime: tt.in}, Public())
		assert.Equal(t, tt.want, q.Criteria.MaxTotalTime, "maxTime=%q", tt.in)
	}
}

func TestCompileTagsAndSearch(t *testing.T) {
	q := Compile(Filter{
		Tags:   []string{"vegan, quick", "vegan", " ", "Spicy"},
		Search: "  saffron ",
	}, Public())

	assert.Equal(t, []string{"vegan", "quick", "Spicy"}, q.Criteria.Tags)
	assert.Equal(t, "saffron", q.Criteria.Search)

	q = Compile(Filter{Tags: []string{""}}, Public())
	assert.Nil(t, q.Criteria.Tags)
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		by, order string
		want      Sort
	}{
		{"", "", DefaultSort},
		{"title", "asc", Sort{SortTitle, false}},
		{"title", "desc", Sort{SortTitle, true}},
		{"title", "sideways", Sort{SortTitle, true}},
		{"totalTime", "ASC", Sort{SortTotalTime, false}},
		{"difficulty_asc", "", Sort{SortDifficulty, false}},
		{"createdAt_desc", "", Sort{SortCreatedAt, true}},
		{"likes", "desc", Sort{SortLikes, true}},
		// unknown fields fail closed to the default, ignoring the order
		{"password", "asc", DefaultSort},
		{"$where", "asc", DefaultSort},
		{"bogus_asc", "", DefaultSort},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSort(tt.by, tt.order), "sortBy=%q sortOrder=%q", tt.by, tt.order)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage("", "")
	assert.Equal(t, Page{Number: 1, Limit: 12}, p)
	assert.Equal(t, 0, p.Skip())

	p = NewPage("3", "12")
	assert.Equal(t, 24, p.Skip())

	assert.Equal(t, Page{Number: 1, Limit: 12}, NewPage("0", "-1"))
	assert.Equal(t, Page{Number: 1, Limit: 12}, NewPage("x", "y"))
	assert.Equal(t, MaxLimit, NewPage("1", "5000").Limit)
	assert.Equal(t, MaxLimit, NewPage("1", "99999999999999999999").Limit)
}

func TestNewPageHugeNumber(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
	}{
		{"fits in int", "1000000000000000000", "12"},
		{"overflows int", "99999999999999999999", "12"},
		{"max limit", "9223372036854775807", "100"},
		{"limit one", "9223372036854775807", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.limit)
			assert.Greater(t, p.Number, 1)
			assert.Positive(t, p.Skip())
			assert.LessOrEqual(t, p.Skip(), math.MaxInt32)

			res := p.Result(nil, 25)
			assert.Empty(t, res.Recipes)
			assert.Equal(t, 3, res.TotalPages)
		})
	}
}

func TestTotalPages(t *testing.T) {
	p := NewPage("1", "12")
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(12))
	assert.Equal(t, 2, p.TotalPages(13))
	assert.Equal(t, 3, p.TotalPages(25))
}

func TestPageResult(t *testing.T) {
	res := NewPage("4", "12").Result(nil, 25)
	require.NotNil(t, res)
	assert.Empty(t, res.Recipes)
	assert.NotNil(t, res.Recipes)
	assert.Equal(t, 4, res.CurrentPage)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, int64(25), res.Total)
}

func intPtr(n int) *int { return &n }
