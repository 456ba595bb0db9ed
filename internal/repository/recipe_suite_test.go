package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/repository"
	"github.com/devdish/devdish/backend/internal/testhelpers"
)

// recipeStoreFactory returns an empty recipe store for one subtest.
type recipeStoreFactory func(t *testing.T) repository.RecipeRepository

// runRecipeStoreTests checks the behaviour every recipe store must share.
func runRecipeStoreTests(t *testing.T, newStore recipeStoreFactory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo repository.RecipeRepository)
	}{
		{"CreateAndFind", testCreateAndFind},
		{"MaxTimeUsesTotalTime", testMaxTime},
		{"TagsMatchAny", testTagsMatchAny},
		{"SearchFields", testSearchFields},
		{"SearchIsLiteral", testSearchIsLiteral},
		{"CategoryAndDifficulty", testCategoryAndDifficulty},
		{"Pagination", testPagination},
		{"SortOrders", testSortOrders},
		{"ToggleLike", testToggleLike},
		{"ConcurrentToggles", testConcurrentToggles},
		{"ConcurrentTogglesSameUser", testConcurrentTogglesSameUser},
		{"LikedByScope", testLikedByScope},
		{"IncrementViews", testIncrementViews},
		{"DistinctTagsScopedToOwner", testDistinctTags},
		{"CountBy", testCountBy},
		{"UpdateIsOwnerScoped", testUpdateScope},
		{"DeleteIsOwnerScoped", testDeleteScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func find(t *testing.T, repo repository.RecipeRepository, f query.Filter, scope query.Scope) []model.Recipe {
	t.Helper()
	recipes, err := repo.Find(context.Background(), query.Compile(f, scope), query.NewPage(f.Page, f.Limit))
	require.NoError(t, err)
	return recipes
}

func titles(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func testCreateAndFind(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner := uuid.New()

	recipe := testhelpers.NewRecipe(owner, "Focaccia")
	recipe.Tags = []string{"bread", "Italian"}
	recipe.Image = &model.Image{Key: "uploads/" + owner.String() + "/f.jpg", ContentType: "image/jpeg", Filename: "f.jpg"}
	testhelpers.SaveRecipe(t, repo, recipe)
	assert.False(t, recipe.CreatedAt.IsZero())

	got, err := repo.FindByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Focaccia", got.Title)
	assert.Equal(t, owner, got.UserID)
	assert.Equal(t, []string{"Mix", "Bake"}, got.Instructions)
	assert.Equal(t, []string{"bread", "Italian"}, got.Tags)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, "flour", got.Ingredients[0].Name)
	assert.Equal(t, "warm", got.Ingredients[1].Notes)
	assert.Equal(t, model.UnitCup, got.Ingredients[1].Unit)
	require.NotNil(t, got.Image)
	assert.Equal(t, recipe.Image.Key, got.Image.Key)
	assert.Equal(t, 30, got.TotalTime())

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.FindByPublicID(ctx, recipe.PublicID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "private recipes are not reachable by public id")

	shared := testhelpers.NewRecipe(owner, "Shared")
	shared.IsPublic = true
	testhelpers.SaveRecipe(t, repo, shared)

	got, err = repo.FindByPublicID(ctx, shared.PublicID)
	require.NoError(t, err)
	assert.Equal(t, shared.ID, got.ID)
	assert.Nil(t, got.Image)
}

func testMaxTime(t *testing.T, repo repository.RecipeRepository) {
	owner := uuid.New()
	r := testhelpers.NewRecipe(owner, "Twenty minutes")
	r.PrepTime, r.CookTime = 10, 10
	testhelpers.SaveRecipe(t, repo, r)

	assert.Len(t, find(t, repo, query.Filter{MaxTime: "20"}, query.OwnedBy(owner)), 1)
	assert.Empty(t, find(t, repo, query.Filter{MaxTime: "19"}, query.OwnedBy(owner)))
	assert.Len(t, find(t, repo, query.Filter{MaxTime: "-1"}, query.OwnedBy(owner)), 1)

	// total time follows later edits to either component
	r.CookTime = 5
	require.NoError(t, repo.Update(context.Background(), r))
	assert.Len(t, find(t, repo, query.Filter{MaxTime: "15"}, query.OwnedBy(owner)), 1)
}

func testTagsMatchAny(t *testing.T, repo repository.RecipeRepository) {
	owner := uuid.New()
	for title, tags := range map[string][]string{
		"Vegan bowl":  {"vegan"},
		"Quick toast": {"quick"},
		"Both":        {"vegan", "quick"},
		"Steak":       {"meat"},
	} {
		r := testhelpers.NewRecipe(owner, title)
		r.Tags = tags
		testhelpers.SaveRecipe(t, repo, r)
	}

	got := find(t, repo, query.Filter{Tags: []string{"vegan", "quick"}}, query.OwnedBy(owner))
	assert.ElementsMatch(t, []string{"Vegan bowl", "Quick toast", "Both"}, titles(got))

	got = find(t, repo, query.Filter{Tags: []string{"vegan,meat"}}, query.OwnedBy(owner))
	assert.ElementsMatch(t, []string{"Vegan bowl", "Both", "Steak"}, titles(got))

	count, err := repo.Count(context.Background(), query.Compile(query.Filter{Tags: []string{"quick"}}, query.OwnedBy(owner)).Criteria)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func testSearchFields(t *testing.T, repo repository.RecipeRepository) {
	owner := uuid.New()

	risotto := testhelpers.NewRecipe(owner, "Golden rice")
	risotto.Description = "Comfort food"
	risotto.Ingredients = append(risotto.Ingredients, model.Ingredient{Name: "Saffron threads", Quantity: 1, Unit: model.UnitPinch})
	testhelpers.SaveRecipe(t, repo, risotto)

	stew := testhelpers.NewRecipe(owner, "Stew")
	stew.Description = "Slow cooked with SAFFRON-free spices"
	testhelpers.SaveRecipe(t, repo, stew)

	pie := testhelpers.NewRecipe(owner, "Pie")
	pie.Instructions = []string{"Sprinkle saffron on top"}
	testhelpers.SaveRecipe(t, repo, pie)

	got := find(t, repo, query.Filter{Search: "  saffron "}, query.OwnedBy(owner))
	assert.ElementsMatch(t, []string{"Golden rice", "Stew"}, titles(got), "instructions are never searched")

	got = find(t, repo, query.Filter{Search: "GOLDEN"}, query.OwnedBy(owner))
	assert.Equal(t, []string{"Golden rice"}, titles(got))

	testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(owner, "CRÈME brûlée"))
	got = find(t, repo, query.Filter{Search: "crème"}, query.OwnedBy(owner))
	assert.Equal(t, []string{"CRÈME brûlée"}, titles(got))
	got = find(t, repo, query.Filter{Search: "BRÛLÉE"}, query.OwnedBy(owner))
	assert.Equal(t, []string{"CRÈME brûlée"}, titles(got))
}

func testSearchIsLiteral(t *testing.T, repo repository.RecipeRepository) {
	owner := uuid.New()
	for _, title := range []string{"100% rye", "1000 rye", "a_b", "axb", "(c.d)", "cxd"} {
		testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(owner, title))
	}

	assert.Equal(t, []string{"100% rye"}, titles(find(t, repo, query.Filter{Search: "100%"}, query.OwnedBy(owner))))
	assert.Equal(t, []string{"a_b"}, titles(find(t, repo, query.Filter{Search: "a_b"}, query.OwnedBy(owner))))
	assert.Equal(t, []string{"(c.d)"}, titles(find(t, repo, query.Filter{Search: "(c.d"}, query.OwnedBy(owner))))
}

func testCategoryAndDifficulty(t *testing.T, repo repository.RecipeRepository) {
	owner := uuid.New()
	cake := testhelpers.NewRecipe(owner, "Cake")
	cake.Category = model.CategoryDessert
	cake.Difficulty = model.DifficultyHard
	testhelpers.SaveRecipe(t, repo, cake)
	testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(owner, "Soup"))

	assert.Equal(t, []string{"Cake"}, titles(find(t, repo, query.Filter{Category: "Dessert"}, query.OwnedBy(owner))))
	assert.Equal(t, []string{"Soup"}, titles(find(t, repo, query.Filter{Difficulty: "Medium"}, query.OwnedBy(owner))))
	assert.Len(t, find(t, repo, query.Filter{Category: "all", Difficulty: "All"}, query.OwnedBy(owner)), 2)
	assert.Empty(t, find(t, repo, query.Filter{Category: "Dessert", Difficulty: "Easy"}, query.OwnedBy(owner)))
}

func testPagination(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner := uuid.New()
	for i := 0; i < 25; i++ {
		testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(owner, fmt.Sprintf("Recipe %02d", i)))
	}
	testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(uuid.New(), "Someone else's"))

	q := query.Compile(query.Filter{SortBy: "title", SortOrder: "asc"}, query.OwnedBy(owner))
	total, err := repo.Count(ctx, q.Criteria)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)

	tests := []struct {
		page  string
		count int
		first string
	}{
		{"1", 12, "Recipe 00"},
		{"2", 12, "Recipe 12"},
		{"3", 1, "Recipe 24"},
		{"4", 0, ""},
		{"1000000000000000000", 0, ""},
		{"99999999999999999999", 0, ""},
	}
	for _, tt := range tests {
		page := query.NewPage(tt.page, "12")
		got, err := repo.Find(ctx, q, page)
		require.NoError(t, err)
		assert.Len(t, got, tt.count, "page %s", tt.page)
		if tt.first != "" {
			assert.Equal(t, tt.first, got[0].Title)
		}
		assert.Equal(t, 3, page.TotalPages(total))
	}
}

func testSortOrders(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner := uuid.New()

	fixtures := []struct {
		title      string
		difficulty model.Difficulty
		prep, cook int
		likes      int
	}{
		{"A", model.DifficultyHard, 30, 0, 1},
		{"B", model.DifficultyEasy, 5, 20, 3},
		{"C", model.DifficultyMedium, 1, 40, 0},
	}
	for _, f := range fixtures {
		r := testhelpers.NewRecipe(owner, f.title)
		r.IsPublic = true
		r.Difficulty = f.difficulty
		r.PrepTime, r.CookTime = f.prep, f.cook
		testhelpers.SaveRecipe(t, repo, r)
		for i := 0; i < f.likes; i++ {
			_, _, err := repo.ToggleLike(ctx, r.ID, uuid.New())
			require.NoError(t, err)
		}
	}

	tests := []struct {
		sortBy, sortOrder string
		want              []string
	}{
		{"difficulty", "asc", []string{"B", "C", "A"}},
		{"difficulty", "desc", []string{"A", "C", "B"}},
		{"totalTime", "asc", []string{"B", "A", "C"}},
		{"prepTime", "asc", []string{"C", "B", "A"}},
		{"likes", "desc", []string{"B", "A", "C"}},
		{"title_desc", "", []string{"C", "B", "A"}},
		{"title", "sideways", []string{"C", "B", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy+"_"+tt.sortOrder, func(t *testing.T) {
			got := find(t, repo, query.Filter{SortBy: tt.sortBy, SortOrder: tt.sortOrder}, query.OwnedBy(owner))
			assert.Equal(t, tt.want, titles(got))
		})
	}

	// an unknown field falls back to newest first without failing
	got := find(t, repo, query.Filter{SortBy: "password"}, query.OwnedBy(owner))
	assert.Len(t, got, 3)
}

func testToggleLike(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner, fan := uuid.New(), uuid.New()

	shared := testhelpers.NewRecipe(owner, "Shared")
	shared.IsPublic = true
	testhelpers.SaveRecipe(t, repo, shared)
	hidden := testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(owner, "Hidden"))

	liked, count, err := repo.ToggleLike(ctx, shared.ID, fan)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = repo.ToggleLike(ctx, shared.ID, fan)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	got, err := repo.FindByID(ctx, shared.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	_, _, err = repo.ToggleLike(ctx, hidden.ID, fan)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	liked, _, err = repo.ToggleLike(ctx, hidden.ID, owner)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err = repo.FindByID(ctx, hidden.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLikedBy(owner))

	_, _, err = repo.ToggleLike(ctx, uuid.New(), fan)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testConcurrentToggles(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	r := testhelpers.NewRecipe(uuid.New(), "Popular")
	r.IsPublic = true
	testhelpers.SaveRecipe(t, repo, r)

	const fans = 10
	var wg sync.WaitGroup
	errs := make(chan error, fans)
	for i := 0; i < fans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := repo.ToggleLike(ctx, r.ID, uuid.New()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Likes, fans)
}

func testConcurrentTogglesSameUser(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	r := testhelpers.NewRecipe(uuid.New(), "Contested")
	r.IsPublic = true
	testhelpers.SaveRecipe(t, repo, r)
	fan := uuid.New()

	const toggles = 10
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		likes int
	)
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			liked, _, err := repo.ToggleLike(ctx, r.ID, fan)
			if err != nil {
				errs <- err
				return
			}
			if liked {
				mu.Lock()
				likes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, toggles/2, likes)
	got, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.False(t, got.IsLikedBy(fan))
}

func testLikedByScope(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner, fan := uuid.New(), uuid.New()

	var ids []uuid.UUID
	for _, title := range []string{"Liked", "Ignored", "Liked then hidden"} {
		r := testhelpers.NewRecipe(owner, title)
		r.IsPublic = true
		testhelpers.SaveRecipe(t, repo, r)
		ids = append(ids, r.ID)
	}
	for _, id := range []uuid.UUID{ids[0], ids[2]} {
		_, _, err := repo.ToggleLike(ctx, id, fan)
		require.NoError(t, err)
	}

	hidden, err := repo.FindByID(ctx, ids[2])
	require.NoError(t, err)
	hidden.IsPublic = false
	require.NoError(t, repo.Update(ctx, hidden))

	got := find(t, repo, query.Filter{}, query.LikedBy(fan))
	assert.Equal(t, []string{"Liked"}, titles(got))
}

func testIncrementViews(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	r := testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(uuid.New(), "Viewed"))

	require.NoError(t, repo.IncrementViews(ctx, r.ID))
	require.NoError(t, repo.IncrementViews(ctx, r.ID))

	got, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	assert.ErrorIs(t, repo.IncrementViews(ctx, uuid.New()), repository.ErrNotFound)
}

func testDistinctTags(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	for _, tags := range [][]string{{"soup", "winter"}, {"winter", "Soup"}} {
		r := testhelpers.NewRecipe(owner, "Mine")
		r.Tags = tags
		testhelpers.SaveRecipe(t, repo, r)
	}
	theirs := testhelpers.NewRecipe(other, "Theirs")
	theirs.Tags = []string{"secret"}
	theirs.IsPublic = true
	testhelpers.SaveRecipe(t, repo, theirs)

	tags, err := repo.DistinctTags(ctx, owner)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"soup", "Soup", "winter"}, tags)

	tags, err = repo.DistinctTags(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func testCountBy(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner := uuid.New()
	for _, c := range []model.Category{model.CategoryDinner, model.CategoryDinner, model.CategorySnack} {
		r := testhelpers.NewRecipe(owner, "Counted")
		r.Category = c
		testhelpers.SaveRecipe(t, repo, r)
	}
	testhelpers.SaveRecipe(t, repo, testhelpers.NewRecipe(uuid.New(), "Elsewhere"))

	counts, err := repo.CountBy(ctx, owner, repository.GroupByCategory)
	require.NoError(t, err)
	assert.Equal(t, []model.GroupCount{{Value: "Dinner", Count: 2}, {Value: "Snack", Count: 1}}, counts)

	counts, err = repo.CountBy(ctx, owner, repository.GroupByDifficulty)
	require.NoError(t, err)
	assert.Equal(t, []model.GroupCount{{Value: "Medium", Count: 3}}, counts)

	_, err = repo.CountBy(ctx, owner, repository.GroupField("title"))
	assert.Error(t, err)
}

func testUpdateScope(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner := uuid.New()
	r := testhelpers.NewRecipe(owner, "Original")
	r.Tags = []string{"old"}
	testhelpers.SaveRecipe(t, repo, r)

	stolen := *r
	stolen.UserID = uuid.New()
	stolen.Title = "Stolen"
	assert.ErrorIs(t, repo.Update(ctx, &stolen), repository.ErrNotFound)

	r.Title = "Edited"
	r.Tags = []string{"new", "fresh"}
	r.Ingredients = []model.Ingredient{{Name: "eggs", Quantity: 2, Unit: model.UnitPiece}}
	r.Instructions = []string{"Whisk"}
	require.NoError(t, repo.Update(ctx, r))

	got, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)
	assert.Equal(t, []string{"new", "fresh"}, got.Tags)
	assert.Equal(t, []string{"Whisk"}, got.Instructions)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "eggs", got.Ingredients[0].Name)
	assert.Equal(t, owner, got.UserID)
}

func testDeleteScope(t *testing.T, repo repository.RecipeRepository) {
	ctx := context.Background()
	owner := uuid.New()
	r := testhelpers.NewRecipe(owner, "Doomed")
	r.IsPublic = true
	testhelpers.SaveRecipe(t, repo, r)
	_, _, err := repo.ToggleLike(ctx, r.ID, uuid.New())
	require.NoError(t, err)

	_, err = repo.Delete(ctx, r.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := repo.Delete(ctx, r.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", deleted.Title)

	_, err = repo.FindByID(ctx, r.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Delete(ctx, r.ID, owner)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
