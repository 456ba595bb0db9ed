package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/testhelpers"
	"github.com/devdish/devdish/backend/internal/types"
)

func createRequest(title string) *types.CreateRecipeRequest {
	return &types.CreateRecipeRequest{
		Title:       title,
		Description: "Weeknight favourite",
		Ingredients: []types.IngredientRequest{
			{Name: "rice", Quantity: 300, Unit: "g"},
			{Name: "saffron", Quantity: 1, Unit: "pinch", Notes: "soaked"},
		},
		Instructions: []string{"Toast the rice", "Simmer"},
		PrepTime:     10,
		CookTime:     25,
	}
}

func TestRecipeService_CreateAppliesDefaults(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)

	req := createRequest("  Paella  ")
	req.Tags = []string{" Spanish", "rice", "", "Spanish"}

	recipe, err := svc.Create(context.Background(), owner.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "Paella", recipe.Title)
	assert.Equal(t, 4, recipe.Servings)
	assert.Equal(t, model.DifficultyMedium, recipe.Difficulty)
	assert.Equal(t, model.CategoryOther, recipe.Category)
	assert.Equal(t, []string{"Spanish", "rice"}, recipe.Tags)
	assert.Equal(t, 35, recipe.TotalTime())
	assert.NotEmpty(t, recipe.PublicID)
	assert.NotEqual(t, recipe.ID.String(), recipe.PublicID)

	stored, err := svc.Get(context.Background(), owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.Title, stored.Title)
	assert.Equal(t, []string{"Toast the rice", "Simmer"}, stored.Instructions)
	assert.Equal(t, "saffron", stored.Ingredients[1].Name)
	assert.Equal(t, "soaked", stored.Ingredients[1].Notes)
}

func TestRecipeService_CreateValidation(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)

	tests := []struct {
		name   string
		mutate func(r *types.CreateRecipeRequest)
		field  string
	}{
		{"blank title", func(r *types.CreateRecipeRequest) { r.Title = "   " }, "title"},
		{"no ingredients", func(r *types.CreateRecipeRequest) { r.Ingredients = nil }, "ingredients"},
		{"blank step", func(r *types.CreateRecipeRequest) { r.Instructions = []string{"Mix", "  "} }, "instructions[1]"},
		{"zero servings", func(r *types.CreateRecipeRequest) { r.Servings = intPtr(0) }, "servings"},
		{"foreign image", func(r *types.CreateRecipeRequest) {
			r.Image = &model.Image{Key: "uploads/" + uuid.NewString() + "/x.png", ContentType: "image/png"}
		}, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest("Soup")
			tt.mutate(req)

			_, err := svc.Create(context.Background(), owner.ID, req)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)

			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestRecipeService_OwnerScope(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)
	stranger := testhelpers.CreateTestUser(t, env.db)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, owner.ID, createRequest("Private stew"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(ctx, stranger.ID, recipe.ID, &types.UpdateRecipeRequest{Title: strPtr("Stolen")})
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(ctx, stranger.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	stored, err := svc.Get(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private stew", stored.Title)
}

func TestRecipeService_PartialUpdate(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, owner.ID, createRequest("Risotto"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner.ID, recipe.ID, &types.UpdateRecipeRequest{
		CookTime: intPtr(40),
		IsPublic: boolPtr(true),
		Tags:     []string{"italian"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Risotto", updated.Title)
	assert.Equal(t, 50, updated.TotalTime())
	assert.True(t, updated.IsPublic)

	stored, err := svc.Get(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stored.CookTime)
	assert.Equal(t, 10, stored.PrepTime)
	assert.Equal(t, []string{"italian"}, stored.Tags)
	assert.Len(t, stored.Ingredients, 2)

	_, err = svc.Update(ctx, owner.ID, recipe.ID, &types.UpdateRecipeRequest{Ingredients: []types.IngredientRequest{}})
	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRecipeService_DeleteRemovesImage(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)
	ctx := context.Background()

	req := createRequest("Pie")
	req.Image = &model.Image{
		Key:         fmt.Sprintf("uploads/%s/pie.jpg", owner.ID),
		ContentType: "image/jpeg",
		Filename:    "pie.jpg",
	}
	recipe, err := svc.Create(ctx, owner.ID, req)
	require.NoError(t, err)

	env.store.On("Delete", mock.Anything, req.Image.Key).Return(errors.New("store unavailable"))

	require.NoError(t, svc.Delete(ctx, owner.ID, recipe.ID))
	env.store.AssertExpectations(t)

	_, err = svc.Get(ctx, owner.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRecipeService_ListPagination(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)
	other := testhelpers.CreateTestUser(t, env.db)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		recipe := testhelpers.NewRecipe(owner.ID, fmt.Sprintf("Recipe %02d", i))
		testhelpers.SaveRecipe(t, env.recipes, recipe)
	}
	testhelpers.SaveRecipe(t, env.recipes, testhelpers.NewRecipe(other.ID, "Not mine"))

	tests := []struct {
		page  string
		count int
	}{
		{"1", 12},
		{"2", 12},
		{"3", 1},
		{"4", 0},
	}
	for _, tt := range tests {
		t.Run("page "+tt.page, func(t *testing.T) {
			result, err := svc.List(ctx, owner.ID, query.Filter{Page: tt.page, Limit: "12"})
			require.NoError(t, err)
			assert.Len(t, result.Recipes, tt.count)
			assert.Equal(t, int64(25), result.Total)
			assert.Equal(t, 3, result.TotalPages)
			assert.NotNil(t, result.Recipes)
		})
	}
}

func TestRecipeService_TagsAndStats(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)
	other := testhelpers.CreateTestUser(t, env.db)
	ctx := context.Background()

	a := testhelpers.NewRecipe(owner.ID, "A")
	a.Tags = []string{"vegan", "Quick"}
	a.Difficulty = model.DifficultyEasy
	b := testhelpers.NewRecipe(owner.ID, "B")
	b.Tags = []string{"vegan", "brunch"}
	b.Category = model.CategoryBreakfast
	c := testhelpers.NewRecipe(other.ID, "C")
	c.Tags = []string{"secret"}
	for _, r := range []*model.Recipe{a, b, c} {
		testhelpers.SaveRecipe(t, env.recipes, r)
	}

	tags, err := svc.Tags(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"brunch", "Quick", "vegan"}, tags)

	result, err := svc.List(ctx, owner.ID, query.Filter{})
	require.NoError(t, err)
	assert.Equal(t, tags, result.AvailableTags)

	stats, err := svc.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRecipes)
	assert.ElementsMatch(t, []model.GroupCount{
		{Value: "Dinner", Count: 1},
		{Value: "Breakfast", Count: 1},
	}, stats.CategoryStats)
	assert.ElementsMatch(t, []model.GroupCount{
		{Value: "Easy", Count: 1},
		{Value: "Medium", Count: 1},
	}, stats.DifficultyStats)
}

func TestRecipeService_ImageMissing(t *testing.T) {
	env := setupTestEnv(t)
	svc := service.NewRecipeService(env.recipes, env.images)
	owner := testhelpers.CreateTestUser(t, env.db)

	recipe := testhelpers.SaveRecipe(t, env.recipes, testhelpers.NewRecipe(owner.ID, "Plain"))

	_, err := svc.Image(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, service.ErrImageMissing)

	_, err = svc.Image(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
