package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/testhelpers"
)

type recipeData struct {
	Recipe struct {
		model.Recipe
		TotalTime int `json:"totalTime"`
		LikeCount int `json:"likeCount"`
	} `json:"recipe"`
}

func TestCreateRecipe(t *testing.T) {
	s := setupTestServer(t)
	user, token := s.createUserAndToken(t)

	w := s.do(t, http.MethodPost, "/api/recipes", token, recipeBody("Sourdough"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data recipeData
	env := decodeEnvelope(t, w, &data)
	assert.Equal(t, "Recipe created successfully", env.Message)
	assert.Equal(t, "Sourdough", data.Recipe.Title)
	assert.Equal(t, user.ID, data.Recipe.UserID)
	assert.Equal(t, 4, data.Recipe.Servings)
	assert.Equal(t, 35, data.Recipe.TotalTime)
	assert.Equal(t, 0, data.Recipe.LikeCount)
	assert.Equal(t, []string{"bread"}, data.Recipe.Tags)
}

func TestCreateRecipeValidation(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.createUserAndToken(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		field  string
	}{
		{"missing title", func(b map[string]interface{}) { delete(b, "title") }, "title"},
		{"no ingredients", func(b map[string]interface{}) { b["ingredients"] = []interface{}{} }, "ingredients"},
		{"no instructions", func(b map[string]interface{}) { delete(b, "instructions") }, "instructions"},
		{"bad unit", func(b map[string]interface{}) {
			b["ingredients"] = []map[string]interface{}{{"name": "milk", "quantity": 1, "unit": "gallon"}}
		}, "ingredients[0].unit"},
		{"bad difficulty", func(b map[string]interface{}) { b["difficulty"] = "Impossible" }, "difficulty"},
		{"negative prep time", func(b map[string]interface{}) { b["prepTime"] = -5 }, "prepTime"},
		{"wrong type", func(b map[string]interface{}) { b["cookTime"] = "long" }, "cookTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := recipeBody("Invalid")
			tt.mutate(body)

			w := s.do(t, http.MethodPost, "/api/recipes", token, body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			env := decodeEnvelope(t, w, nil)
			assert.False(t, env.Success)
			assert.Equal(t, "Validation failed", env.Message)
			require.NotEmpty(t, env.Errors)
			assert.Equal(t, tt.field, env.Errors[0].Field)
		})
	}
}

func TestCreateRecipeRejectsForeignImage(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.createUserAndToken(t)

	body := recipeBody("Borrowed")
	body["image"] = map[string]string{"key": "uploads/" + uuid.NewString() + "/x.png", "contentType": "image/png"}

	w := s.do(t, http.MethodPost, "/api/recipes", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w, nil)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "image", env.Errors[0].Field)
}

func TestRecipeOwnerScope(t *testing.T) {
	s := setupTestServer(t)
	owner, _ := s.createUserAndToken(t)
	_, otherToken := s.createUserAndToken(t)
	recipe := testhelpers.SaveRecipe(t, s.recipes, testhelpers.NewRecipe(owner.ID, "Mine"))
	path := "/api/recipes/" + recipe.ID.String()

	w := s.do(t, http.MethodGet, path, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recipe not found", decodeEnvelope(t, w, nil).Message)

	w = s.do(t, http.MethodPut, path, otherToken, map[string]string{"title": "Stolen"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/recipes/not-a-uuid", otherToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decodeEnvelope(t, w, nil).Message)

	w = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	s := setupTestServer(t)
	owner, token := s.createUserAndToken(t)
	recipe := testhelpers.SaveRecipe(t, s.recipes, testhelpers.NewRecipe(owner.ID, "Draft"))
	path := "/api/recipes/" + recipe.ID.String()

	w := s.do(t, http.MethodPut, path, token, map[string]interface{}{
		"title":    "Final",
		"isPublic": true,
		"tags":     []string{" quick ", "quick", "", "weeknight"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data recipeData
	decodeEnvelope(t, w, &data)
	assert.Equal(t, "Final", data.Recipe.Title)
	assert.True(t, data.Recipe.IsPublic)
	assert.Equal(t, []string{"quick", "weeknight"}, data.Recipe.Tags)
	assert.Equal(t, recipe.Instructions, data.Recipe.Instructions)

	w = s.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeEnvelope(t, w, &data)
	assert.Equal(t, "Final", data.Recipe.Title)

	w = s.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recipe deleted successfully", decodeEnvelope(t, w, nil).Message)

	w = s.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipes(t *testing.T) {
	s := setupTestServer(t)
	owner, token := s.createUserAndToken(t)
	other, _ := s.createUserAndToken(t)

	for i := 0; i < 15; i++ {
		r := testhelpers.NewRecipe(owner.ID, fmt.Sprintf("Recipe %02d", i))
		r.Tags = []string{"batch"}
		if i%5 == 0 {
			r.Tags = append(r.Tags, "special")
		}
		testhelpers.SaveRecipe(t, s.recipes, r)
	}
	testhelpers.SaveRecipe(t, s.recipes, testhelpers.NewRecipe(other.ID, "Not mine"))

	w := s.do(t, http.MethodGet, "/api/recipes?page=2&limit=10&sortBy=title&sortOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result query.Result
	decodeEnvelope(t, w, &result)
	assert.Equal(t, int64(15), result.Total)
	assert.Equal(t, 2, result.CurrentPage)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Recipes, 5)
	assert.Equal(t, "Recipe 10", result.Recipes[0].Title)
	assert.Equal(t, []string{"batch", "special"}, result.AvailableTags)

	w = s.do(t, http.MethodGet, "/api/recipes?tags=special&limit=abc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeEnvelope(t, w, &result)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 1, result.CurrentPage)

	w = s.do(t, http.MethodGet, "/api/recipes?search=Not+mine", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeEnvelope(t, w, &result)
	assert.Equal(t, int64(0), result.Total)
	assert.Equal(t, 0, result.TotalPages)
	assert.Empty(t, result.Recipes)
}

func TestRecipeStatsAndTags(t *testing.T) {
	s := setupTestServer(t)
	owner, token := s.createUserAndToken(t)

	dessert := testhelpers.NewRecipe(owner.ID, "Cake")
	dessert.Category = model.CategoryDessert
	dessert.Difficulty = model.DifficultyHard
	dessert.Tags = []string{"sweet", "Baking"}
	testhelpers.SaveRecipe(t, s.recipes, dessert)

	dinner := testhelpers.NewRecipe(owner.ID, "Stew")
	dinner.Tags = []string{"comfort"}
	testhelpers.SaveRecipe(t, s.recipes, dinner)

	w := s.do(t, http.MethodGet, "/api/recipes/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats model.RecipeStats
	decodeEnvelope(t, w, &stats)
	assert.Equal(t, int64(2), stats.TotalRecipes)
	assert.ElementsMatch(t, []model.GroupCount{
		{Value: "Dessert", Count: 1},
		{Value: "Dinner", Count: 1},
	}, stats.CategoryStats)
	assert.ElementsMatch(t, []model.GroupCount{
		{Value: "Hard", Count: 1},
		{Value: "Medium", Count: 1},
	}, stats.DifficultyStats)

	w = s.do(t, http.MethodGet, "/api/recipes/tags/user-tags", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tags struct {
		Tags []string `json:"tags"`
	}
	decodeEnvelope(t, w, &tags)
	assert.Equal(t, []string{"Baking", "comfort", "sweet"}, tags.Tags)
}

func TestRecipeImage(t *testing.T) {
	s := setupTestServer(t)
	owner, _ := s.createUserAndToken(t)

	plain := testhelpers.SaveRecipe(t, s.recipes, testhelpers.NewRecipe(owner.ID, "No photo"))
	w := s.do(t, http.MethodGet, "/api/recipes/"+plain.ID.String()+"/image", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image not found", decodeEnvelope(t, w, nil).Message)

	photo := testhelpers.NewRecipe(owner.ID, "Photo")
	photo.Image = &model.Image{Key: "uploads/" + owner.ID.String() + "/p.jpg", ContentType: "image/jpeg", Filename: "p.jpg"}
	testhelpers.SaveRecipe(t, s.recipes, photo)
	s.store.On("Get", mock.Anything, photo.Image.Key).Return(testhelpers.NewObject([]byte("jpegdata"), "application/octet-stream"), nil)

	w = s.do(t, http.MethodGet, "/api/recipes/"+photo.ID.String()+"/image", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "jpegdata", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/recipes/"+uuid.NewString()+"/image", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
