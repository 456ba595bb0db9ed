package types

import "github.com/devdish/devdish/backend/internal/model"

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type IngredientRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" binding:"required,oneof=g kg ml l cup tbsp tsp piece pinch 'to taste'"`
	Notes    string  `json:"notes" binding:"max=200"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// Difficulty, category and servings fall back to defaults when omitted.
type CreateRecipeRequest struct {
	Title        string              `json:"title" binding:"required,max=100"`
	Description  string              `json:"description" binding:"max=500"`
	Ingredients  []IngredientRequest `json:"ingredients" binding:"required,min=1,dive"`
	Instructions []string            `json:"instructions" binding:"required,min=1,dive,required"`
	PrepTime     int                 `json:"prepTime" binding:"gte=0"`
	CookTime     int                 `json:"cookTime" binding:"gte=0"`
	Servings     *int                `json:"servings" binding:"omitempty,gte=1"`
	Difficulty   string              `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	Category     string              `json:"category" binding:"omitempty,oneof=Breakfast Lunch Dinner Dessert Snack Beverage Other"`
	Tags         []string            `json:"tags" binding:"max=20,dive,max=50"`
	IsPublic     bool                `json:"isPublic"`
	Image        *model.Image        `json:"image"`
}

// UpdateRecipeRequest is a partial update: nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Title        *string             `json:"title" binding:"omitempty,max=100"`
	Description  *string             `json:"description" binding:"omitempty,max=500"`
	Ingredients  []IngredientRequest `json:"ingredients" binding:"omitempty,dive"`
	Instructions []string            `json:"instructions" binding:"omitempty,dive,required"`
	PrepTime     *int                `json:"prepTime" binding:"omitempty,gte=0"`
	CookTime     *int                `json:"cookTime" binding:"omitempty,gte=0"`
	Servings     *int                `json:"servings" binding:"omitempty,gte=1"`
	Difficulty   *string             `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	Category     *string             `json:"category" binding:"omitempty,oneof=Breakfast Lunch Dinner Dessert Snack Beverage Other"`
	Tags         []string            `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	IsPublic     *bool               `json:"isPublic"`
	Image        *model.Image        `json:"image"`
}

type SocialMediaRequest struct {
	Twitter   string `json:"twitter" binding:"max=50"`
	Instagram string `json:"instagram" binding:"max=50"`
}

type UpdateProfileRequest struct {
	Username    *string             `json:"username" binding:"omitempty,min=3,max=30"`
	Bio         *string             `json:"bio" binding:"omitempty,max=500"`
	Location    *string             `json:"location" binding:"omitempty,max=100"`
	Website     *string             `json:"website" binding:"omitempty,max=200"`
	SocialMedia *SocialMediaRequest `json:"socialMedia"`
}

// LikeResponse is the result of a like toggle
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// UploadResponse describes a stored image
type UploadResponse struct {
	Image    model.Image `json:"image"`
	URL      string      `json:"url,omitempty"`
	RecipeID string      `json:"recipeId,omitempty"`
}
