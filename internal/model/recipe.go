package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the effort level of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Rank orders difficulties from easiest to hardest.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 4
}

// Category groups recipes by meal.
type Category string

const (
	CategoryBreakfast Category = "Breakfast"
	CategoryLunch     Category = "Lunch"
	CategoryDinner    Category = "Dinner"
	CategoryDessert   Category = "Dessert"
	CategorySnack     Category = "Snack"
	CategoryBeverage  Category = "Beverage"
	CategoryOther     Category = "Other"
)

// Unit is the measuring unit of an ingredient quantity.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitPiece      Unit = "piece"
	UnitPinch      Unit = "pinch"
	UnitToTaste    Unit = "to taste"
)

type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Owner is the public summary of a recipe's author.
type Owner struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	HasAvatar bool      `json:"hasAvatar"`
}

// Recipe is a user's recipe. Total time is never stored; see TotalTime.
type Recipe struct {
	ID           uuid.UUID    `json:"id"`
	PublicID     string       `json:"publicId,omitempty"`
	UserID       uuid.UUID    `json:"userId"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions,omitempty"`
	PrepTime     int          `json:"prepTime"`
	CookTime     int          `json:"cookTime"`
	Servings     int          `json:"servings"`
	Difficulty   Difficulty   `json:"difficulty"`
	Category     Category     `json:"category"`
	Tags         []string     `json:"tags"`
	IsPublic     bool         `json:"isPublic"`
	Views        int64        `json:"views"`
	Likes        []uuid.UUID  `json:"likes"`
	Image        *Image       `json:"image,omitempty"`
	Owner        *Owner       `json:"owner,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// TotalTime is prep plus cook time in minutes.
func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

func (r *Recipe) LikeCount() int {
	return len(r.Likes)
}

// IsLikedBy reports whether userID is in the recipe's like set.
func (r *Recipe) IsLikedBy(userID uuid.UUID) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PublicSummary strips the fields the explore listing does not return.
func (r Recipe) PublicSummary() Recipe {
	r.Instructions = nil
	if len(r.Ingredients) > 0 {
		ingredients := make([]Ingredient, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			ing.Notes = ""
			ingredients[i] = ing
		}
		r.Ingredients = ingredients
	}
	return r
}

// MarshalJSON adds the derived totalTime and likeCount fields. The public
// identifier is only shown once the recipe is shared.
func (r Recipe) MarshalJSON() ([]byte, error) {
	type recipe Recipe
	if !r.IsPublic {
		r.PublicID = ""
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Likes == nil {
		r.Likes = []uuid.UUID{}
	}
	return json.Marshal(struct {
		recipe
		TotalTime int `json:"totalTime"`
		LikeCount int `json:"likeCount"`
	}{recipe(r), r.TotalTime(), r.LikeCount()})
}

// GroupCount is one bucket of a per-field recipe count.
type GroupCount struct {
	Value string `json:"_id" gorm:"column:value"`
	Count int64  `json:"count" gorm:"column:total"`
}

// RecipeStats summarises a user's recipe collection.
type RecipeStats struct {
	TotalRecipes    int64        `json:"totalRecipes"`
	CategoryStats   []GroupCount `json:"categoryStats"`
	DifficultyStats []GroupCount `json:"difficultyStats"`
}
