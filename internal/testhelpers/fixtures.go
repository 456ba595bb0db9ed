package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/repository"
)

// TestPassword is the plain-text password of users made by CreateTestUser.
const TestPassword = "testpassword123"

// CreateTestUser inserts a user with a unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.NewString()[:8]
	user := &model.User{
		Username:     "user_" + suffix,
		Email:        fmt.Sprintf("user_%s@example.com", suffix),
		PasswordHash: string(hashed),
	}
	if err := repository.NewGormUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// NewRecipe builds a valid recipe owned by ownerID. Callers adjust fields
// before saving it.
func NewRecipe(ownerID uuid.UUID, title string) *model.Recipe {
	return &model.Recipe{
		ID:          uuid.New(),
		PublicID:    uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: "A test recipe",
		Ingredients: []model.Ingredient{
			{Name: "flour", Quantity: 200, Unit: model.UnitGram},
			{Name: "water", Quantity: 1, Unit: model.UnitCup, Notes: "warm"},
		},
		Instructions: []string{"Mix", "Bake"},
		PrepTime:     10,
		CookTime:     20,
		Servings:     4,
		Difficulty:   model.DifficultyMedium,
		Category:     model.CategoryDinner,
		Tags:         []string{},
		Likes:        []uuid.UUID{},
	}
}

// SaveRecipe stores recipe through repo.
func SaveRecipe(t *testing.T, repo repository.RecipeRepository, recipe *model.Recipe) *model.Recipe {
	t.Helper()
	if err := repo.Create(context.Background(), recipe); err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}
