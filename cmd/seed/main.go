package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/database"
	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/server"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

const seedPassword = "testpassword123"

var seedUsers = []types.RegisterRequest{
	{Username: "johndoe", Email: "john.doe@example.com", Password: seedPassword},
	{Username: "janesmith", Email: "jane.smith@example.com", Password: seedPassword},
	{Username: "bobwilson", Email: "bob.wilson@example.com", Password: seedPassword},
}

func ingredient(name string, quantity float64, unit model.Unit) types.IngredientRequest {
	return types.IngredientRequest{Name: name, Quantity: quantity, Unit: string(unit)}
}

// seedRecipes maps a user's index in seedUsers to the recipes they own.
var seedRecipes = map[int][]types.CreateRecipeRequest{
	0: {
		{
			Title:       "Saffron Risotto",
			Description: "Creamy risotto with saffron and parmesan",
			Ingredients: []types.IngredientRequest{
				ingredient("arborio rice", 300, model.UnitGram),
				ingredient("saffron", 1, model.UnitPinch),
				ingredient("vegetable stock", 1, model.UnitLiter),
				ingredient("parmesan", 50, model.UnitGram),
			},
			Instructions: []string{"Toast the rice", "Add stock a ladle at a time", "Stir in saffron and parmesan"},
			PrepTime:     10,
			CookTime:     25,
			Difficulty:   string(model.DifficultyMedium),
			Category:     string(model.CategoryDinner),
			Tags:         []string{"italian", "vegetarian"},
			IsPublic:     true,
		},
		{
			Title:        "Overnight Oats",
			Description:  "No-cook breakfast",
			Ingredients:  []types.IngredientRequest{ingredient("oats", 1, model.UnitCup), ingredient("milk", 1, model.UnitCup)},
			Instructions: []string{"Mix", "Refrigerate overnight"},
			PrepTime:     5,
			Difficulty:   string(model.DifficultyEasy),
			Category:     string(model.CategoryBreakfast),
			Tags:         []string{"quick"},
		},
	},
	1: {
		{
			Title:       "Beef Wellington",
			Description: "Beef fillet wrapped in mushroom duxelles and puff pastry",
			Ingredients: []types.IngredientRequest{
				ingredient("beef fillet", 1, model.UnitKilogram),
				ingredient("mushrooms", 500, model.UnitGram),
				ingredient("puff pastry", 1, model.UnitPiece),
			},
			Instructions: []string{"Sear the beef", "Wrap in duxelles and pastry", "Bake until golden"},
			PrepTime:     60,
			CookTime:     45,
			Difficulty:   string(model.DifficultyHard),
			Category:     string(model.CategoryDinner),
			Tags:         []string{"british", "festive"},
			IsPublic:     true,
		},
		{
			Title:        "Lemonade",
			Ingredients:  []types.IngredientRequest{ingredient("lemons", 4, model.UnitPiece), ingredient("sugar", 100, model.UnitGram), ingredient("water", 1, model.UnitLiter)},
			Instructions: []string{"Squeeze the lemons", "Dissolve sugar", "Chill"},
			PrepTime:     10,
			Difficulty:   string(model.DifficultyEasy),
			Category:     string(model.CategoryBeverage),
			Tags:         []string{"summer", "quick"},
			IsPublic:     true,
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	server.SetupLogger(cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stores, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data stores")
	}
	defer stores.Close()

	// seed recipes carry no images, so no blob store is needed
	images := service.NewImageService(nil, cfg.Storage)
	auth := service.NewAuthService(stores.Users, cfg.JWTSecret, cfg.JWTExpiry)
	recipes := service.NewRecipeService(stores.Recipes, images)
	interactions := service.NewInteractionService(stores.Recipes, stores.Users)

	users := make([]*model.User, len(seedUsers))
	for i := range seedUsers {
		req := seedUsers[i]
		user, _, err := auth.Register(ctx, &req)
		if errors.Is(err, service.ErrUserExists) {
			log.Info().Str("username", req.Username).Msg("User already exists, skipping")
			user, _, err = auth.Login(ctx, req.Email, req.Password)
		}
		if err != nil {
			log.Fatal().Err(err).Str("username", req.Username).Msg("Failed to seed user")
		}
		users[i] = user
	}

	var public []*model.Recipe
	for owner, reqs := range seedRecipes {
		for i := range reqs {
			recipe, err := recipes.Create(ctx, users[owner].ID, &reqs[i])
			if err != nil {
				log.Fatal().Err(err).Str("title", reqs[i].Title).Msg("Failed to seed recipe")
			}
			if recipe.IsPublic {
				public = append(public, recipe)
			}
		}
	}

	// every seeded user likes every public recipe they do not own
	for _, recipe := range public {
		for _, user := range users {
			if user.ID == recipe.UserID {
				continue
			}
			if _, err := interactions.ToggleLike(ctx, recipe.ID, user.ID); err != nil {
				log.Warn().Err(err).Str("recipe_id", recipe.ID.String()).Msg("Failed to seed like")
			}
		}
	}

	log.Info().Int("users", len(users)).Int("public_recipes", len(public)).Msg("Seeding complete")
}
