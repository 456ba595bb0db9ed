package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/database"
	"github.com/devdish/devdish/backend/internal/server"
)

// migrate prepares the relational schema and, for RECIPE_STORE=mongo, the
// recipe collection indexes, then exits.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	server.SetupLogger(cfg.Env, cfg.LogLevel)

	stores, err := database.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
	defer stores.Close()

	log.Info().Str("recipe_store", cfg.RecipeStore).Msg("Migrations complete")
}
