package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/repository"
)

// Recipe store backends
const (
	RecipeStoreSQL   = "sql"
	RecipeStoreMongo = "mongo"
)

// Stores holds the repositories and the handles that back them.
type Stores struct {
	DB      *gorm.DB
	Users   repository.UserRepository
	Recipes repository.RecipeRepository

	// Checks reports the reachability of every backing database.
	Checks map[string]func(ctx context.Context) error

	closers []func()
}

// Open connects to the relational database, migrates it and opens the
// recipe store selected by cfg.RecipeStore.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.RecipeStore != RecipeStoreSQL && cfg.RecipeStore != RecipeStoreMongo {
		return nil, fmt.Errorf("unknown recipe store %q", cfg.RecipeStore)
	}

	db, err := New(cfg)
	if err != nil {
		return nil, err
	}

	s := &Stores{
		DB:    db,
		Users: repository.NewGormUserRepository(db),
		Checks: map[string]func(ctx context.Context) error{
			"database": func(ctx context.Context) error { return HealthCheck(ctx, db) },
		},
	}
	s.closers = append(s.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	sqlRecipes := cfg.RecipeStore != RecipeStoreMongo
	if err := RunMigrations(db, sqlRecipes); err != nil {
		s.Close()
		return nil, err
	}

	if sqlRecipes {
		s.Recipes = repository.NewGormRecipeRepository(db)
		return s, nil
	}

	client, mdb, err := NewMongoClient(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	})
	s.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	recipes := repository.NewMongoRecipeRepository(mdb)
	if err := recipes.EnsureIndexes(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to prepare recipe store: %w", err)
	}
	s.Recipes = recipes
	return s, nil
}

// Close releases every connection in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
